package world

import "github.com/nstehr/colony/colony-core/model"

// Filter keeps items for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// ClosestByRange returns the item nearest to from by tile range. Ties go to
// the earlier item.
func ClosestByRange[T Object](from model.Position, items []T) (T, bool) {
	var best T
	bestRange := -1
	for _, item := range items {
		r := from.RangeTo(item.Position())
		if bestRange < 0 || r < bestRange {
			best, bestRange = item, r
		}
	}
	return best, bestRange >= 0
}

// ClosestByPath returns the item with the shortest path from from, skipping
// unreachable ones. Ties go to the earlier item.
func ClosestByPath[T Object](q Queries, from model.Position, items []T) (T, bool) {
	var best T
	bestLen := -1
	for _, item := range items {
		n, ok := q.PathLength(from, item.Position())
		if !ok {
			continue
		}
		if bestLen < 0 || n < bestLen {
			best, bestLen = item, n
		}
	}
	return best, bestLen >= 0
}

// InRange returns the items within r tiles of from, in input order.
func InRange[T Object](from model.Position, items []T, r int) []T {
	return Filter(items, func(item T) bool {
		return from.InRangeTo(item.Position(), r)
	})
}

// StructuresOf returns the room's structures of the given kinds.
func StructuresOf(q Queries, kinds ...model.StructureKind) []*model.Structure {
	return Filter(q.Structures(), func(s *model.Structure) bool {
		for _, k := range kinds {
			if s.Kind == k {
				return true
			}
		}
		return false
	})
}

// AgentsWithRole returns owned, non-spawning agents with the given role.
func AgentsWithRole(q Queries, role model.Role) []*model.Agent {
	return Filter(q.MyAgents(), func(a *model.Agent) bool {
		return a.Role == role && !a.Spawning
	})
}
