package behavior

import (
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// Builder keeps the colony standing before it grows it: critical repairs,
// then construction, then routine repairs, then the weakest structure of
// any kind. An empty builder that cannot work waits at the rally point.
func Builder(c *Context) (Decision, bool) {
	return First(c,
		repairClosest("repair-critical", func(s *model.Structure) bool {
			return !s.Kind.IsFortification() && s.Hits < s.HitsMax/2
		}),
		buildFirst,
		buildClosest,
		repairClosest("repair", func(s *model.Structure) bool {
			return !s.Kind.IsFortification() && s.Hits < s.HitsMax
		}),
		repairWorst,
		rally,
	)
}

func repairable(q world.Queries, keep func(*model.Structure) bool) []*model.Structure {
	return world.Filter(q.Structures(), func(s *model.Structure) bool {
		return s.HitsMax > 0 && keep(s)
	})
}

func repairClosest(tier string, keep func(*model.Structure) bool) Candidate {
	return func(c *Context) (Decision, bool) {
		target, ok := world.ClosestByPath(c.W, c.Agent.Pos, repairable(c.W, keep))
		if !ok {
			return Decision{}, false
		}
		return c.act(tier, world.ActionRepair, target, c.W.Repair(c.Agent, target))
	}
}

// buildFirst works the oldest queued site.
func buildFirst(c *Context) (Decision, bool) {
	sites := c.W.Sites()
	if len(sites) == 0 {
		return Decision{}, false
	}
	return c.act("build-first", world.ActionBuild, sites[0], c.W.Build(c.Agent, sites[0]))
}

// buildClosest covers the case where the oldest site cannot be reached.
func buildClosest(c *Context) (Decision, bool) {
	site, ok := world.ClosestByPath(c.W, c.Agent.Pos, c.W.Sites())
	if !ok {
		return Decision{}, false
	}
	return c.act("build-closest", world.ActionBuild, site, c.W.Build(c.Agent, site))
}

func repairWorst(c *Context) (Decision, bool) {
	var worst *model.Structure
	for _, s := range repairable(c.W, (*model.Structure).Damaged) {
		if worst == nil || s.Hits < worst.Hits {
			worst = s
		}
	}
	if worst == nil {
		return Decision{}, false
	}
	return c.act("repair-worst", world.ActionRepair, worst, c.W.Repair(c.Agent, worst))
}

// rally parks an idle builder out of the way until haulers bring energy.
func rally(c *Context) (Decision, bool) {
	var target world.Object
	if p := c.Opts.Rally; p != nil {
		target = spot(*p)
	} else {
		s, ok := world.ClosestByPath(c.W, c.Agent.Pos, world.Filter(
			world.StructuresOf(c.W, model.StructureStorage, model.StructureSpawn),
			func(s *model.Structure) bool { return s.My },
		))
		if !ok {
			return Decision{}, false
		}
		target = s
	}
	if c.Agent.Pos.IsNearTo(target.Position()) {
		return Decision{Tier: "rally"}, false
	}
	return c.move("rally", target)
}
