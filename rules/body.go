package rules

import "github.com/nstehr/colony/colony-core/model"

// BodySpec describes a body plan that scales with energy: Base is always
// present, Repeat is added as many times as the energy and the body size
// limit allow, capped at MaxRepeats when it is positive.
type BodySpec struct {
	Base       []model.PartKind
	Repeat     []model.PartKind
	MaxRepeats int
}

// Plan sizes the body for the given energy. At least one Repeat group is
// required; when even that does not fit, Plan reports false. Parts are
// grouped by kind: the repeated kinds in order, then the base.
func (b BodySpec) Plan(energy int) ([]model.PartKind, bool) {
	repeatCost := model.BodyCost(b.Repeat)
	if len(b.Repeat) == 0 || repeatCost == 0 {
		return nil, false
	}
	n := (energy - model.BodyCost(b.Base)) / repeatCost
	if b.MaxRepeats > 0 && n > b.MaxRepeats {
		n = b.MaxRepeats
	}
	if fit := (model.MaxBodySize - len(b.Base)) / len(b.Repeat); n > fit {
		n = fit
	}
	if n < 1 {
		return nil, false
	}

	body := make([]model.PartKind, 0, len(b.Base)+n*len(b.Repeat))
	for _, kind := range kindsInOrder(b.Repeat) {
		for i, reps := 0, n*countKind(b.Repeat, kind); i < reps; i++ {
			body = append(body, kind)
		}
	}
	return append(body, b.Base...), true
}

func kindsInOrder(parts []model.PartKind) []model.PartKind {
	var out []model.PartKind
	seen := make(map[model.PartKind]bool)
	for _, p := range parts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func countKind(parts []model.PartKind, kind model.PartKind) int {
	n := 0
	for _, p := range parts {
		if p == kind {
			n++
		}
	}
	return n
}

// DefaultBody returns the stock body plan for a role.
func DefaultBody(role model.Role) BodySpec {
	switch role {
	case model.RoleHauler:
		return BodySpec{Repeat: []model.PartKind{model.Carry, model.Move}, MaxRepeats: 25}
	case model.RoleHarvester:
		return BodySpec{Base: []model.PartKind{model.Move}, Repeat: []model.PartKind{model.Work}, MaxRepeats: 5}
	case model.RoleUpgrader:
		return BodySpec{Base: []model.PartKind{model.Carry, model.Move}, Repeat: []model.PartKind{model.Work}, MaxRepeats: 7}
	case model.RoleBuilder:
		return BodySpec{
			Base:   []model.PartKind{model.Carry, model.Carry, model.Move, model.Move},
			Repeat: []model.PartKind{model.Work},
		}
	}
	return BodySpec{}
}
