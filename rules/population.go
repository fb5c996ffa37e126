package rules

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/colony/colony-core/model"
)

// Quota is one role's entry in the population plan.
type Quota struct {
	Role       model.Role `yaml:"role" json:"role"`
	Count      int        `yaml:"count" json:"count"`
	Priority   int        `yaml:"priority" json:"priority"`
	MaxRepeats int        `yaml:"maxRepeats,omitempty" json:"maxRepeats,omitempty"`
	When       string     `yaml:"when,omitempty" json:"when,omitempty"`
}

// Population is the configured make-up of the colony.
type Population struct {
	// Foundational is the role whose absence puts the scheduler in
	// bootstrap sizing.
	Foundational model.Role `yaml:"foundational" json:"foundational"`
	Roles        []Quota    `yaml:"roles" json:"roles"`
}

// DefaultPopulation returns the baseline plan: one hauler, two harvesters,
// two upgraders and a builder, ordered in that priority.
func DefaultPopulation() Population {
	return Population{
		Foundational: model.RoleHauler,
		Roles: []Quota{
			{Role: model.RoleHauler, Count: 1, Priority: 400},
			{Role: model.RoleHarvester, Count: 2, Priority: 300},
			{Role: model.RoleUpgrader, Count: 2, Priority: 200},
			{Role: model.RoleBuilder, Count: 1, Priority: 100},
		},
	}
}

// Validate clamps counts and repeat caps to their valid ranges and drops
// entries without a role.
func (p *Population) Validate() {
	kept := p.Roles[:0]
	for _, q := range p.Roles {
		if q.Role == model.RoleUnknown {
			slog.Warn("dropping population entry without a role", "priority", q.Priority)
			continue
		}
		q.Count = clampInt(q.Count, 0, 20)
		q.MaxRepeats = clampInt(q.MaxRepeats, 0, model.MaxBodySize)
		kept = append(kept, q)
	}
	p.Roles = kept
}

// Compile turns the plan into scheduler rules.
func (p Population) Compile() []*Rule {
	rules := make([]*Rule, 0, len(p.Roles))
	for _, q := range p.Roles {
		body := DefaultBody(q.Role)
		if q.MaxRepeats > 0 {
			body.MaxRepeats = q.MaxRepeats
		}
		rules = append(rules, &Rule{
			Name:         fmt.Sprintf("maintain-%s", q.Role),
			Role:         q.Role,
			Quota:        q.Count,
			Priority:     q.Priority,
			Body:         body,
			ConditionSrc: q.When,
		})
	}
	return rules
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
