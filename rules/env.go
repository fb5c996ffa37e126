package rules

import (
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// Census counts present agents per role.
type Census map[model.Role]int

// TakeCensus counts the agents that still matter for quotas: those being
// spawned, and those with more lifetime left than it takes to replace them.
func TakeCensus(q world.Queries) Census {
	c := make(Census)
	for _, a := range q.MyAgents() {
		if Present(a) {
			c[a.Role]++
		}
	}
	return c
}

// Present reports whether an agent counts toward its role's quota.
func Present(a *model.Agent) bool {
	return a.Spawning || a.TicksToLive > model.SpawnTimePerPart*len(a.Body)
}

// Env wraps the room view and exposes helper methods callable from rule
// conditions.
type Env struct {
	q      world.Queries
	census Census
	energy int
}

func (e Env) Count(role string) int {
	r, err := model.ParseRole(role)
	if err != nil {
		return 0
	}
	return e.census[r]
}

func (e Env) ConstructionSites() int { return len(e.q.Sites()) }

func (e Env) HostilesVisible() bool { return len(e.q.Hostiles()) > 0 }

func (e Env) ControllerLevel() int {
	if c := e.q.Controller(); c != nil {
		return c.Level
	}
	return 0
}

func (e Env) EnergyAvailable() int { return e.energy }
func (e Env) EnergyCapacity() int  { return e.q.EnergyCapacity() }
func (e Env) Tick() int            { return e.q.Tick() }
