package behavior

import (
	"fmt"

	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

var roleBehaviors = map[model.Role]Candidate{
	model.RoleHarvester: Harvester,
	model.RoleHauler:    Hauler,
	model.RoleBuilder:   Builder,
	model.RoleUpgrader:  Upgrader,
}

// For returns the behavior of a role.
func For(role model.Role) (Candidate, bool) {
	b, ok := roleBehaviors[role]
	return b, ok
}

// Run decides one agent's action for the tick and returns the decision
// together with the agent's updated record. Nothing committing is not an
// error; an agent without a known role is.
func Run(w world.World, a *model.Agent, rec memory.Record, opts Options) (Decision, memory.Record, error) {
	role := rec.Role
	if role == model.RoleUnknown {
		role = a.Role
		rec.Role = role
	}
	b, ok := For(role)
	if !ok {
		return Decision{}, rec, fmt.Errorf("agent %s: no behavior for role %v", a.Name, role)
	}
	c := &Context{W: w, Agent: a, Record: rec, Opts: opts}
	d, committed := First(c, Retire, b)
	if !committed && d.Tier == "" {
		d.Tier = "idle"
	}
	return d, c.Record, nil
}
