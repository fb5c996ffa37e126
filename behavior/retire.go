package behavior

import (
	"log/slog"

	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// Retire recycles a temporary agent once a full-sized agent of its role is
// around to take over. It runs ahead of every role.
func Retire(c *Context) (Decision, bool) {
	a := c.Agent
	if !c.Record.Temporary {
		return Decision{}, false
	}
	relieved := false
	for _, peer := range world.AgentsWithRole(c.W, c.Record.Role) {
		if peer != a && !peer.Temporary {
			relieved = true
			break
		}
	}
	if !relieved {
		return Decision{}, false
	}

	spawns := world.Filter(world.StructuresOf(c.W, model.StructureSpawn), func(s *model.Structure) bool { return s.My })
	spawn, ok := world.ClosestByPath(c.W, a.Pos, spawns)
	if !ok {
		return Decision{}, false
	}
	st := c.W.Recycle(spawn, a)
	if st == world.OK {
		slog.Info("recycling temporary agent", "agent", a.Name, "role", c.Record.Role, "spawn", spawn.ID)
	}
	return c.act("retire", world.ActionRecycle, spawn, st)
}
