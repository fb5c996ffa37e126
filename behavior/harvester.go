package behavior

import (
	"log/slog"

	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// Harvester parks next to one source and harvests it every tick. The source
// is remembered once the agent is adjacent to it.
func Harvester(c *Context) (Decision, bool) {
	a := c.Agent
	if c.Record.Source == "" {
		src, ok := world.ClosestByPath(c.W, a.Pos, c.W.Sources())
		if !ok {
			return Decision{Tier: "find-source"}, false
		}
		if !a.Pos.IsNearTo(src.Pos) {
			return c.move("find-source", src)
		}
		c.Record.Source = src.ID
		slog.Debug("harvester claimed source", "agent", a.Name, "source", src.ID)
	}

	obj, ok := c.W.Lookup(c.Record.Source)
	src, isSource := obj.(*model.Source)
	if !ok || !isSource {
		slog.Warn("harvester source no longer exists", "agent", a.Name, "source", c.Record.Source)
		c.Record.Source = ""
		return Decision{Tier: "harvest", Status: world.ErrNotFound}, false
	}

	st := c.W.Harvest(a, src)
	d := Decision{Tier: "harvest", Action: world.ActionHarvest, Target: src.ID, Status: st}
	switch st {
	case world.OK, world.ErrTired:
		return d, true
	case world.ErrNotInRange:
		slog.Warn("harvester unexpectedly lost its source", "agent", a.Name, "source", src.ID)
		c.Record.Source = ""
		return d, false
	case world.ErrNotEnoughResources:
		// Depleted; wait in place for the regeneration.
		return d, false
	default:
		slog.Warn("harvest failed", "agent", a.Name, "source", src.ID, "status", st)
		c.Record.Source = ""
		return d, false
	}
}
