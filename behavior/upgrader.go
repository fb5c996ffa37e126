package behavior

import (
	"log/slog"

	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// searchRadius bounds the window around the controller in which upgraders
// look for a working tile.
const searchRadius = 3

// Upgrader alternates between MOVING to a tile next to an energy source and
// WORKING the controller from it.
//
// A working tile either touches a container directly or touches another
// upgrader that does, which can relay half its energy.
func Upgrader(c *Context) (Decision, bool) {
	a := c.Agent
	ctrl := c.W.Controller()
	if ctrl == nil {
		return Decision{Tier: "upgrade", Status: world.ErrNotFound}, false
	}
	rec := &c.Record

	if rec.Mode == "" {
		rec.Mode = memory.ModeMoving
	}
	if rec.Mode == memory.ModeWorking && !hasAnySource(c, a.Pos) {
		// The tile it stands on is the one that went dry.
		rec.Mode = memory.ModeMoving
		rec.TargetPos = nil
		slog.Debug("upgrader lost its energy source", "agent", a.Name, "pos", a.Pos)
	}
	if rec.Mode == memory.ModeMoving && rec.TargetPos != nil && a.Pos.Equal(*rec.TargetPos) {
		rec.Mode = memory.ModeWorking
		slog.Debug("upgrader working", "agent", a.Name, "pos", a.Pos)
	}

	if rec.Mode == memory.ModeMoving {
		target := rec.TargetPos
		if target != nil && !usableTile(c, *target) {
			slog.Debug("upgrader target tile no longer usable", "agent", a.Name, "target", *target)
			target = nil
		}
		if target == nil {
			target = findWorkTile(c, ctrl)
		}
		if target == nil {
			slog.Warn("upgrader can't find target position", "agent", a.Name)
			rec.TargetPos = nil
			return Decision{Tier: "find-tile", Status: world.ErrNotFound}, false
		}
		rec.TargetPos = target
		if !a.Pos.Equal(*target) {
			return c.move("find-tile", spot(*target))
		}
		rec.Mode = memory.ModeWorking
		slog.Debug("upgrader working", "agent", a.Name, "pos", a.Pos)
	}

	if a.HasEnergy() {
		return c.act("upgrade", world.ActionUpgrade, ctrl, c.W.UpgradeController(a, ctrl))
	}
	return replenish(c)
}

// replenish refills an empty upgrader from what is within reach: a
// worthwhile dropped pile, a container, or a neighbour with a direct source.
func replenish(c *Context) (Decision, bool) {
	a := c.Agent
	return First(c,
		func(c *Context) (Decision, bool) {
			for _, d := range world.InRange(a.Pos, c.W.Dropped(), 1) {
				if d.Resource == model.Energy && d.Amount > trivialDrop {
					return c.act("refill-dropped", world.ActionPickup, d, c.W.Pickup(a, d))
				}
			}
			return Decision{}, false
		},
		func(c *Context) (Decision, bool) {
			containers := world.InRange(a.Pos, world.StructuresOf(c.W, model.StructureContainer), 1)
			if len(containers) == 0 {
				return Decision{}, false
			}
			return c.act("refill-container", world.ActionWithdraw, containers[0], c.W.Withdraw(a, containers[0], model.Energy))
		},
		func(c *Context) (Decision, bool) {
			for _, other := range world.InRange(a.Pos, world.AgentsWithRole(c.W, model.RoleUpgrader), 1) {
				if other == a || !other.HasEnergy() || !hasContainerSource(c, other.Pos) {
					continue
				}
				st := c.W.Transfer(other, a, model.Energy, max(1, other.Energy()/2))
				return Decision{Tier: "refill-relay", Action: world.ActionTransfer, Target: other.ID, Status: st}, st == world.OK
			}
			return Decision{}, false
		},
	)
}

func hasContainerSource(c *Context, p model.Position) bool {
	return len(world.InRange(p, world.StructuresOf(c.W, model.StructureContainer), 1)) > 0
}

// hasAnySource reports a container or a relaying upgrader next to p.
func hasAnySource(c *Context, p model.Position) bool {
	if hasContainerSource(c, p) {
		return true
	}
	for _, other := range world.InRange(p, world.AgentsWithRole(c.W, model.RoleUpgrader), 1) {
		if other != c.Agent && hasContainerSource(c, other.Pos) {
			return true
		}
	}
	return false
}

// usableTile is a free tile with an energy source. The agent's own tile is
// not an obstacle to itself.
func usableTile(c *Context, p model.Position) bool {
	if !c.W.InBounds(p) {
		return false
	}
	if !p.Equal(c.Agent.Pos) && c.W.IsObstacle(p) {
		return false
	}
	return hasAnySource(c, p)
}

// findWorkTile searches the window around the controller. Tiles next to a
// container win, closest to the controller; otherwise relay tiles closest to
// the agent.
func findWorkTile(c *Context, ctrl *model.Controller) *model.Position {
	var direct, relay []model.Position
	for dx := -searchRadius; dx <= searchRadius; dx++ {
		for dy := -searchRadius; dy <= searchRadius; dy++ {
			p := model.Position{X: ctrl.Pos.X + dx, Y: ctrl.Pos.Y + dy, Room: ctrl.Pos.Room}
			if !usableTile(c, p) {
				continue
			}
			if hasContainerSource(c, p) {
				direct = append(direct, p)
			} else {
				relay = append(relay, p)
			}
		}
	}
	if p, ok := closestTile(ctrl.Pos, direct); ok {
		return &p
	}
	if p, ok := closestTile(c.Agent.Pos, relay); ok {
		return &p
	}
	return nil
}

func closestTile(from model.Position, tiles []model.Position) (model.Position, bool) {
	best, bestRange := model.Position{}, -1
	for _, p := range tiles {
		if r := from.RangeTo(p); bestRange < 0 || r < bestRange {
			best, bestRange = p, r
		}
	}
	return best, bestRange >= 0
}
