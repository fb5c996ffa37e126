package behavior

import (
	"slices"

	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// trivialDrop is the most a dropped pile may hold before it is worth
// leaving a container for.
const trivialDrop = model.HarvestPower * 5

// controllerReserve is the radius around the controller whose containers
// feed upgraders and are left alone by haulers.
const controllerReserve = 4

// Hauler moves energy from where it lands to where it is spent. An empty
// hauler gathers. A loaded one tops up from a pickup within reach, then
// delivers, and only goes looking for more while it has room.
func Hauler(c *Context) (Decision, bool) {
	a := c.Agent
	if a.Energy() == 0 {
		return gather(c)
	}
	return First(c,
		func(c *Context) (Decision, bool) {
			if a.Carry.Total() >= a.CarryCapacity || !pickupNearby(c) {
				return Decision{}, false
			}
			return gather(c)
		},
		deliverTo("fill-spawns", func(q world.Queries) []world.Object {
			return objects(world.Filter(world.StructuresOf(q, model.StructureSpawn, model.StructureExtension),
				func(s *model.Structure) bool { return s.My && s.EnergyShortfall() > 0 }))
		}),
		deliverTo("fill-towers", func(q world.Queries) []world.Object {
			return objects(world.Filter(world.StructuresOf(q, model.StructureTower),
				func(s *model.Structure) bool { return s.My && s.Energy() < s.StoreCapacity/2 }))
		}),
		deliverTo("feed-builders", func(q world.Queries) []world.Object {
			return objects(world.Filter(world.AgentsWithRole(q, model.RoleBuilder),
				func(b *model.Agent) bool { return b != a && b.Energy() < b.CarryCapacity }))
		}),
		deliverTo("fill-storage", func(q world.Queries) []world.Object {
			return objects(world.Filter(world.StructuresOf(q, model.StructureStorage),
				func(s *model.Structure) bool { return s.My && s.FreeCapacity() > 0 }))
		}),
		func(c *Context) (Decision, bool) {
			if a.Carry.Total() >= a.CarryCapacity {
				return Decision{}, false
			}
			return gather(c)
		},
	)
}

func objects[T world.Object](items []T) []world.Object {
	out := make([]world.Object, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// pickupNearby reports a dropped pile or a hauling container with energy
// next to the agent, worth topping up from before delivering.
func pickupNearby(c *Context) bool {
	if len(world.InRange(c.Agent.Pos, c.W.Dropped(), 1)) > 0 {
		return true
	}
	return len(world.InRange(c.Agent.Pos, haulContainers(c.W), 1)) > 0
}

// haulContainers lists containers holding energy outside the controller's
// reserve.
func haulContainers(q world.Queries) []*model.Structure {
	ctrl := q.Controller()
	return world.Filter(world.StructuresOf(q, model.StructureContainer), func(s *model.Structure) bool {
		if ctrl != nil && s.Pos.InRangeTo(ctrl.Pos, controllerReserve) {
			return false
		}
		return s.Energy() > 0
	})
}

// gather picks up dropped resources, else drains a container, else falls
// back to storage. A nearby container wins over a trivial or distant drop.
func gather(c *Context) (Decision, bool) {
	a := c.Agent
	dropped, hasDropped := world.ClosestByPath(c.W, a.Pos, c.W.Dropped())
	container, hasContainer := world.ClosestByPath(c.W, a.Pos, haulContainers(c.W))

	preferContainer := hasContainer && (!hasDropped ||
		a.Pos.IsNearTo(container.Pos) && (dropped.Amount <= trivialDrop || !a.Pos.IsNearTo(dropped.Pos)))

	return First(c,
		func(c *Context) (Decision, bool) {
			if !preferContainer {
				return Decision{}, false
			}
			return c.act("withdraw-container", world.ActionWithdraw, container, c.W.Withdraw(a, container, model.Energy))
		},
		func(c *Context) (Decision, bool) {
			if !hasDropped {
				return Decision{}, false
			}
			return c.act("pickup", world.ActionPickup, dropped, c.W.Pickup(a, dropped))
		},
		func(c *Context) (Decision, bool) {
			if hasDropped || hasContainer {
				return Decision{}, false
			}
			storage, ok := world.ClosestByPath(c.W, a.Pos, world.Filter(world.StructuresOf(c.W, model.StructureStorage),
				func(s *model.Structure) bool { return s.Energy() > 0 }))
			if !ok {
				return Decision{}, false
			}
			return c.act("withdraw-storage", world.ActionWithdraw, storage, c.W.Withdraw(a, storage, model.Energy))
		},
	)
}

// deliverTo transfers to the path-nearest target. At storage, anything that
// is not energy is unloaded first.
func deliverTo(tier string, targets func(world.Queries) []world.Object) Candidate {
	return func(c *Context) (Decision, bool) {
		a := c.Agent
		target, ok := world.ClosestByPath(c.W, a.Pos, targets(c.W))
		if !ok {
			return Decision{}, false
		}
		if s, isStructure := target.(*model.Structure); isStructure && s.Kind == model.StructureStorage && a.Pos.IsNearTo(s.Pos) {
			for _, res := range heldResources(a) {
				if res == model.Energy {
					continue
				}
				if st := c.W.Transfer(a, s, res, 0); st == world.OK {
					return Decision{Tier: tier, Action: world.ActionTransfer, Target: s.ID, Status: st}, true
				}
			}
		}
		return c.act(tier, world.ActionTransfer, target, c.W.Transfer(a, target, model.Energy, 0))
	}
}

// heldResources lists carried resources in a stable order.
func heldResources(a *model.Agent) []model.Resource {
	var out []model.Resource
	for res, n := range a.Carry {
		if n > 0 {
			out = append(out, res)
		}
	}
	slices.Sort(out)
	return out
}
