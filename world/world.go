package world

import "github.com/nstehr/colony/colony-core/model"

// Object is anything with an identity and a tile.
type Object interface {
	ObjectID() string
	Position() model.Position
}

// Queries is the read side of the host engine for one room and one tick.
// Every call is synchronous and treated as instantaneous.
type Queries interface {
	Tick() int
	RoomName() string
	EnergyAvailable() int
	EnergyCapacity() int
	Controller() *model.Controller

	MyAgents() []*model.Agent
	Hostiles() []*model.Agent
	Structures() []*model.Structure
	Sites() []*model.Site
	Sources() []*model.Source
	Dropped() []*model.Dropped

	// Lookup resolves an object by id. The second result is false when the
	// object no longer exists.
	Lookup(id string) (Object, bool)
	// IsObstacle looks at a tile: terrain walls, agents and blocking
	// structures all count.
	IsObstacle(p model.Position) bool
	InBounds(p model.Position) bool
	// PathLength estimates the walking distance between two tiles. The
	// second result is false when no path exists.
	PathLength(from, to model.Position) (int, bool)
}

// Actions are the primitives a decision may request. Once invoked an
// action is committed for the tick.
type Actions interface {
	Move(a *model.Agent, to model.Position) Status
	Harvest(a *model.Agent, s *model.Source) Status
	Build(a *model.Agent, site *model.Site) Status
	Repair(a *model.Agent, s *model.Structure) Status
	// Transfer hands a resource to a structure or another agent. amount 0
	// moves as much as the target accepts.
	Transfer(a *model.Agent, to Object, res model.Resource, amount int) Status
	Withdraw(a *model.Agent, s *model.Structure, res model.Resource) Status
	Pickup(a *model.Agent, d *model.Dropped) Status
	UpgradeController(a *model.Agent, c *model.Controller) Status

	Attack(tower *model.Structure, target *model.Agent) Status
	Heal(tower *model.Structure, target *model.Agent) Status
	TowerRepair(tower *model.Structure, target *model.Structure) Status

	Spawn(spawn *model.Structure, order model.SpawnOrder) Status
	Recycle(spawn *model.Structure, a *model.Agent) Status
}

// World is everything a decision function may touch.
type World interface {
	Queries
	Actions
}
