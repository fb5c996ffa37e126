package world

import (
	"log/slog"

	"github.com/nstehr/colony/colony-core/model"
)

// Room is a World backed by a host snapshot. It validates each requested
// action against the snapshot the way the engine would and records the
// accepted ones as intents for the host to execute. It resolves no physics:
// the snapshot is never mutated.
type Room struct {
	snap    *model.Snapshot
	terrain *model.Terrain

	objects  map[string]Object
	names    map[string]bool
	occupied map[[2]int]bool
	blocked  map[[2]int]bool

	pending     map[string]bool // spawn id → order committed this tick
	towerActed  map[string]bool
	energySpent int
	intents     []Intent
}

// NewRoom indexes a snapshot for queries. A nil terrain reads as open plain.
func NewRoom(snap *model.Snapshot) *Room {
	r := &Room{
		snap:       snap,
		terrain:    snap.Terrain,
		objects:    make(map[string]Object),
		names:      make(map[string]bool),
		occupied:   make(map[[2]int]bool),
		blocked:    make(map[[2]int]bool),
		pending:    make(map[string]bool),
		towerActed: make(map[string]bool),
	}
	if r.terrain == nil {
		r.terrain = &model.Terrain{}
	}
	for _, a := range snap.Agents {
		r.objects[a.ID] = a
		r.names[a.Name] = true
		r.occupied[tile(a.Pos)] = true
	}
	for _, a := range snap.Hostiles {
		r.objects[a.ID] = a
		r.occupied[tile(a.Pos)] = true
	}
	for _, s := range snap.Structures {
		r.objects[s.ID] = s
		if s.Kind.IsObstacle() {
			r.blocked[tile(s.Pos)] = true
		}
		if s.Spawning != nil {
			r.names[s.Spawning.Name] = true
		}
	}
	for _, s := range snap.Sites {
		r.objects[s.ID] = s
	}
	for _, s := range snap.Sources {
		r.objects[s.ID] = s
		r.blocked[tile(s.Pos)] = true
	}
	for _, d := range snap.Dropped {
		r.objects[d.ID] = d
	}
	if c := snap.Controller; c != nil {
		r.objects[c.ID] = c
		r.blocked[tile(c.Pos)] = true
	}
	return r
}

func tile(p model.Position) [2]int { return [2]int{p.X, p.Y} }

// Intents returns the actions accepted so far this tick, in request order.
func (r *Room) Intents() []Intent { return r.intents }

func (r *Room) Tick() int                      { return r.snap.Tick }
func (r *Room) RoomName() string               { return r.snap.Room }
func (r *Room) EnergyCapacity() int            { return r.snap.EnergyCapacityAvailable }
func (r *Room) Controller() *model.Controller  { return r.snap.Controller }
func (r *Room) MyAgents() []*model.Agent       { return r.snap.Agents }
func (r *Room) Hostiles() []*model.Agent       { return r.snap.Hostiles }
func (r *Room) Structures() []*model.Structure { return r.snap.Structures }
func (r *Room) Sites() []*model.Site           { return r.snap.Sites }
func (r *Room) Sources() []*model.Source       { return r.snap.Sources }
func (r *Room) Dropped() []*model.Dropped      { return r.snap.Dropped }

// EnergyAvailable is the room's spawn energy minus what orders committed
// earlier this tick have already claimed.
func (r *Room) EnergyAvailable() int {
	return r.snap.EnergyAvailable - r.energySpent
}

func (r *Room) Lookup(id string) (Object, bool) {
	o, ok := r.objects[id]
	return o, ok
}

func (r *Room) InBounds(p model.Position) bool {
	return r.terrain.InBounds(p.X, p.Y)
}

func (r *Room) IsObstacle(p model.Position) bool {
	if r.terrain.IsWall(p) {
		return true
	}
	t := tile(p)
	return r.occupied[t] || r.blocked[t]
}

// PathLength has no pathfinder behind it: it uses tile range and only
// rejects targets outside the room or sealed in by terrain walls.
func (r *Room) PathLength(from, to model.Position) (int, bool) {
	if !r.InBounds(to) || r.sealed(to) {
		return 0, false
	}
	return from.RangeTo(to), true
}

func (r *Room) sealed(p model.Position) bool {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if r.terrain.At(p.X+dx, p.Y+dy) != model.Wall {
				return false
			}
		}
	}
	return true
}

func (r *Room) record(in Intent) Status {
	in.Tick = r.snap.Tick
	r.intents = append(r.intents, in)
	slog.Debug("intent accepted", "actor", in.Actor, "action", in.Action, "target", in.Target)
	return OK
}

// agentReady is the common precondition of every agent action.
func agentReady(a *model.Agent) Status {
	if a == nil {
		return ErrInvalidArgs
	}
	if !a.My {
		return ErrNotOwner
	}
	if a.Spawning {
		return ErrBusy
	}
	return OK
}

func (r *Room) Move(a *model.Agent, to model.Position) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if a.ActiveParts(model.Move) == 0 {
		return ErrNoBodyPart
	}
	if a.Fatigue > 0 {
		return ErrTired
	}
	if !r.InBounds(to) {
		return ErrInvalidArgs
	}
	if _, ok := r.PathLength(a.Pos, to); !ok {
		return ErrNoPath
	}
	return r.record(Intent{Actor: a.Name, Action: ActionMove, Pos: &to})
}

func (r *Room) Harvest(a *model.Agent, s *model.Source) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if a.ActiveParts(model.Work) == 0 {
		return ErrNoBodyPart
	}
	if s == nil {
		return ErrInvalidTarget
	}
	if s.Energy <= 0 {
		return ErrNotEnoughResources
	}
	if !a.Pos.IsNearTo(s.Pos) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: a.Name, Action: ActionHarvest, Target: s.ID})
}

func (r *Room) Build(a *model.Agent, site *model.Site) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if a.ActiveParts(model.Work) == 0 {
		return ErrNoBodyPart
	}
	if !a.HasEnergy() {
		return ErrNotEnoughResources
	}
	if site == nil {
		return ErrInvalidTarget
	}
	if !a.Pos.InRangeTo(site.Pos, model.BuildRange) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: a.Name, Action: ActionBuild, Target: site.ID})
}

func (r *Room) Repair(a *model.Agent, s *model.Structure) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if a.ActiveParts(model.Work) == 0 {
		return ErrNoBodyPart
	}
	if !a.HasEnergy() {
		return ErrNotEnoughResources
	}
	if s == nil {
		return ErrInvalidTarget
	}
	if !a.Pos.InRangeTo(s.Pos, model.RepairRange) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: a.Name, Action: ActionRepair, Target: s.ID})
}

func (r *Room) Transfer(a *model.Agent, to Object, res model.Resource, amount int) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if amount < 0 {
		return ErrInvalidArgs
	}
	held := a.Carry[res]
	if held == 0 || amount > held {
		return ErrNotEnoughResources
	}
	var free int
	switch t := to.(type) {
	case *model.Structure:
		if t == nil || t.StoreCapacity == 0 {
			return ErrInvalidTarget
		}
		free = t.FreeCapacity()
	case *model.Agent:
		if t == nil || t == a {
			return ErrInvalidTarget
		}
		free = t.CarryCapacity - t.Carry.Total()
	default:
		return ErrInvalidTarget
	}
	if free <= 0 {
		return ErrFull
	}
	if !a.Pos.IsNearTo(to.Position()) {
		return ErrNotInRange
	}
	if amount == 0 {
		amount = min(held, free)
	}
	return r.record(Intent{Actor: a.Name, Action: ActionTransfer, Target: to.ObjectID(), Resource: res, Amount: amount})
}

func (r *Room) Withdraw(a *model.Agent, s *model.Structure, res model.Resource) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if s == nil || s.StoreCapacity == 0 {
		return ErrInvalidTarget
	}
	if a.IsFull() {
		return ErrFull
	}
	if s.Store[res] <= 0 {
		return ErrNotEnoughResources
	}
	if !a.Pos.IsNearTo(s.Pos) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: a.Name, Action: ActionWithdraw, Target: s.ID, Resource: res})
}

func (r *Room) Pickup(a *model.Agent, d *model.Dropped) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if d == nil {
		return ErrInvalidTarget
	}
	if a.IsFull() {
		return ErrFull
	}
	if !a.Pos.IsNearTo(d.Pos) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: a.Name, Action: ActionPickup, Target: d.ID, Resource: d.Resource})
}

func (r *Room) UpgradeController(a *model.Agent, c *model.Controller) Status {
	if st := agentReady(a); st != OK {
		return st
	}
	if a.ActiveParts(model.Work) == 0 {
		return ErrNoBodyPart
	}
	if !a.HasEnergy() {
		return ErrNotEnoughResources
	}
	if c == nil || !c.My {
		return ErrInvalidTarget
	}
	if !a.Pos.InRangeTo(c.Pos, model.UpgradeRange) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: a.Name, Action: ActionUpgrade, Target: c.ID})
}

// towerReady enforces one action per tower per tick.
func (r *Room) towerReady(t *model.Structure) Status {
	if t == nil || t.Kind != model.StructureTower {
		return ErrInvalidArgs
	}
	if !t.My {
		return ErrNotOwner
	}
	if t.Energy() < model.TowerEnergyCost {
		return ErrNotEnoughResources
	}
	if r.towerActed[t.ID] {
		return ErrBusy
	}
	return OK
}

func (r *Room) towerAct(t *model.Structure, action ActionKind, target string) Status {
	r.towerActed[t.ID] = true
	return r.record(Intent{Actor: t.ID, Action: action, Target: target})
}

func (r *Room) Attack(t *model.Structure, target *model.Agent) Status {
	if st := r.towerReady(t); st != OK {
		return st
	}
	if target == nil || target.My {
		return ErrInvalidTarget
	}
	return r.towerAct(t, ActionAttack, target.ID)
}

func (r *Room) Heal(t *model.Structure, target *model.Agent) Status {
	if st := r.towerReady(t); st != OK {
		return st
	}
	if target == nil {
		return ErrInvalidTarget
	}
	return r.towerAct(t, ActionHeal, target.ID)
}

func (r *Room) TowerRepair(t *model.Structure, target *model.Structure) Status {
	if st := r.towerReady(t); st != OK {
		return st
	}
	if target == nil || target.HitsMax == 0 {
		return ErrInvalidTarget
	}
	return r.towerAct(t, ActionRepair, target.ID)
}

func (r *Room) Spawn(spawn *model.Structure, order model.SpawnOrder) Status {
	if spawn == nil || spawn.Kind != model.StructureSpawn {
		return ErrInvalidTarget
	}
	if !spawn.My {
		return ErrNotOwner
	}
	if spawn.Spawning != nil || r.pending[spawn.ID] {
		return ErrBusy
	}
	if len(order.Body) == 0 || len(order.Body) > model.MaxBodySize || order.Name == "" {
		return ErrInvalidArgs
	}
	if r.names[order.Name] {
		return ErrNameExists
	}
	cost := model.BodyCost(order.Body)
	if cost > r.EnergyAvailable() {
		return ErrNotEnoughResources
	}
	r.pending[spawn.ID] = true
	r.names[order.Name] = true
	r.energySpent += cost
	o := order
	return r.record(Intent{Actor: spawn.ID, Action: ActionSpawn, Order: &o})
}

func (r *Room) Recycle(spawn *model.Structure, a *model.Agent) Status {
	if spawn == nil || spawn.Kind != model.StructureSpawn {
		return ErrInvalidTarget
	}
	if !spawn.My {
		return ErrNotOwner
	}
	if a == nil || !a.My {
		return ErrInvalidTarget
	}
	if !spawn.Pos.IsNearTo(a.Pos) {
		return ErrNotInRange
	}
	return r.record(Intent{Actor: spawn.ID, Action: ActionRecycle, Target: a.ID})
}

// Pending reports whether a spawn has an order committed this tick.
func (r *Room) Pending(spawnID string) bool { return r.pending[spawnID] }
