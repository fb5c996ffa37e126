package world

import (
	"testing"

	"github.com/nstehr/colony/colony-core/model"
)

func pos(x, y int) model.Position { return model.Position{X: x, Y: y} }

func worker(name string, p model.Position, energy int) *model.Agent {
	return &model.Agent{
		ID: "id-" + name, Name: name, My: true, Role: model.RoleBuilder,
		Body: []model.BodyPart{
			{Kind: model.Work, Hits: 100},
			{Kind: model.Carry, Hits: 100},
			{Kind: model.Move, Hits: 100},
		},
		Carry: model.Store{model.Energy: energy}, CarryCapacity: 50,
		Pos: p, Hits: 300, HitsMax: 300, TicksToLive: 1000,
	}
}

func TestRoomSpawnCommitsOnce(t *testing.T) {
	spawn := &model.Structure{ID: "s1", Kind: model.StructureSpawn, My: true, Pos: pos(10, 10), Store: model.Store{}, StoreCapacity: 300}
	room := NewRoom(&model.Snapshot{
		Tick: 7, EnergyAvailable: 500, EnergyCapacityAvailable: 500,
		Structures: []*model.Structure{spawn},
	})

	order := model.SpawnOrder{Name: "Hauler7", Role: model.RoleHauler, Body: []model.PartKind{model.Carry, model.Move}}
	if st := room.Spawn(spawn, order); st != OK {
		t.Fatalf("first Spawn = %v, want ok", st)
	}
	if !room.Pending("s1") {
		t.Error("spawn should be pending after an accepted order")
	}
	if got := room.EnergyAvailable(); got != 400 {
		t.Errorf("EnergyAvailable = %d, want 400 after a 100-cost order", got)
	}
	order.Name = "Hauler8"
	if st := room.Spawn(spawn, order); st != ErrBusy {
		t.Errorf("second Spawn = %v, want busy", st)
	}
	if n := len(room.Intents()); n != 1 {
		t.Fatalf("intents = %d, want 1", n)
	}
	in := room.Intents()[0]
	if in.Tick != 7 || in.Action != ActionSpawn || in.Order.Name != "Hauler7" {
		t.Errorf("unexpected intent %+v", in)
	}
}

func TestRoomSpawnRejections(t *testing.T) {
	busy := &model.Structure{ID: "s1", Kind: model.StructureSpawn, My: true, Spawning: &model.SpawnProgress{Name: "Builder3"}}
	idle := &model.Structure{ID: "s2", Kind: model.StructureSpawn, My: true}
	room := NewRoom(&model.Snapshot{
		EnergyAvailable: 200,
		Agents:          []*model.Agent{worker("Upgrader1", pos(1, 1), 0)},
		Structures:      []*model.Structure{busy, idle},
	})
	body := []model.PartKind{model.Work, model.Carry, model.Move}

	tests := []struct {
		name  string
		spawn *model.Structure
		order model.SpawnOrder
		want  Status
	}{
		{"already spawning", busy, model.SpawnOrder{Name: "X", Body: body}, ErrBusy},
		{"name of live agent", idle, model.SpawnOrder{Name: "Upgrader1", Body: body}, ErrNameExists},
		{"name of agent being spawned", idle, model.SpawnOrder{Name: "Builder3", Body: body}, ErrNameExists},
		{"empty body", idle, model.SpawnOrder{Name: "X"}, ErrInvalidArgs},
		{"too expensive", idle, model.SpawnOrder{Name: "X", Body: append(body, model.Work)}, ErrNotEnoughResources},
	}
	for _, tc := range tests {
		if got := room.Spawn(tc.spawn, tc.order); got != tc.want {
			t.Errorf("%s: Spawn = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRoomTowerActsOncePerTick(t *testing.T) {
	tower := &model.Structure{ID: "t1", Kind: model.StructureTower, My: true, Store: model.Store{model.Energy: 500}, StoreCapacity: 1000}
	hostile := &model.Agent{ID: "h1", Name: "raider", Pos: pos(5, 5), Hits: 100, HitsMax: 100}
	room := NewRoom(&model.Snapshot{Structures: []*model.Structure{tower}, Hostiles: []*model.Agent{hostile}})

	if st := room.Attack(tower, hostile); st != OK {
		t.Fatalf("Attack = %v, want ok", st)
	}
	if st := room.TowerRepair(tower, tower); st != ErrBusy {
		t.Errorf("second tower action = %v, want busy", st)
	}
}

func TestRoomAgentActionChecks(t *testing.T) {
	a := worker("Builder1", pos(10, 10), 0)
	full := worker("Hauler1", pos(20, 20), 50)
	container := &model.Structure{ID: "c1", Kind: model.StructureContainer, Pos: pos(21, 21), Store: model.Store{model.Energy: 100}, StoreCapacity: 2000}
	far := &model.Structure{ID: "r1", Kind: model.StructureRoad, Pos: pos(30, 30), Hits: 10, HitsMax: 5000}
	room := NewRoom(&model.Snapshot{
		Agents:     []*model.Agent{a, full},
		Structures: []*model.Structure{container, far},
	})

	if st := room.Repair(a, far); st != ErrNotEnoughResources {
		t.Errorf("Repair with no energy = %v, want not-enough-resources", st)
	}
	a.Carry[model.Energy] = 10
	if st := room.Repair(a, far); st != ErrNotInRange {
		t.Errorf("Repair out of range = %v, want not-in-range", st)
	}
	if st := room.Withdraw(full, container, model.Energy); st != ErrFull {
		t.Errorf("Withdraw while full = %v, want full", st)
	}
	if st := room.Transfer(full, container, model.Energy, 0); st != OK {
		t.Errorf("Transfer = %v, want ok", st)
	}
	if got := room.Intents()[0].Amount; got != 50 {
		t.Errorf("transfer amount = %d, want 50", got)
	}
}

func TestRoomObstaclesAndPaths(t *testing.T) {
	grid := make([]model.TerrainType, 5*5)
	// Seal (2,2) in with walls.
	for _, p := range [][2]int{{1, 1}, {2, 1}, {3, 1}, {1, 2}, {3, 2}, {1, 3}, {2, 3}, {3, 3}} {
		grid[p[1]*5+p[0]] = model.Wall
	}
	room := NewRoom(&model.Snapshot{
		Terrain:    &model.Terrain{Width: 5, Height: 5, Grid: grid},
		Agents:     []*model.Agent{worker("A", pos(0, 4), 0)},
		Structures: []*model.Structure{{ID: "e1", Kind: model.StructureExtension, Pos: pos(4, 4)}},
	})

	if !room.IsObstacle(pos(1, 1)) {
		t.Error("terrain wall should be an obstacle")
	}
	if !room.IsObstacle(pos(0, 4)) {
		t.Error("tile with an agent should be an obstacle")
	}
	if !room.IsObstacle(pos(4, 4)) {
		t.Error("extension tile should be an obstacle")
	}
	if room.IsObstacle(pos(0, 0)) {
		t.Error("open plain should not be an obstacle")
	}
	if _, ok := room.PathLength(pos(0, 0), pos(2, 2)); ok {
		t.Error("sealed tile should be unreachable")
	}
	if n, ok := room.PathLength(pos(0, 0), pos(4, 0)); !ok || n != 4 {
		t.Errorf("PathLength = %d,%v, want 4,true", n, ok)
	}
}

func TestClosestHelpers(t *testing.T) {
	room := NewRoom(&model.Snapshot{})
	sources := []*model.Source{
		{ID: "far", Pos: pos(20, 20)},
		{ID: "tieA", Pos: pos(12, 10)},
		{ID: "tieB", Pos: pos(8, 10)},
	}
	got, ok := ClosestByRange(pos(10, 10), sources)
	if !ok || got.ID != "tieA" {
		t.Errorf("ClosestByRange = %v, want tieA (first of equal range)", got)
	}
	got, ok = ClosestByPath(room, pos(19, 19), sources)
	if !ok || got.ID != "far" {
		t.Errorf("ClosestByPath = %v, want far", got)
	}
	if _, ok := ClosestByRange(pos(0, 0), []*model.Source{}); ok {
		t.Error("ClosestByRange on empty slice should report false")
	}
	if n := len(InRange(pos(10, 10), sources, 2)); n != 2 {
		t.Errorf("InRange = %d items, want 2", n)
	}
}

func TestStatusText(t *testing.T) {
	var s Status
	if err := s.UnmarshalText([]byte("not-in-range")); err != nil || s != ErrNotInRange {
		t.Errorf("UnmarshalText = %v, %v", s, err)
	}
	if ErrRCLNotEnough.String() != "controller-level-insufficient" {
		t.Errorf("String() = %q", ErrRCLNotEnough.String())
	}
}
