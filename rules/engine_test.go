package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

func spawnAt(id string, x, y int) *model.Structure {
	return &model.Structure{ID: id, Kind: model.StructureSpawn, My: true, Pos: model.Position{X: x, Y: y}, Hits: 5000, HitsMax: 5000}
}

func agent(name string, role model.Role, ttl int) *model.Agent {
	return &model.Agent{
		ID: "id-" + name, Name: name, My: true, Role: role,
		Body:        []model.BodyPart{{Kind: model.Work}, {Kind: model.Carry}, {Kind: model.Move}},
		TicksToLive: ttl, Hits: 300, HitsMax: 300,
	}
}

func newScheduler(t *testing.T, p Population) *Scheduler {
	t.Helper()
	s, err := NewScheduler(p.Compile(), p.Foundational)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestDefaultPopulationCompiles(t *testing.T) {
	s := newScheduler(t, DefaultPopulation())
	if len(s.rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(s.rules))
	}
	for i := 1; i < len(s.rules); i++ {
		if s.rules[i].Priority > s.rules[i-1].Priority {
			t.Errorf("rules not sorted by priority: %s (%d) > %s (%d)",
				s.rules[i].Name, s.rules[i].Priority,
				s.rules[i-1].Name, s.rules[i-1].Priority)
		}
	}
	if s.rules[0].Role != model.RoleHauler {
		t.Errorf("first rule role = %v, want hauler", s.rules[0].Role)
	}
}

func TestBootstrapHaulerWithStartingEnergy(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	room := world.NewRoom(&model.Snapshot{
		Tick: 12, EnergyAvailable: 300, EnergyCapacityAvailable: 300,
		Structures: []*model.Structure{spawn},
	})
	pass := newScheduler(t, DefaultPopulation()).Begin(room)

	order, ok := pass.Maintain(room, spawn)
	if !ok {
		t.Fatal("expected a hauler order")
	}
	want := model.SpawnOrder{
		Name: "Hauler12",
		Role: model.RoleHauler,
		Body: []model.PartKind{model.Carry, model.Carry, model.Carry, model.Move, model.Move, model.Move},
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBootstrapMarksUndersizedAgentsTemporary(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	room := world.NewRoom(&model.Snapshot{
		Tick: 3, EnergyAvailable: 350, EnergyCapacityAvailable: 800,
		Structures: []*model.Structure{spawn},
	})
	pass := newScheduler(t, DefaultPopulation()).Begin(room)

	order, ok := pass.Maintain(room, spawn)
	if !ok {
		t.Fatal("expected an order")
	}
	if !order.Temporary {
		t.Error("bootstrap order below capacity should be temporary")
	}
	if n := len(order.Body); n != 6 {
		t.Errorf("body parts = %d, want 6 (sized from 350 energy)", n)
	}
}

func TestNoOrderWhenQuotaFilledBySpawningAgent(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	spawningHarvester := agent("Harvester4", model.RoleHarvester, 0)
	spawningHarvester.Spawning = true
	room := world.NewRoom(&model.Snapshot{
		Tick: 5, EnergyAvailable: 550, EnergyCapacityAvailable: 550,
		Agents:     []*model.Agent{agent("Harvester1", model.RoleHarvester, 1000), spawningHarvester},
		Structures: []*model.Structure{spawn},
	})
	p := Population{Roles: []Quota{{Role: model.RoleHarvester, Count: 2, Priority: 1}}}
	pass := newScheduler(t, p).Begin(room)

	if order, ok := pass.Maintain(room, spawn); ok {
		t.Errorf("unexpected order %+v", order)
	}
	if n := len(room.Intents()); n != 0 {
		t.Errorf("intents = %d, want 0", n)
	}
}

func TestDyingAgentDoesNotCount(t *testing.T) {
	// Three parts take nine ticks to replace; eight ticks left is not enough.
	dying := agent("Hauler1", model.RoleHauler, 8)
	room := world.NewRoom(&model.Snapshot{Agents: []*model.Agent{dying}})
	if got := TakeCensus(room)[model.RoleHauler]; got != 0 {
		t.Errorf("census = %d, want 0", got)
	}
	dying.TicksToLive = 10
	if got := TakeCensus(room)[model.RoleHauler]; got != 1 {
		t.Errorf("census = %d, want 1", got)
	}
}

func TestQuotaHoldsAcrossSpawns(t *testing.T) {
	a, b := spawnAt("s1", 10, 10), spawnAt("s2", 20, 20)
	room := world.NewRoom(&model.Snapshot{
		Tick: 9, EnergyAvailable: 1300, EnergyCapacityAvailable: 1300,
		Structures: []*model.Structure{a, b},
	})
	p := Population{Roles: []Quota{{Role: model.RoleHauler, Count: 1, Priority: 1}}}
	pass := newScheduler(t, p).Begin(room)

	if _, ok := pass.Maintain(room, a); !ok {
		t.Fatal("first spawn should order the hauler")
	}
	if order, ok := pass.Maintain(room, b); ok {
		t.Errorf("second spawn ordered %+v past the quota", order)
	}
	if got := pass.Census()[model.RoleHauler]; got != 1 {
		t.Errorf("census = %d, want 1", got)
	}
}

func TestPriorityAndAffordability(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	hauler := agent("Hauler1", model.RoleHauler, 1000)

	tests := []struct {
		name     string
		energy   int
		capacity int
		wantRole model.Role
		wantOK   bool
	}{
		{"harvester before upgrader", 550, 550, model.RoleHarvester, true},
		{"nothing affordable yet", 100, 550, model.RoleUnknown, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			room := world.NewRoom(&model.Snapshot{
				EnergyAvailable: tc.energy, EnergyCapacityAvailable: tc.capacity,
				Agents:     []*model.Agent{hauler},
				Structures: []*model.Structure{spawn},
			})
			order, ok := newScheduler(t, DefaultPopulation()).Begin(room).Maintain(room, spawn)
			if ok != tc.wantOK || order.Role != tc.wantRole {
				t.Errorf("Maintain = %v,%v, want %v,%v", order.Role, ok, tc.wantRole, tc.wantOK)
			}
		})
	}
}

func TestSkipsUnaffordableRoleForCheaperOne(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	room := world.NewRoom(&model.Snapshot{
		EnergyAvailable: 300, EnergyCapacityAvailable: 800,
		Agents:     []*model.Agent{agent("Hauler1", model.RoleHauler, 1000)},
		Structures: []*model.Structure{spawn},
	})
	p := Population{Roles: []Quota{
		{Role: model.RoleHarvester, Count: 1, Priority: 2},
		{Role: model.RoleHauler, Count: 2, Priority: 1, MaxRepeats: 1},
	}}
	order, ok := newScheduler(t, p).Begin(room).Maintain(room, spawn)
	if !ok || order.Role != model.RoleHauler {
		t.Fatalf("Maintain = %v,%v, want hauler", order.Role, ok)
	}
	if order.Temporary {
		t.Error("agents sized from full capacity are not temporary")
	}
}

func TestConditionGatesRule(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	p := Population{Roles: []Quota{
		{Role: model.RoleBuilder, Count: 1, Priority: 1, When: "ConstructionSites() > 0 && Count(\"builder\") < 1"},
	}}
	s := newScheduler(t, p)

	snap := &model.Snapshot{
		EnergyAvailable: 300, EnergyCapacityAvailable: 300,
		Structures: []*model.Structure{spawn},
	}
	room := world.NewRoom(snap)
	if _, ok := s.Begin(room).Maintain(room, spawn); ok {
		t.Error("builder ordered with no construction sites")
	}

	snap.Sites = []*model.Site{{ID: "site1", Kind: model.StructureExtension}}
	room = world.NewRoom(snap)
	if order, ok := s.Begin(room).Maintain(room, spawn); !ok || order.Role != model.RoleBuilder {
		t.Errorf("Maintain = %v,%v, want builder", order.Role, ok)
	}
}

func TestCompileErrorKeepsOldRules(t *testing.T) {
	bad := []*Rule{{Name: "broken", Role: model.RoleHauler, Quota: 1, Body: DefaultBody(model.RoleHauler), ConditionSrc: "Count("}}
	if _, err := NewScheduler(bad, model.RoleHauler); err == nil {
		t.Error("expected a compile error")
	}

	s := newScheduler(t, DefaultPopulation())
	if err := s.Swap(bad, model.RoleHauler); err == nil {
		t.Error("Swap should fail on a bad condition")
	}
	if len(s.rules) != 4 {
		t.Errorf("rules after failed swap = %d, want 4", len(s.rules))
	}
}

func TestNameClashRetriesWithSuffix(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	room := world.NewRoom(&model.Snapshot{
		Tick: 7, EnergyAvailable: 300, EnergyCapacityAvailable: 300,
		Agents:     []*model.Agent{agent("Hauler7", model.RoleHarvester, 1000)},
		Structures: []*model.Structure{spawn},
	})
	order, ok := newScheduler(t, DefaultPopulation()).Begin(room).Maintain(room, spawn)
	if !ok {
		t.Fatal("expected an order")
	}
	if order.Name != "Hauler7_1" {
		t.Errorf("name = %q, want Hauler7_1", order.Name)
	}
}

func TestBusySpawnIsSkipped(t *testing.T) {
	spawn := spawnAt("s1", 10, 10)
	spawn.Spawning = &model.SpawnProgress{Name: "Builder2", RemainingTime: 4}
	room := world.NewRoom(&model.Snapshot{
		EnergyAvailable: 300, EnergyCapacityAvailable: 300,
		Structures: []*model.Structure{spawn},
	})
	if _, ok := newScheduler(t, DefaultPopulation()).Begin(room).Maintain(room, spawn); ok {
		t.Error("busy spawn should not take an order")
	}
}
