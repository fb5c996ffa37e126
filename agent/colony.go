package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/nstehr/colony/colony-core/behavior"
	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/rules"
	"github.com/nstehr/colony/colony-core/tower"
	"github.com/nstehr/colony/colony-core/world"
)

// Host supplies the world view for the tick being advanced.
type Host interface {
	World() world.World
}

// Journal receives one report per tick.
type Journal interface {
	Append(ctx context.Context, v any) error
}

// Report is what one tick decided.
type Report struct {
	Tick      int                          `json:"tick"`
	Room      string                       `json:"room"`
	Orders    []model.SpawnOrder           `json:"orders,omitempty"`
	Decisions map[string]behavior.Decision `json:"decisions"`
	Towers    map[string]tower.Action      `json:"towers,omitempty"`
	Events    []Event                      `json:"events,omitempty"`
	Pruned    int                          `json:"pruned,omitempty"`
	Failures  int                          `json:"failures,omitempty"`
	Intents   []world.Intent               `json:"intents,omitempty"`
}

// Colony runs one room's decisions tick after tick. Ticks are advanced one
// at a time; the previous tick's snapshot is kept for event detection.
type Colony struct {
	Scheduler *rules.Scheduler
	Store     memory.Store
	Journal   Journal
	Options   behavior.Options

	host Host

	mu   sync.Mutex
	prev *stateSnapshot
	last Report
}

func NewColony(host Host, scheduler *rules.Scheduler, store memory.Store) *Colony {
	return &Colony{host: host, Scheduler: scheduler, Store: store}
}

// Loop advances the colony by one tick against the host's current world.
// Failures are logged; the next tick runs regardless.
func (c *Colony) Loop() {
	if _, err := c.Advance(context.Background(), c.host.World()); err != nil {
		slog.Error("tick failed", "error", err)
	}
}

// Last returns the report of the most recent tick.
func (c *Colony) Last() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Advance runs every decision for one tick: state records are loaded, dead
// entities forgotten, each spawn offered to the scheduler, then every agent
// and tower decides once. The returned error covers state I/O only; the
// decisions themselves have already been issued to w.
func (c *Colony) Advance(ctx context.Context, w world.World) (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := Report{
		Tick:      w.Tick(),
		Room:      w.RoomName(),
		Decisions: make(map[string]behavior.Decision),
		Towers:    make(map[string]tower.Action),
	}
	var errs []error

	table, err := c.Store.Load(ctx)
	if err != nil {
		slog.Error("loading state records", "room", report.Room, "error", err)
		errs = append(errs, fmt.Errorf("load records: %w", err))
		table = memory.NewTable()
	}
	report.Pruned = table.Prune(liveAgents(w), liveStructures(w))
	table.Tag(w.MyAgents(), report.Tick)
	cur := takeSnapshot(w)

	pass := c.Scheduler.Begin(w)
	for _, spawn := range world.StructuresOf(w, model.StructureSpawn) {
		if !spawn.My {
			continue
		}
		ok := isolate("spawn", spawn.ID, func() {
			order, placed := pass.Maintain(w, spawn)
			if !placed {
				return
			}
			report.Orders = append(report.Orders, order)
			table.PutAgent(order.Name, memory.Record{Role: order.Role, Temporary: order.Temporary, Born: report.Tick})
		})
		if !ok {
			report.Failures++
		}
	}

	for _, a := range w.MyAgents() {
		if a.Spawning {
			continue
		}
		ok := isolate("agent", a.Name, func() {
			d, rec, err := behavior.Run(w, a, table.Agent(a, report.Tick), c.Options)
			if err != nil {
				slog.Warn("agent has no behavior", "agent", a.Name, "error", err)
				report.Failures++
				return
			}
			table.PutAgent(a.Name, rec)
			report.Decisions[a.Name] = d
		})
		if !ok {
			report.Failures++
		}
	}

	for _, t := range world.StructuresOf(w, model.StructureTower) {
		if !t.My {
			continue
		}
		ok := isolate("tower", t.ID, func() {
			act, rec := tower.Run(w, t, table.Structure(t.ID))
			table.PutStructure(t.ID, rec)
			report.Towers[t.ID] = act
		})
		if !ok {
			report.Failures++
		}
	}

	report.Events = detectEvents(c.prev, cur)
	c.prev = &cur
	if len(report.Events) > 0 {
		slog.Info("colony events", "room", report.Room, "events", formatEvents(report.Events))
	}

	if err := c.Store.Save(ctx, table); err != nil {
		slog.Error("saving state records", "room", report.Room, "error", err)
		errs = append(errs, fmt.Errorf("save records: %w", err))
	}

	if r, ok := w.(interface{ Intents() []world.Intent }); ok {
		report.Intents = r.Intents()
	}
	if c.Journal != nil {
		if err := c.Journal.Append(ctx, report); err != nil {
			slog.Warn("journal append failed", "tick", report.Tick, "error", err)
		}
	}

	slog.Debug("tick complete",
		"room", report.Room,
		"tick", report.Tick,
		"orders", len(report.Orders),
		"agents", len(report.Decisions),
		"towers", len(report.Towers),
		"failures", report.Failures,
	)
	c.last = report

	return report, errors.Join(errs...)
}

// isolate runs one entity's decision so that a panic only costs that entity
// its turn.
func isolate(kind, id string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("decision panicked", "kind", kind, "id", id, "panic", r, "stack", string(debug.Stack()))
			ok = false
		}
	}()
	fn()
	return true
}

func liveAgents(q world.Queries) map[string]bool {
	live := make(map[string]bool, len(q.MyAgents()))
	for _, a := range q.MyAgents() {
		live[a.Name] = true
	}
	return live
}

func liveStructures(q world.Queries) map[string]bool {
	live := make(map[string]bool)
	for _, s := range q.Structures() {
		if s.My {
			live[s.ID] = true
		}
	}
	return live
}
