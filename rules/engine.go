package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// maxNameRetries bounds how many suffixed names are tried after a clash.
const maxNameRetries = 8

// Scheduler keeps the colony's population at its quotas. Rules are
// considered in priority order; at most one order is placed per spawn per
// tick.
type Scheduler struct {
	mu           sync.RWMutex
	rules        []*Rule
	foundational model.Role
}

// NewScheduler compiles all rule conditions into expr bytecode and sorts by
// priority. When no agent of the foundational role is present, bodies are
// sized from the energy at hand instead of the room's full capacity.
func NewScheduler(rules []*Rule, foundational model.Role) (*Scheduler, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Scheduler{rules: compiled, foundational: foundational}, nil
}

// Swap atomically replaces the rule set. Compiles first; if compilation
// fails the old rules remain active.
func (s *Scheduler) Swap(rules []*Rule, foundational model.Role) error {
	compiled, err := compileRules(rules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	s.mu.Lock()
	s.rules = compiled
	s.foundational = foundational
	s.mu.Unlock()
	slog.Info("population rules swapped", "count", len(compiled), "rules", names)
	return nil
}

// Pass is one tick's scheduling state. Orders placed through it update its
// census and energy budget so later spawns in the same tick see them.
type Pass struct {
	rules     []*Rule
	q         world.Queries
	census    Census
	energy    int
	bootstrap bool
}

// Begin starts a scheduling pass for the current tick.
func (s *Scheduler) Begin(q world.Queries) *Pass {
	s.mu.RLock()
	rules, foundational := s.rules, s.foundational
	s.mu.RUnlock()

	census := TakeCensus(q)
	return &Pass{
		rules:     rules,
		q:         q,
		census:    census,
		energy:    q.EnergyAvailable(),
		bootstrap: foundational != model.RoleUnknown && census[foundational] == 0,
	}
}

// Census returns the pass's current per-role counts, including orders placed
// this tick.
func (p *Pass) Census() Census { return p.census }

// sizing is the energy a body plan is sized from this tick.
func (p *Pass) sizing() int {
	capacity := p.q.EnergyCapacity()
	if !p.bootstrap {
		return capacity
	}
	return max(p.energy, min(model.SpawnEnergyStart, capacity))
}

// Maintain places at most one order on spawn: the first rule that is under
// quota, active and affordable wins. It reports false when nothing was
// ordered, which is the common case.
func (p *Pass) Maintain(w world.World, spawn *model.Structure) (model.SpawnOrder, bool) {
	if spawn == nil || !spawn.My {
		return model.SpawnOrder{}, false
	}
	if spawn.Spawning != nil {
		slog.Debug("spawn busy", "spawn", spawn.ID, "spawning", spawn.Spawning.Name, "remaining", spawn.Spawning.RemainingTime)
		return model.SpawnOrder{}, false
	}

	sizing := p.sizing()
	temporary := sizing < p.q.EnergyCapacity()
	env := Env{q: p.q, census: p.census, energy: p.energy}

	for _, r := range p.rules {
		if p.census[r.Role] >= r.Quota {
			continue
		}
		if !r.active(env) {
			continue
		}
		body, ok := r.Body.Plan(sizing)
		if !ok || model.BodyCost(body) > p.energy {
			continue
		}

		order := model.SpawnOrder{Role: r.Role, Body: body, Temporary: temporary}
		st := p.spawn(w, spawn, &order)
		switch st {
		case world.OK:
			p.census[r.Role]++
			p.energy -= model.BodyCost(body)
			slog.Info("spawning new agent",
				"spawn", spawn.ID,
				"role", r.Role,
				"name", order.Name,
				"parts", len(body),
				"temporary", temporary,
			)
			return order, true
		case world.ErrBusy:
			return model.SpawnOrder{}, false
		default:
			slog.Debug("spawn order rejected", "rule", r.Name, "spawn", spawn.ID, "status", st)
		}
	}
	return model.SpawnOrder{}, false
}

// spawn submits order under a fresh name, retrying with a suffix while the
// name is taken.
func (p *Pass) spawn(w world.World, spawn *model.Structure, order *model.SpawnOrder) world.Status {
	base := fmt.Sprintf("%s%d", order.Role.Title(), p.q.Tick())
	order.Name = base
	for i := 1; ; i++ {
		st := w.Spawn(spawn, *order)
		if st != world.ErrNameExists || i > maxNameRetries {
			return st
		}
		order.Name = fmt.Sprintf("%s_%d", base, i)
	}
}

func (r *Rule) active(env Env) bool {
	if r.program == nil {
		return true
	}
	result, err := vm.Run(r.program, env)
	if err != nil {
		slog.Warn("rule condition error", "rule", r.Name, "error", err)
		return false
	}
	match, ok := result.(bool)
	return ok && match
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		if r.Role == model.RoleUnknown {
			return nil, fmt.Errorf("rule %q: no role", r.Name)
		}
		r.program = nil
		if r.ConditionSrc == "" {
			continue
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
