// Package tower picks the single action a defensive tower takes each tick.
package tower

import (
	"log/slog"

	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

const (
	// killWindow is how many ticks ahead the damage race looks.
	killWindow = 3
	// supportRange is how close a healer must be to keep the front hostile
	// alive.
	supportRange = 3
)

// Action is what a tower did this tick.
type Action struct {
	Tier   string           `json:"tier"`
	Action world.ActionKind `json:"action,omitempty"`
	Target string           `json:"target,omitempty"`
	Status world.Status     `json:"status"`
}

type tier func(w world.World, t *model.Structure) (Action, bool)

// Run evaluates the tower's tiers in order and performs at most one action:
// combat, heavy repair, healing, then light repair when energy allows.
func Run(w world.World, t *model.Structure, rec memory.Record) (Action, memory.Record) {
	if t.Energy() == 0 {
		return Action{Tier: "idle"}, rec
	}
	for _, try := range []tier{attack, heavyRepair, heal, lightRepair} {
		act, ok := try(w, t)
		if !ok {
			continue
		}
		if act.Status != world.OK {
			slog.Warn("tower action rejected", "tower", t.ID, "tier", act.Tier, "target", act.Target, "status", act.Status)
		}
		if act.Target != rec.Target {
			slog.Debug("tower switched target", "tower", t.ID, "tier", act.Tier, "from", rec.Target, "to", act.Target)
			rec.Target = act.Target
		}
		return act, rec
	}
	rec.Target = ""
	return Action{Tier: "idle"}, rec
}

// attack settles combat. Against a supported hostile the tower races the
// incoming heal: it takes the kill when it can win within the window,
// finishes off the weakest hostile when the healer out-heals it up close,
// and otherwise suppresses the healer.
func attack(w world.World, t *model.Structure) (Action, bool) {
	hostiles := w.Hostiles()
	closest, ok := world.ClosestByRange(t.Pos, hostiles)
	if !ok {
		return Action{}, false
	}
	healer, hasHealer := world.ClosestByRange(t.Pos, world.Filter(hostiles, func(a *model.Agent) bool {
		return a.ActiveParts(model.Heal) > 0
	}))

	target := closest
	if hasHealer && healer != closest && healer.Pos.RangeTo(closest.Pos) <= supportRange {
		dpt := DamagePerTick(t.Pos, closest)
		hpt := IncomingHeal(closest, hostiles)
		switch {
		case float64(closest.Hits) < (dpt-hpt)*killWindow:
			target = closest
		case t.Pos.RangeTo(closest.Pos) <= model.TowerOptimalRange && DamagePerTick(t.Pos, healer) <= MeleeHealPerTick(healer):
			target = weakest(world.InRange(t.Pos, hostiles, model.TowerOptimalRange))
		default:
			target = healer
		}
	}
	return Action{Tier: "attack", Action: world.ActionAttack, Target: target.ID, Status: w.Attack(t, target)}, true
}

// weakest returns the hostile with the fewest hits; ties go to the earlier.
func weakest(hostiles []*model.Agent) *model.Agent {
	var out *model.Agent
	for _, h := range hostiles {
		if out == nil || h.Hits < out.Hits {
			out = h
		}
	}
	return out
}

func heavyRepair(w world.World, t *model.Structure) (Action, bool) {
	s, ok := world.ClosestByRange(t.Pos, world.Filter(w.Structures(), func(s *model.Structure) bool {
		return s.HitsMax > 0 && !s.Kind.IsFortification() && s.Hits*2 <= s.HitsMax
	}))
	if !ok {
		return Action{}, false
	}
	return Action{Tier: "heavy-repair", Action: world.ActionRepair, Target: s.ID, Status: w.TowerRepair(t, s)}, true
}

func heal(w world.World, t *model.Structure) (Action, bool) {
	a, ok := world.ClosestByRange(t.Pos, world.Filter(w.MyAgents(), func(a *model.Agent) bool {
		power := PowerAt(t.Pos.RangeTo(a.Pos), model.TowerPowerHeal)
		return !a.Spawning && float64(a.Hits) <= float64(a.HitsMax)-power
	}))
	if !ok {
		return Action{}, false
	}
	return Action{Tier: "heal", Action: world.ActionHeal, Target: a.ID, Status: w.Heal(t, a)}, true
}

// lightRepair tops up structures only while the tower has energy to spare,
// and only where a full repair would not overshoot.
func lightRepair(w world.World, t *model.Structure) (Action, bool) {
	if t.Energy()*2 <= t.StoreCapacity {
		return Action{}, false
	}
	s, ok := world.ClosestByRange(t.Pos, world.Filter(w.Structures(), func(s *model.Structure) bool {
		power := PowerAt(t.Pos.RangeTo(s.Pos), model.TowerPowerRepair)
		return s.HitsMax > 0 && !s.Kind.IsFortification() && float64(s.Hits) <= float64(s.HitsMax)-power
	}))
	if !ok {
		return Action{}, false
	}
	return Action{Tier: "light-repair", Action: world.ActionRepair, Target: s.ID, Status: w.TowerRepair(t, s)}, true
}
