package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// EventKind identifies a colony event worth surfacing to the operator.
type EventKind string

const (
	EventAgentLost       EventKind = "agent_lost"
	EventStructureLost   EventKind = "structure_lost"
	EventHostilesSighted EventKind = "hostiles_sighted"
	EventEnergyCrisis    EventKind = "energy_crisis"
	EventControllerLevel EventKind = "controller_level"
)

// Event is a notable change detected by diffing consecutive ticks.
type Event struct {
	Kind   EventKind `json:"kind"`
	Tick   int       `json:"tick"`
	Detail string    `json:"detail"`
}

// agentSeen is what the detector remembers about one of our agents.
type agentSeen struct {
	role        model.Role
	ticksToLive int
}

// stateSnapshot captures the diffable fields of one tick. The colony keeps
// the last one and compares the next tick against it.
type stateSnapshot struct {
	tick            int
	agents          map[string]agentSeen           // name → role and remaining life
	structures      map[string]model.StructureKind // id → kind for owned structures
	hostiles        int
	haulers         int
	energy          int
	controllerLevel int
}

// inCrisis reports a colony that cannot refill itself: nobody moves energy
// and the spawn cannot afford a starter body.
func (s stateSnapshot) inCrisis() bool {
	return s.haulers == 0 && s.energy < model.SpawnEnergyStart
}

// takeSnapshot captures the current diffable state for next tick's comparison.
// It must run before any spawn order of the tick claims energy.
func takeSnapshot(q world.Queries) stateSnapshot {
	snap := stateSnapshot{
		tick:       q.Tick(),
		agents:     make(map[string]agentSeen, len(q.MyAgents())),
		structures: make(map[string]model.StructureKind),
		hostiles:   len(q.Hostiles()),
		energy:     q.EnergyAvailable(),
	}
	for _, a := range q.MyAgents() {
		snap.agents[a.Name] = agentSeen{role: a.Role, ticksToLive: a.TicksToLive}
		if a.Role == model.RoleHauler {
			snap.haulers++
		}
	}
	for _, s := range q.Structures() {
		if s.My {
			snap.structures[s.ID] = s.Kind
		}
	}
	if c := q.Controller(); c != nil && c.My {
		snap.controllerLevel = c.Level
	}
	return snap
}

// detectEvents compares the current tick against the previous snapshot and
// returns any triggered events. Returns nil if prev is nil (first tick).
func detectEvents(prev *stateSnapshot, cur stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	tick := cur.tick

	// Agents that were about to expire are not losses.
	for _, name := range missing(prev.agents, cur.agents) {
		seen := prev.agents[name]
		if seen.ticksToLive > 1 {
			events = append(events, Event{
				Kind:   EventAgentLost,
				Tick:   tick,
				Detail: fmt.Sprintf("lost %s %s with %d ticks to live", seen.role, name, seen.ticksToLive),
			})
		}
	}

	for _, id := range missing(prev.structures, cur.structures) {
		events = append(events, Event{
			Kind:   EventStructureLost,
			Tick:   tick,
			Detail: fmt.Sprintf("lost %s %s", prev.structures[id], id),
		})
	}

	if prev.hostiles == 0 && cur.hostiles > 0 {
		events = append(events, Event{
			Kind:   EventHostilesSighted,
			Tick:   tick,
			Detail: fmt.Sprintf("%d hostiles in the room", cur.hostiles),
		})
	}

	if !prev.inCrisis() && cur.inCrisis() {
		events = append(events, Event{
			Kind:   EventEnergyCrisis,
			Tick:   tick,
			Detail: fmt.Sprintf("no haulers and %d energy available", cur.energy),
		})
	}

	if prev.controllerLevel != cur.controllerLevel {
		events = append(events, Event{
			Kind:   EventControllerLevel,
			Tick:   tick,
			Detail: fmt.Sprintf("controller level %d → %d", prev.controllerLevel, cur.controllerLevel),
		})
	}

	return events
}

// missing returns the keys of prev absent from cur, sorted so events come out
// in a stable order.
func missing[V any](prev, cur map[string]V) []string {
	var out []string
	for k := range prev {
		if _, ok := cur[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// formatEvents renders events as one line each for the log.
func formatEvents(events []Event) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "[tick %d] %s: %s", e.Tick, e.Kind, e.Detail)
	}
	return b.String()
}
