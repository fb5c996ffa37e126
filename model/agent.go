package model

// BodyPart is one functional unit of an agent. A part with zero hits grants
// nothing.
type BodyPart struct {
	Kind  PartKind `json:"type"`
	Hits  int      `json:"hits"`
	Boost string   `json:"boost,omitempty"`
}

// Store maps resource kind to amount held.
type Store map[Resource]int

// Total sums every resource in the store.
func (s Store) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// Agent is a mobile worker unit, owned or hostile.
type Agent struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Owner         string     `json:"owner,omitempty"`
	My            bool       `json:"my"`
	Role          Role       `json:"role"`
	Body          []BodyPart `json:"body"`
	Carry         Store      `json:"carry"`
	CarryCapacity int        `json:"carryCapacity"`
	Pos           Position   `json:"pos"`
	Hits          int        `json:"hits"`
	HitsMax       int        `json:"hitsMax"`
	TicksToLive   int        `json:"ticksToLive"`
	Fatigue       int        `json:"fatigue"`
	Spawning      bool       `json:"spawning"`
	Temporary     bool       `json:"temporary"`
}

func (a *Agent) ObjectID() string   { return a.ID }
func (a *Agent) Position() Position { return a.Pos }

// Energy is the carried energy amount.
func (a *Agent) Energy() int { return a.Carry[Energy] }

func (a *Agent) HasEnergy() bool { return a.Carry[Energy] > 0 }

func (a *Agent) IsFull() bool { return a.Carry.Total() >= a.CarryCapacity }

// ActiveParts counts undamaged parts of the given kind.
func (a *Agent) ActiveParts(kind PartKind) int {
	n := 0
	for _, p := range a.Body {
		if p.Kind == kind && p.Hits > 0 {
			n++
		}
	}
	return n
}

// Power computes an agent's real per-tick output for a part-driven method,
// counting only active parts and applying their boosts.
func (a *Agent) Power(kind PartKind, base float64, method string) float64 {
	total := 0.0
	for _, p := range a.Body {
		if p.Kind != kind || p.Hits <= 0 {
			continue
		}
		total += base * BoostFactor(kind, p.Boost, method)
	}
	return total
}

// DefenceFactor is the damage multiplier from the first still-active part,
// which absorbs incoming damage first. Only boosted tough parts reduce it.
func (a *Agent) DefenceFactor() float64 {
	for _, p := range a.Body {
		if p.Hits <= 0 {
			continue
		}
		if p.Kind == Tough {
			return BoostFactor(Tough, p.Boost, BoostDamage)
		}
		return 1
	}
	return 1
}

// BodyKinds strips hit and boost info, leaving the plan shape.
func (a *Agent) BodyKinds() []PartKind {
	out := make([]PartKind, len(a.Body))
	for i, p := range a.Body {
		out[i] = p.Kind
	}
	return out
}
