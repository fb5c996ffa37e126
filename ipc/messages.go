package ipc

import (
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// Message types. The host sends hello once, then one tick per game tick;
// the sidecar answers each with ack and intents respectively.
const (
	TypeHello   = "hello"
	TypeAck     = "ack"
	TypeTick    = "tick"
	TypeIntents = "intents"
)

type HelloMessage struct {
	Player string `json:"player"`
	Room   string `json:"room"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}

type TickMessage struct {
	Snapshot model.Snapshot `json:"snapshot"`
}

// IntentsMessage carries the actions accepted for one tick, in the order
// they were decided.
type IntentsMessage struct {
	Tick    int            `json:"tick"`
	Intents []world.Intent `json:"intents"`
	Events  []EventNote    `json:"events,omitempty"`
}

// EventNote is a colony event surfaced to the host for display.
type EventNote struct {
	Kind   string `json:"kind"`
	Tick   int    `json:"tick"`
	Detail string `json:"detail"`
}
