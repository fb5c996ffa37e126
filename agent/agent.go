package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nstehr/colony/colony-core/ipc"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// ColonyFactory builds the colony that will run a room once the host has
// said which room it is. The session is the colony's host.
type ColonyFactory func(s *Session, room string) (*Colony, error)

// Session owns the decision-making for a single host connection.
type Session struct {
	ID     string
	Conn   *ipc.Connection
	Player string
	Room   string

	factory ColonyFactory
	colony  *Colony
	world   world.World
}

func New(conn *ipc.Connection, factory ColonyFactory) *Session {
	return &Session{ID: uuid.NewString(), Conn: conn, factory: factory}
}

// World is the room view of the tick being handled.
func (s *Session) World() world.World { return s.world }

// Colony is nil until the hello handshake completed.
func (s *Session) Colony() *Colony { return s.colony }

// HandleHello completes the handshake so the host knows the sidecar is ready.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	if hello.Room == "" {
		return nil, errors.New("hello without a room")
	}

	colony, err := s.factory(s, hello.Room)
	if err != nil {
		return nil, fmt.Errorf("open colony %s: %w", hello.Room, err)
	}
	if err := s.Close(); err != nil {
		slog.Warn("closing previous colony", "room", s.Room, "error", err)
	}
	s.colony = colony
	s.Player = hello.Player
	s.Room = hello.Room
	if s.Conn != nil {
		s.Conn.Player = hello.Player
	}
	slog.Info("player identified", "player", s.Player, "room", s.Room, "session", s.ID)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: s.ID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick runs one tick against the snapshot and replies with the
// accepted intents.
func (s *Session) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	if s.colony == nil {
		return nil, errors.New("tick before hello")
	}
	var msg ipc.TickMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal tick: %w", err)
	}
	snap := msg.Snapshot
	if snap.Room == "" {
		snap.Room = s.Room
	}
	if snap.Room != s.Room {
		return nil, fmt.Errorf("tick for room %s on a %s session", snap.Room, s.Room)
	}

	room := world.NewRoom(&snap)
	s.world = room
	s.colony.Loop()
	s.world = nil
	report := s.colony.Last()

	slog.Info("tick handled",
		"player", s.Player,
		"room", s.Room,
		"tick", snap.Tick,
		"energy", fmt.Sprintf("%d/%d", snap.EnergyAvailable, snap.EnergyCapacityAvailable),
		"agents", roleCounts(snap.Agents),
		"hostiles", len(snap.Hostiles),
		"intents", len(room.Intents()),
	)

	reply := ipc.IntentsMessage{Tick: snap.Tick, Intents: room.Intents()}
	for _, e := range report.Events {
		reply.Events = append(reply.Events, ipc.EventNote{Kind: string(e.Kind), Tick: e.Tick, Detail: e.Detail})
	}
	out, err := ipc.NewEnvelope(ipc.TypeIntents, reply)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Close releases the colony's state store and journal.
func (s *Session) Close() error {
	if s.colony == nil {
		return nil
	}
	err := s.colony.Store.Close()
	if j, ok := s.colony.Journal.(io.Closer); ok {
		err = errors.Join(err, j.Close())
	}
	return err
}

func roleCounts(agents []*model.Agent) map[string]int {
	counts := make(map[string]int)
	for _, a := range agents {
		counts[a.Role.String()]++
	}
	return counts
}
