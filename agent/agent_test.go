package agent

import (
	"encoding/json"
	"testing"

	"github.com/nstehr/colony/colony-core/ipc"
	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/rules"
	"github.com/nstehr/colony/colony-core/world"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return New(nil, func(s *Session, room string) (*Colony, error) {
		pop := rules.DefaultPopulation()
		sched, err := rules.NewScheduler(pop.Compile(), pop.Foundational)
		if err != nil {
			return nil, err
		}
		return NewColony(s, sched, memory.NewMemStore()), nil
	})
}

func envelope(t *testing.T, msgType string, data any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestHandleHello(t *testing.T) {
	s := newSession(t)
	reply, err := s.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1", Room: "W1N1"}))
	if err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	var ack ipc.AckMessage
	if err := json.Unmarshal(reply.Data, &ack); err != nil {
		t.Fatal(err)
	}
	if reply.Type != ipc.TypeAck || ack.Status != "ok" || ack.Session != s.ID {
		t.Errorf("reply = %s %+v, want ok ack for session %s", reply.Type, ack, s.ID)
	}
	if s.Colony() == nil || s.Room != "W1N1" {
		t.Errorf("session not bound to its room: %+v", s)
	}
}

func TestHandleHelloNeedsRoom(t *testing.T) {
	if _, err := newSession(t).HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1"})); err == nil {
		t.Error("expected an error for a hello without a room")
	}
}

func TestHandleTickBeforeHello(t *testing.T) {
	if _, err := newSession(t).HandleTick(envelope(t, ipc.TypeTick, ipc.TickMessage{})); err == nil {
		t.Error("expected an error for a tick before hello")
	}
}

func TestHandleTickRepliesWithIntents(t *testing.T) {
	s := newSession(t)
	if _, err := s.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1", Room: "W1N1"})); err != nil {
		t.Fatal(err)
	}

	reply, err := s.HandleTick(envelope(t, ipc.TypeTick, ipc.TickMessage{Snapshot: *emptyRoom(10)}))
	if err != nil {
		t.Fatalf("HandleTick: %v", err)
	}
	var msg ipc.IntentsMessage
	if err := json.Unmarshal(reply.Data, &msg); err != nil {
		t.Fatal(err)
	}
	if reply.Type != ipc.TypeIntents || msg.Tick != 10 {
		t.Fatalf("reply = %s tick %d, want intents for tick 10", reply.Type, msg.Tick)
	}
	if len(msg.Intents) != 1 || msg.Intents[0].Action != world.ActionSpawn || msg.Intents[0].Order.Name != "Hauler10" {
		t.Errorf("intents = %+v, want one spawn of Hauler10", msg.Intents)
	}
	if s.World() != nil {
		t.Error("world retained after the tick")
	}
}

func TestHandleTickRejectsOtherRoom(t *testing.T) {
	s := newSession(t)
	if _, err := s.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1", Room: "W1N1"})); err != nil {
		t.Fatal(err)
	}
	snap := emptyRoom(10)
	snap.Room = "W2N2"
	if _, err := s.HandleTick(envelope(t, ipc.TypeTick, ipc.TickMessage{Snapshot: *snap})); err == nil {
		t.Error("expected an error for a snapshot of another room")
	}
}
