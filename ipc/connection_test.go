package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

func TestEnvelopeFraming(t *testing.T) {
	env, err := NewEnvelope(TypeHello, HelloMessage{Player: "p1", Room: "W1N1"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	if n := binary.LittleEndian.Uint32(buf.Bytes()[:4]); int(n) != buf.Len()-4 {
		t.Errorf("length prefix = %d, payload is %d bytes", n, buf.Len()-4)
	}

	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	var hello HelloMessage
	if err := json.Unmarshal(got.Data, &hello); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(HelloMessage{Player: "p1", Room: "W1N1"}, hello); diff != "" {
		t.Errorf("hello mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEnvelopeRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"zero length", []byte{0, 0, 0, 0}},
		{"oversized", binary.LittleEndian.AppendUint32(nil, maxFrame+1)},
		{"truncated", append(binary.LittleEndian.AppendUint32(nil, 10), '{')},
		{"no type", append(binary.LittleEndian.AppendUint32(nil, 11), []byte(`{"data":{}}`)...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadEnvelope(bytes.NewReader(tc.frame)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReadLoopDispatches(t *testing.T) {
	defer goleak.VerifyNone(t)

	server, client := net.Pipe()
	c := NewConnection(server, nil)
	c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
		return &ack, err
	})
	c.RegisterHandler(TypeTick, func(env Envelope) (*Envelope, error) {
		return nil, errors.New("bad tick")
	})

	done := make(chan struct{})
	go func() {
		c.ReadLoop()
		close(done)
	}()

	send := func(msgType string) {
		t.Helper()
		env, _ := NewEnvelope(msgType, struct{}{})
		if err := WriteEnvelope(client, env); err != nil {
			t.Fatalf("write %s: %v", msgType, err)
		}
	}

	send(TypeHello)
	reply, err := ReadEnvelope(client)
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if reply.Type != TypeAck {
		t.Errorf("reply type = %q, want ack", reply.Type)
	}

	// Neither an unknown type nor a failing handler ends the loop.
	send("bogus")
	send(TypeTick)
	send(TypeHello)
	if reply, err := ReadEnvelope(client); err != nil || reply.Type != TypeAck {
		t.Fatalf("second ack = %+v, %v", reply, err)
	}

	client.Close()
	<-done
}

func TestWebSocketConnection(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := make(chan struct{})
	srv := httptest.NewServer(WSHandler(func(c *Connection) {
		defer close(done)
		c.RegisterHandler(TypeTick, func(env Envelope) (*Envelope, error) {
			var msg TickMessage
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				return nil, err
			}
			out, err := NewEnvelope(TypeIntents, IntentsMessage{Tick: msg.Snapshot.Tick})
			return &out, err
		})
		c.ReadLoop()
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	env, _ := NewEnvelope(TypeTick, json.RawMessage(`{"snapshot":{"tick":42,"room":"W1N1"}}`))
	if err := ws.WriteJSON(env); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply Envelope
	if err := ws.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	var intents IntentsMessage
	if err := json.Unmarshal(reply.Data, &intents); err != nil {
		t.Fatal(err)
	}
	if reply.Type != TypeIntents || intents.Tick != 42 {
		t.Errorf("reply = %s %+v, want intents for tick 42", reply.Type, intents)
	}

	ws.Close()
	<-done
}
