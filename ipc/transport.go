package ipc

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Transport moves envelopes to and from one host.
type Transport interface {
	Read() (Envelope, error)
	Write(env Envelope) error
	Close() error
}

// framed speaks length-prefixed JSON over a stream connection.
type framed struct {
	conn net.Conn
}

func (f framed) Read() (Envelope, error)  { return ReadEnvelope(f.conn) }
func (f framed) Write(env Envelope) error { return WriteEnvelope(f.conn, env) }
func (f framed) Close() error             { return f.conn.Close() }

const wsWriteTimeout = 5 * time.Second

// wsTransport carries one envelope per websocket text message.
type wsTransport struct {
	conn *websocket.Conn
}

func (t wsTransport) Read() (Envelope, error) {
	kind, msg, err := t.conn.ReadMessage()
	if err != nil {
		return Envelope{}, fmt.Errorf("read message: %w", err)
	}
	if kind != websocket.TextMessage {
		return Envelope{}, fmt.Errorf("unexpected websocket message type %d", kind)
	}
	return decodeEnvelope(msg)
}

func (t wsTransport) Write(env Envelope) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := t.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (t wsTransport) Close() error { return t.conn.Close() }

// WSHandler upgrades host connections to websockets and hands each to
// serve, which owns it until it returns.
func WSHandler(serve func(*Connection)) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		conn.SetReadLimit(maxFrame)
		serve(NewWSConnection(conn, nil))
	})
}
