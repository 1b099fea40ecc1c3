package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexpaac/testrh-backend/internal/engine"
)

// WriteEvent sends one attempt-stream event over the WebSocket.
func WriteEvent(conn *websocket.Conn, ev engine.Event) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(ev)
}

// WriteError sends a typed error event without closing the stream.
func WriteError(conn *websocket.Conn, code, message string) error {
	return WriteEvent(conn, engine.Event{
		Type: engine.EventError,
		Data: engine.ErrorData{Code: code, Message: message},
	})
}

// ReadJSON reads and decodes a client message with a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return conn.ReadJSON(v)
}
