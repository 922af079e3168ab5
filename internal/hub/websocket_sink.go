// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// WebSocketSink adapts a websocket connection into a MessageSink. Writes
// are serialized through a mutex because gorilla/websocket permits at most
// one concurrent writer.
type WebSocketSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWebSocketSink wraps conn. The sink takes ownership of writes; the
// caller keeps running the read loop to detect disconnects.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// Send marshals message to JSON and writes it with a deadline.
func (s *WebSocketSink) Send(message any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(message)
}

// Close sends a close control frame and tears the connection down. Safe to
// call more than once.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
