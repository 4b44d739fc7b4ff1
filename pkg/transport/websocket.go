package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single frame write.
const DefaultWriteTimeout = 10 * time.Second

// WebSocketSender writes each frame as one binary websocket message.
type WebSocketSender struct {
	mu           sync.Mutex // Protects conn writes
	conn         *websocket.Conn
	writeTimeout time.Duration
	closed       bool
}

// NewWebSocketSender wraps an established connection. A non-positive
// writeTimeout uses DefaultWriteTimeout.
func NewWebSocketSender(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketSender {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &WebSocketSender{
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

// Dial connects to url and returns a sender for the connection.
func Dial(ctx context.Context, url string, header http.Header, writeTimeout time.Duration) (*WebSocketSender, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return NewWebSocketSender(conn, writeTimeout), nil
}

// Send writes frame. The write deadline is the earlier of the context
// deadline and the write timeout.
func (s *WebSocketSender) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	deadline := time.Now().Add(s.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close sends a close message and closes the connection. It is safe to
// call more than once.
func (s *WebSocketSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}
