package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps all active websocket connections.
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add registers a connection. An existing connection with the same id is closed.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	existing, ok := h.clients[newConn.id]
	h.clients[newConn.id] = newConn
	h.mu.Unlock()

	if ok {
		ctx := wrap.WithAction(context.Background(), "add_ws_connection")
		h.l.Warn(ctx, "replacing existing connection", "conn_id", existing.id.String())
		_ = existing.Close()
	}
	return nil
}

// Delete removes and closes a connection.
func (h *ConnectionHub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	conn, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}
	if err := conn.Close(); err != nil {
		h.l.Debug(wrap.WithAction(context.Background(), "ws_connection_delete"), "failed to close conn",
			"conn_id", id.String(), "err", err.Error())
	}
	return nil
}

// SendTo sends a message to a single client.
func (h *ConnectionHub) SendTo(id uuid.UUID, msg any) error {
	h.mu.Lock()
	conn, ok := h.clients[id]
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}
	return conn.Send(msg)
}

// Broadcast sends a message to every client. Slow clients miss messages instead of blocking.
func (h *ConnectionHub) Broadcast(ctx context.Context, msg any) {
	for id, conn := range h.Clients() {
		if err := conn.Send(msg); err != nil {
			h.l.Debug(ctx, "broadcast skipped client", "conn_id", id.String(), "err", err.Error())
		}
	}
}

// Len returns the number of active connections.
func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes every connection.
func (h *ConnectionHub) Close() {
	for id := range h.Clients() {
		_ = h.Delete(id)
	}
	h.l.Info(wrap.WithAction(context.Background(), "hub_close"), "all websocket connections closed")
}

// Clients returns a copy of the client map.
func (h *ConnectionHub) Clients() map[uuid.UUID]*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	copyMap := make(map[uuid.UUID]*Conn, len(h.clients))
	for id, conn := range h.clients {
		copyMap[id] = conn
	}
	return copyMap
}
