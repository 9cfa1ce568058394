package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

var ErrSendBufferFull = errors.New("send buffer is full")

// Conn is a client connection with a buffered writer goroutine.
type Conn struct {
	conn *websocket.Conn
	id   uuid.UUID

	send    chan []byte
	doneCtx context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

func NewConn(ctx context.Context, id uuid.UUID, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	c := &Conn{
		conn:    conn,
		id:      id,
		send:    make(chan []byte, sendBuffer),
		doneCtx: ctx,
		cancel:  cancel,
	}
	go c.writePump()
	return c
}

func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Done is closed when the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.doneCtx.Done()
}

// Send queues msg as JSON. It never blocks on the network.
func (c *Conn) Send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	select {
	case <-c.doneCtx.Done():
		return errors.New("send failed: connection closed")
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.doneCtx.Done():
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

// Listen reads JSON messages until the connection fails or is closed.
func (c *Conn) Listen(handler func(msg map[string]any) error) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg map[string]any
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.doneCtx.Done():
				return nil
			default:
			}
			return fmt.Errorf("read failed: %w", err)
		}
		if err := handler(msg); err != nil {
			return fmt.Errorf("handler failed: %w", err)
		}
	}
}

func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}
