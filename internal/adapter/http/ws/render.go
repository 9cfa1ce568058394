package wshandler

import (
	"context"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
)

// Message types pushed to the render surface.
const (
	TypeAttention  = "attention"
	TypeViews      = "views"
	TypeTransition = "transition"
	TypeError      = "error"
	TypeAck        = "ack"
)

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type Broadcaster interface {
	Broadcast(ctx context.Context, msg any)
}

// Renderer pushes attention state, runtime views and transitions to every connected client.
type Renderer struct {
	hub Broadcaster
}

func NewRenderer(hub Broadcaster) *Renderer {
	return &Renderer{hub: hub}
}

func (r *Renderer) RenderAttention(ctx context.Context, state models.AttentionState) {
	r.hub.Broadcast(ctx, Message{Type: TypeAttention, Data: state})
}

func (r *Renderer) RenderViews(ctx context.Context, snap models.TrackerSnapshot) {
	r.hub.Broadcast(ctx, Message{Type: TypeViews, Data: snap})
}

func (r *Renderer) RenderTransition(ctx context.Context, ev models.TransitionEvent) {
	r.hub.Broadcast(ctx, Message{Type: TypeTransition, Data: ev})
}
