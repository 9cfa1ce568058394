package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	wshandler "github.com/Temutjin2k/geopulse/internal/adapter/http/ws"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
	ws "github.com/Temutjin2k/geopulse/pkg/wsHub"
)

// Commands accepted from render surface clients.
const (
	cmdToggleExpand   = "toggle_expand"
	cmdToggleGeofence = "toggle_geofence"
	cmdToggleNotify   = "toggle_notify"
	cmdCheckIn        = "check_in"
	cmdSOS            = "sos"
	cmdRefresh        = "refresh"
)

type sender interface {
	Send(msg any) error
}

type TrackerWS struct {
	hub      *ws.ConnectionHub
	service  TrackerService
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewTrackerWS(hub *ws.ConnectionHub, service TrackerService, l logger.Logger) *TrackerWS {
	return &TrackerWS{
		hub:     hub,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// HandleWS upgrades the connection, sends the current state and serves client commands.
func (h *TrackerWS) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(context.WithoutCancel(r.Context()), "tracker_ws")

	rawConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	conn := ws.NewConn(ctx, uuid.New(), rawConn)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		_ = conn.Close()
		return
	}
	metrics.WebSocketConnectionsGauge.Inc()
	defer func() {
		_ = h.hub.Delete(conn.ID())
		metrics.WebSocketConnectionsGauge.Dec()
		h.l.Debug(ctx, "websocket client disconnected", "conn_id", conn.ID().String())
	}()

	h.l.Debug(ctx, "websocket client connected", "conn_id", conn.ID().String())

	_ = conn.Send(wshandler.Message{Type: wshandler.TypeViews, Data: h.service.Snapshot()})
	_ = conn.Send(wshandler.Message{Type: wshandler.TypeAttention, Data: h.service.Attention()})

	err = conn.Listen(func(msg map[string]any) error {
		h.handleCommand(ctx, conn, msg)
		return nil
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.l.Debug(ctx, "websocket listen stopped", "error", err.Error())
	}
}

// handleCommand runs one client command and replies with an ack or an error frame.
func (h *TrackerWS) handleCommand(ctx context.Context, out sender, msg map[string]any) {
	cmd, _ := msg["type"].(string)
	ctx = wrap.WithAction(ctx, "ws_"+cmd)

	var (
		result any
		err    error
	)
	switch cmd {
	case cmdToggleExpand:
		result = map[string]bool{"expanded": h.service.ToggleExpand(ctx)}
	case cmdToggleGeofence:
		id, _ := msg["id"].(string)
		enabled, ok := msg["enabled"].(bool)
		if id == "" || !ok {
			err = fmt.Errorf("id and enabled are required")
			break
		}
		err = h.service.SetGeofenceEnabled(wrap.WithGeofenceID(ctx, id), id, enabled)
	case cmdToggleNotify:
		err = h.service.ToggleNotifyMode(ctx)
	case cmdCheckIn:
		err = h.service.CheckIn(ctx)
	case cmdSOS:
		message, _ := msg["message"].(string)
		err = h.service.SendSOS(ctx, message)
	case cmdRefresh:
		err = h.service.Refresh(ctx)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		h.l.Warn(ctx, "websocket command failed", "command", cmd, "error", err.Error())
		_ = out.Send(wshandler.Message{Type: wshandler.TypeError, Data: map[string]string{"command": cmd, "error": err.Error()}})
		return
	}
	_ = out.Send(wshandler.Message{Type: wshandler.TypeAck, Data: map[string]any{"command": cmd, "result": result}})
}
