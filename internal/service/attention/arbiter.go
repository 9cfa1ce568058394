package attention

import (
	"context"
	"sync"
	"time"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	geocalc "github.com/Temutjin2k/geopulse/internal/service/calculator"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
)

// Renderer receives every attention state change. It is called with the arbiter lock held
// and must not call back into the arbiter.
type Renderer interface {
	RenderAttention(ctx context.Context, state models.AttentionState)
}

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type Config struct {
	AlertDuration  time.Duration // default alert duration
	DetailDuration time.Duration // auto-hide of the expanded detail view
	ETA            geocalc.ETAPolicy

	Now       func() time.Time
	AfterFunc AfterFunc
}

func ConfigFrom(cfg config.TrackerConfig) Config {
	return Config{
		AlertDuration:  cfg.AlertDuration,
		DetailDuration: cfg.DetailDuration,
		ETA: geocalc.ETAPolicy{
			StationaryKmh: cfg.StationaryKmh,
			WalkingKmh:    cfg.WalkingKmh,
		},
	}
}

/*
Arbiter owns the single shared attention slot.

Alerts always preempt and auto-expire back to idle. Tracking updates are ignored while
an alert is active. Only one auto-hide timer is live; every state change bumps a token
so a late timer of a superseded alert is ignored.
*/
type Arbiter struct {
	cfg      Config
	renderer Renderer
	l        logger.Logger

	mu          sync.Mutex
	state       models.AttentionState
	alertActive bool
	expanded    bool
	token       uint64
	stopTimer   func() bool
	closed      bool
}

func New(cfg Config, renderer Renderer, l logger.Logger) *Arbiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = timeAfterFunc
	}
	if cfg.ETA == (geocalc.ETAPolicy{}) {
		cfg.ETA = geocalc.DefaultETAPolicy()
	}
	return &Arbiter{
		cfg:      cfg,
		renderer: renderer,
		l:        l,
		state:    models.AttentionState{Mode: types.ModeIdle},
	}
}

// State returns a copy of the current attention state.
func (a *Arbiter) State() models.AttentionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Expanded reports whether tracking renders as the detail view.
func (a *Arbiter) Expanded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.expanded
}

// ShowAlert preempts whatever is shown and drops the expanded view.
// A zero duration keeps the alert until the next change.
func (a *Arbiter) ShowAlert(ctx context.Context, title, message string, severity types.Severity, duration time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.alertActive = true
	a.expanded = false
	a.set(ctx, types.ModeAlert, models.AttentionPayload{
		Title:    title,
		Message:  message,
		Severity: severity,
		Icon:     severity.Icon(),
	}, duration)

	metrics.AlertsShownTotal.WithLabelValues(string(severity)).Inc()
	a.l.Debug(ctx, "alert shown", "title", title, "severity", severity, "duration", duration.String())
}

// Notify shows an alert with the default duration.
func (a *Arbiter) Notify(ctx context.Context, title, message string, severity types.Severity) {
	a.ShowAlert(ctx, title, message, severity, a.cfg.AlertDuration)
}

// ShowLarge shows a single large value. It preempts like an alert and hides after DetailDuration.
func (a *Arbiter) ShowLarge(ctx context.Context, title, value, unit string, severity types.Severity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.alertActive = true
	a.set(ctx, types.ModeDetail, models.AttentionPayload{
		Title:    title,
		Severity: severity,
		Icon:     severity.Icon(),
		Value:    value,
		Unit:     unit,
	}, a.cfg.DetailDuration)
}

// ShowTracking renders the nearest geofence. No-op while an alert is active.
func (a *Arbiter) ShowTracking(ctx context.Context, name string, distanceMeters, speedMps float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.alertActive {
		return
	}

	if !a.expanded {
		a.set(ctx, types.ModeTracking, models.AttentionPayload{
			Name:     name,
			Severity: types.SeverityTracking,
			Icon:     types.SeverityTracking.Icon(),
			Distance: geocalc.FormatDistance(distanceMeters),
			Speed:    geocalc.FormatSpeed(speedMps),
		}, 0)
		return
	}

	payload := models.AttentionPayload{
		Name:     name,
		Severity: types.SeverityTracking,
		Icon:     types.SeverityTracking.Icon(),
		Speed:    geocalc.FormatSpeed(speedMps),
	}
	payload.Value, payload.Unit = geocalc.DetailDistance(distanceMeters)
	payload.Distance = payload.Value + " " + payload.Unit

	est, err := a.cfg.ETA.Estimate(distanceMeters, speedMps, a.cfg.Now())
	if err != nil {
		a.l.Warn(ctx, "failed to estimate arrival", "error", err.Error())
		payload.ETA, payload.Arrival = geocalc.ETAPlaceholder, geocalc.ETAPlaceholder
	} else {
		payload.ETA, payload.Arrival = est.Display()
	}

	a.set(ctx, types.ModeDetail, payload, a.cfg.DetailDuration)
}

// LoseTracking returns a tracking or expanded tracking slot to idle.
// Active alerts and large values stay until they expire.
func (a *Arbiter) LoseTracking(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.alertActive {
		return
	}
	if a.state.Mode != types.ModeTracking && a.state.Mode != types.ModeDetail {
		return
	}
	a.set(ctx, types.ModeIdle, models.AttentionPayload{}, 0)
}

// ToggleExpand flips the expanded flag. The mode changes on the next ShowTracking.
func (a *Arbiter) ToggleExpand() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expanded = !a.expanded
	return a.expanded
}

// Collapse clears alert and expanded flags and returns to idle.
func (a *Arbiter) Collapse(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.alertActive = false
	a.expanded = false
	if a.state.Mode == types.ModeIdle && a.stopTimer == nil {
		a.state.Expanded = false
		return
	}
	a.set(ctx, types.ModeIdle, models.AttentionPayload{}, 0)
}

// Close cancels the pending timer. The arbiter ignores all calls afterwards.
func (a *Arbiter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.token++
	a.cancelTimer()
}

// set replaces the slot content, re-arming the auto-hide timer. Must hold a.mu.
func (a *Arbiter) set(ctx context.Context, mode types.AttentionMode, payload models.AttentionPayload, ttl time.Duration) {
	a.cancelTimer()
	a.token++

	a.state.Mode = mode
	a.state.Payload = payload
	a.state.Expanded = a.expanded
	a.state.ExpiresAt = nil
	a.state.Version++

	if ttl > 0 {
		exp := a.cfg.Now().Add(ttl)
		a.state.ExpiresAt = &exp

		token := a.token
		a.stopTimer = a.cfg.AfterFunc(ttl, func() {
			a.expire(context.WithoutCancel(ctx), token)
		})
	}

	a.render(ctx)
}

func (a *Arbiter) expire(ctx context.Context, token uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || token != a.token {
		return
	}

	a.stopTimer = nil
	a.alertActive = false
	a.token++

	a.state.Mode = types.ModeIdle
	a.state.Payload = models.AttentionPayload{}
	a.state.Expanded = a.expanded
	a.state.ExpiresAt = nil
	a.state.Version++

	a.render(ctx)
}

func (a *Arbiter) cancelTimer() {
	if a.stopTimer != nil {
		a.stopTimer()
		a.stopTimer = nil
	}
}

func (a *Arbiter) render(ctx context.Context) {
	if a.renderer != nil {
		a.renderer.RenderAttention(ctx, a.state)
	}
}
