package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	geocalc "github.com/Temutjin2k/geopulse/internal/service/calculator"
	"github.com/Temutjin2k/geopulse/internal/service/attention"
	"github.com/Temutjin2k/geopulse/internal/service/geofence"
	"github.com/Temutjin2k/geopulse/internal/service/tracking"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

type Config struct {
	DeviceID      string
	NotifyMode    types.NotifyMode
	AlertDuration time.Duration
	Filter        tracking.FilterConfig
	Scheduler     tracking.SchedulerConfig
}

func ConfigFrom(cfg config.TrackerConfig) Config {
	return Config{
		DeviceID:      cfg.DeviceID,
		NotifyMode:    types.NotifyMode(cfg.NotifyMode),
		AlertDuration: cfg.AlertDuration,
		Filter:        tracking.FilterConfigFrom(cfg),
		Scheduler:     tracking.SchedulerConfigFrom(cfg),
	}
}

// Deps are the collaborators of a session. Views and Publisher are optional.
type Deps struct {
	Store     StoreClient
	Provider  LocationProvider
	Views     ViewSink
	Publisher EventPublisher
}

/*
Session is the single owner of the tracking pipeline: position filter, transition
state, attention slot and sync scheduler. Samples are processed to completion one at a
time under the session lock.
*/
type Session struct {
	id  string
	cfg Config

	filter    *tracking.Filter
	evaluator *geofence.Evaluator
	scheduler *tracking.Scheduler
	arbiter   *attention.Arbiter

	store     StoreClient
	provider  LocationProvider
	views     ViewSink
	publisher EventPublisher

	l logger.Logger

	mu        sync.Mutex
	status    types.TrackingStatus
	mode      types.NotifyMode
	geofences []models.Geofence
	lastViews []models.RuntimeView
	position  *models.Position
}

func NewSession(cfg Config, deps Deps, arbiter *attention.Arbiter, l logger.Logger) *Session {
	if !cfg.NotifyMode.IsValid() {
		cfg.NotifyMode = types.NotifyFamily
	}
	if deps.Views == nil {
		deps.Views = nopViews{}
	}
	if deps.Publisher == nil {
		deps.Publisher = nopPublisher{}
	}

	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		filter:    tracking.NewFilter(cfg.Filter, l),
		evaluator: geofence.NewEvaluator(l),
		arbiter:   arbiter,
		store:     deps.Store,
		provider:  deps.Provider,
		views:     deps.Views,
		publisher: deps.Publisher,
		l:         l,
		status:    types.StatusIdle,
		mode:      cfg.NotifyMode,
	}
	s.scheduler = tracking.NewScheduler(cfg.Scheduler, s, s.onSyncFailure, l)

	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ctx(ctx context.Context) context.Context {
	return wrap.WithSessionID(ctx, s.id)
}

// RunSync serves the location sync scheduler until ctx is done.
func (s *Session) RunSync(ctx context.Context) error {
	return s.scheduler.Run(s.ctx(ctx))
}

// StartTracking subscribes to the location provider.
func (s *Session) StartTracking(ctx context.Context) error {
	const op = "Session.StartTracking"
	ctx = s.ctx(ctx)

	s.mu.Lock()
	s.status = types.StatusConnecting
	s.renderLocked(ctx)
	s.mu.Unlock()

	if err := s.provider.Start(ctx, s); err != nil {
		err = wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrProviderUnavailable, err))
		s.HandleProviderError(ctx, err)
		return err
	}

	s.l.Info(ctx, "location tracking started", "device_id", s.cfg.DeviceID)
	return nil
}

// StopTracking unsubscribes from the provider and clears the attention slot.
func (s *Session) StopTracking(ctx context.Context) error {
	const op = "Session.StopTracking"
	ctx = s.ctx(ctx)

	err := s.provider.Stop()

	s.mu.Lock()
	s.status = types.StatusIdle
	s.renderLocked(ctx)
	s.mu.Unlock()

	s.arbiter.Collapse(ctx)

	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// HandleSample runs one raw sample through the pipeline.
func (s *Session) HandleSample(ctx context.Context, p models.Position) {
	ctx = s.ctx(ctx)

	s.mu.Lock()
	if s.status != types.StatusTracking {
		s.status = types.StatusTracking
	}

	res := s.filter.Process(ctx, p)
	if !res.Accepted {
		s.mu.Unlock()
		return
	}

	accepted := res.Position
	s.position = &accepted
	events := s.evaluateLocked(ctx)

	update := models.LocationUpdate{
		Lat:   accepted.Lat,
		Lng:   accepted.Lng,
		Speed: geocalc.MpsToKmh(res.SmoothedSpeedMps),
	}
	if accepted.Accuracy != nil {
		update.Accuracy = *accepted.Accuracy
	}
	s.mu.Unlock()

	s.publish(ctx, events)
	s.scheduler.Offer(update)
}

// HandleProviderError marks tracking unavailable. It is shown by the status indicator, not as an alert.
func (s *Session) HandleProviderError(ctx context.Context, err error) {
	ctx = wrap.WithAction(s.ctx(ctx), types.ActionProviderFailed)
	if !errors.Is(err, types.ErrProviderUnavailable) {
		err = fmt.Errorf("%w: %w", types.ErrProviderUnavailable, err)
	}
	s.l.Error(wrap.ErrorCtx(ctx, err), "location provider unavailable", err)

	s.mu.Lock()
	s.status = types.StatusUnavailable
	s.renderLocked(ctx)
	s.mu.Unlock()

	s.arbiter.LoseTracking(ctx)
}

// evaluateLocked evaluates the last accepted position, drives the attention slot and
// renders views. Returns the notifiable transitions. Must hold s.mu.
func (s *Session) evaluateLocked(ctx context.Context) []models.TransitionEvent {
	if s.position == nil {
		s.renderLocked(ctx)
		return nil
	}

	eval := s.evaluator.Evaluate(ctx, *s.position, s.geofences)
	s.lastViews = eval.Views

	for _, ev := range eval.Events {
		title, severity := "Entered", types.SeveritySuccess
		if ev.Kind == types.TransitionExit {
			title, severity = "Left", types.SeverityWarning
		}
		s.arbiter.ShowAlert(ctx, title, ev.Geofence.Name, severity, s.cfg.AlertDuration)
		s.views.RenderTransition(ctx, ev)
	}

	nearest := geofence.Nearest(eval.Views)
	if nearest != nil && s.status == types.StatusTracking {
		s.arbiter.ShowTracking(ctx, nearest.Name, *nearest.DistanceMeters, s.filter.State().SmoothedSpeedMps)
	} else {
		s.arbiter.LoseTracking(ctx)
	}

	s.renderLocked(ctx)
	return eval.Events
}

func (s *Session) renderLocked(ctx context.Context) {
	s.views.RenderViews(ctx, s.snapshotLocked())
}

func (s *Session) publish(ctx context.Context, events []models.TransitionEvent) {
	for _, ev := range events {
		action := types.ActionGeofenceEnter
		if ev.Kind == types.TransitionExit {
			action = types.ActionGeofenceExit
		}
		ctx := wrap.WithGeofenceID(wrap.WithAction(ctx, action), ev.Geofence.ID)
		s.l.Info(ctx, "geofence transition", "kind", ev.Kind, "name", ev.Geofence.Name, "distance_m", ev.DistanceMeters)

		err := s.publisher.PublishTransition(ctx, models.GeofenceEvent{
			DeviceID:       s.cfg.DeviceID,
			Kind:           ev.Kind,
			GeofenceID:     ev.Geofence.ID,
			GeofenceName:   ev.Geofence.Name,
			DistanceMeters: ev.DistanceMeters,
			Timestamp:      ev.At,
		})
		if err != nil {
			s.l.Error(wrap.ErrorCtx(ctx, err), "failed to publish geofence transition", err)
		}
	}
}

// PushLocation sends a location update to the store and adopts the returned geofence list.
func (s *Session) PushLocation(ctx context.Context, update models.LocationUpdate) error {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	list, err := s.store.UpdateLocation(ctx, update, mode)
	if err != nil {
		return err
	}

	s.replaceGeofences(ctx, list)
	return nil
}

func (s *Session) onSyncFailure(ctx context.Context, err error) {
	s.arbiter.ShowAlert(ctx, "Sync failed", "Could not update location", types.SeverityError, s.cfg.AlertDuration)
}

// Refresh fetches the geofence list from the store.
func (s *Session) Refresh(ctx context.Context) error {
	const op = "Session.Refresh"
	ctx = s.ctx(ctx)

	list, err := s.store.GetData(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrSyncFailed, err))
	}

	s.replaceGeofences(ctx, list)
	return nil
}

// replaceGeofences adopts an authoritative list and re-evaluates the last position against it.
func (s *Session) replaceGeofences(ctx context.Context, list []models.Geofence) {
	s.mu.Lock()
	s.geofences = list
	events := s.evaluateLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events)
}

// Snapshot returns the current tracking state for display.
func (s *Session) Snapshot() models.TrackerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.TrackerSnapshot {
	snap := models.TrackerSnapshot{
		Status:           s.status,
		NotifyMode:       s.mode,
		SmoothedSpeedMps: s.filter.State().SmoothedSpeedMps,
		Views:            append([]models.RuntimeView(nil), s.lastViews...),
	}
	if s.position != nil {
		p := *s.position
		snap.Position = &p
	}
	snap.Nearest = geofence.Nearest(snap.Views)
	return snap
}

// Geofences returns a copy of the current geofence list.
func (s *Session) Geofences() []models.Geofence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Geofence(nil), s.geofences...)
}

func (s *Session) Status() types.TrackingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Attention() models.AttentionState {
	return s.arbiter.State()
}

// ToggleExpand flips between the compact and detail tracking view.
func (s *Session) ToggleExpand(ctx context.Context) bool {
	expanded := s.arbiter.ToggleExpand()

	s.mu.Lock()
	s.evaluateLocked(s.ctx(ctx))
	s.mu.Unlock()

	return expanded
}

// Close cancels pending attention timers.
func (s *Session) Close() {
	s.arbiter.Close()
}

func (s *Session) origin() *models.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil {
		return nil
	}
	c := s.position.Coordinate()
	return &c
}
