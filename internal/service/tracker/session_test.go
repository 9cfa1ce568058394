package tracker

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/internal/service/attention"
	"github.com/Temutjin2k/geopulse/internal/service/tracking"
	"github.com/Temutjin2k/geopulse/pkg/logger"
)

const metersPerDegLat = 6371000 * math.Pi / 180

func f64(v float64) *float64 { return &v }

func home(enabled bool) models.Geofence {
	return models.Geofence{
		ID: "home", Name: "Home",
		Lat: f64(13.7563), Lng: f64(100.5018),
		RadiusMeters: 100, Enabled: enabled,
		NotifyOnEnter: true, NotifyOnExit: true,
	}
}

func sampleAt(metersNorth float64, sec int64) models.Position {
	return models.Position{
		Lat:         13.7563 + metersNorth/metersPerDegLat,
		Lng:         100.5018,
		Accuracy:    f64(5),
		TimestampMs: sec * 1000,
	}
}

// mockStore returns the configured list unless a function field overrides the action.
type mockStore struct {
	mu        sync.Mutex
	list      []models.Geofence
	modes     []types.NotifyMode
	getErr    error
	toggleFn  func(id string, enabled bool) ([]models.Geofence, error)
	settingFn func(mode types.NotifyMode) ([]models.Geofence, error)
}

func (m *mockStore) current() ([]models.Geofence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Geofence(nil), m.list...), nil
}

func (m *mockStore) GetData(context.Context) ([]models.Geofence, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.current()
}

func (m *mockStore) UpdateLocation(_ context.Context, _ models.LocationUpdate, mode types.NotifyMode) ([]models.Geofence, error) {
	m.mu.Lock()
	m.modes = append(m.modes, mode)
	m.mu.Unlock()
	return m.current()
}

func (m *mockStore) AddGeofence(_ context.Context, in models.GeofenceInput, _ *models.Coordinate) ([]models.Geofence, error) {
	m.mu.Lock()
	m.list = append(m.list, in.Geofence("new"))
	m.mu.Unlock()
	return m.current()
}

func (m *mockStore) EditGeofence(context.Context, models.GeofenceInput, *models.Coordinate) ([]models.Geofence, error) {
	return m.current()
}

func (m *mockStore) DeleteGeofence(context.Context, string, *models.Coordinate) ([]models.Geofence, error) {
	return nil, errors.New("boom")
}

func (m *mockStore) ToggleGeofence(_ context.Context, id string, enabled bool, _ *models.Coordinate) ([]models.Geofence, error) {
	if m.toggleFn != nil {
		return m.toggleFn(id, enabled)
	}
	return m.current()
}

func (m *mockStore) CheckIn(context.Context, models.Coordinate, types.NotifyMode) ([]models.Geofence, error) {
	return m.current()
}

func (m *mockStore) SendSOS(context.Context, string, *models.Coordinate, types.NotifyMode) ([]models.Geofence, error) {
	return m.current()
}

func (m *mockStore) SetSettings(_ context.Context, mode types.NotifyMode) ([]models.Geofence, error) {
	if m.settingFn != nil {
		return m.settingFn(mode)
	}
	return m.current()
}

type mockProvider struct {
	startErr error
	sink     SampleSink
	stopped  bool
}

func (p *mockProvider) Start(_ context.Context, sink SampleSink) error {
	p.sink = sink
	return p.startErr
}

func (p *mockProvider) Stop() error {
	p.stopped = true
	return nil
}

type mockViews struct {
	snapshots   []models.TrackerSnapshot
	transitions []models.TransitionEvent
}

func (v *mockViews) RenderViews(_ context.Context, s models.TrackerSnapshot) {
	v.snapshots = append(v.snapshots, s)
}

func (v *mockViews) RenderTransition(_ context.Context, ev models.TransitionEvent) {
	v.transitions = append(v.transitions, ev)
}

type mockPublisher struct {
	events []models.GeofenceEvent
	err    error
}

func (p *mockPublisher) PublishTransition(_ context.Context, ev models.GeofenceEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	session   *Session
	store     *mockStore
	provider  *mockProvider
	views     *mockViews
	publisher *mockPublisher
}

func newFixture(fences ...models.Geofence) *fixture {
	f := &fixture{
		store:     &mockStore{list: fences},
		provider:  &mockProvider{},
		views:     &mockViews{},
		publisher: &mockPublisher{},
	}

	// timers never fire; expiry is covered by the attention package
	arbiter := attention.New(attention.Config{
		AlertDuration:  3 * time.Second,
		DetailDuration: 5 * time.Second,
		AfterFunc:      func(time.Duration, func()) func() bool { return func() bool { return true } },
	}, nil, logger.Nop())

	f.session = NewSession(Config{
		DeviceID:      "device-1",
		NotifyMode:    types.NotifyFamily,
		AlertDuration: 3 * time.Second,
		Filter:        tracking.DefaultFilterConfig(),
		Scheduler:     tracking.SchedulerConfig{MinInterval: 4 * time.Second, Tick: 5 * time.Second},
	}, Deps{
		Store:     f.store,
		Provider:  f.provider,
		Views:     f.views,
		Publisher: f.publisher,
	}, arbiter, logger.Nop())

	return f
}

func TestSession_EnterTransition(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()

	if err := f.session.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := f.session.StartTracking(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.provider.sink.HandleSample(ctx, sampleAt(500, 0))
	if st := f.session.Attention(); st.Mode != types.ModeTracking || st.Payload.Name != "Home" {
		t.Fatalf("expected tracking of Home, got %+v", st)
	}

	f.provider.sink.HandleSample(ctx, sampleAt(50, 60))

	if len(f.views.transitions) != 1 || f.views.transitions[0].Kind != types.TransitionEnter {
		t.Fatalf("expected one enter transition, got %+v", f.views.transitions)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].GeofenceID != "home" || f.publisher.events[0].DeviceID != "device-1" {
		t.Fatalf("expected published enter event, got %+v", f.publisher.events)
	}
	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Title != "Entered" {
		t.Fatalf("expected enter alert, got %+v", st)
	}

	snap := f.session.Snapshot()
	if snap.Status != types.StatusTracking || snap.Nearest == nil || !snap.Nearest.IsInside {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSession_RejectedSampleDoesNotEvaluate(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)

	f.session.HandleSample(ctx, sampleAt(500, 0))
	rendered := len(f.views.snapshots)

	// 10 km in 5 s
	f.session.HandleSample(ctx, sampleAt(10_000, 5))
	if len(f.views.snapshots) != rendered {
		t.Fatalf("rejected sample must not render views")
	}
	if pos := f.session.Snapshot().Position; pos.TimestampMs != 0 {
		t.Fatalf("rejected sample must not replace the position")
	}
}

func TestSession_ToggleRevertsOnFailure(t *testing.T) {
	f := newFixture(home(false))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)

	f.store.toggleFn = func(id string, enabled bool) ([]models.Geofence, error) {
		if got := f.session.Geofences()[0].Enabled; !got {
			t.Errorf("optimistic toggle must be applied before the store call")
		}
		return nil, errors.New("network down")
	}

	err := f.session.SetGeofenceEnabled(ctx, "home", true)
	if !errors.Is(err, types.ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}
	if f.session.Geofences()[0].Enabled {
		t.Fatalf("failed toggle must revert to disabled")
	}
	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Severity != types.SeverityError {
		t.Fatalf("expected error alert, got %+v", st)
	}
}

func TestSession_ToggleAdoptsStoreList(t *testing.T) {
	f := newFixture(home(false))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)

	f.store.toggleFn = func(id string, enabled bool) ([]models.Geofence, error) {
		return []models.Geofence{home(enabled)}, nil
	}

	if err := f.session.SetGeofenceEnabled(ctx, "home", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.session.Geofences()[0].Enabled {
		t.Fatalf("geofence must be enabled")
	}

	if err := f.session.SetGeofenceEnabled(ctx, "missing", true); !errors.Is(err, types.ErrGeofenceNotFound) {
		t.Fatalf("expected ErrGeofenceNotFound, got %v", err)
	}
}

func TestSession_MutationFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)

	if err := f.session.DeleteGeofence(ctx, "home"); !errors.Is(err, types.ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}
	if len(f.session.Geofences()) != 1 {
		t.Fatalf("failed delete must not change the local list")
	}
}

func TestSession_CreateGeofence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.session.CreateGeofence(ctx, models.GeofenceInput{Name: " ", RadiusMeters: 100})
	if !errors.Is(err, types.ErrInvalidGeofence) {
		t.Fatalf("expected ErrInvalidGeofence, got %v", err)
	}

	in := models.GeofenceInput{Name: "Gym", Lat: f64(13.75), Lng: f64(100.5), RadiusMeters: 200, Enabled: true}
	if err := f.session.CreateGeofence(ctx, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.session.Geofences(); len(got) != 1 || got[0].Name != "Gym" {
		t.Fatalf("unexpected geofences: %+v", got)
	}
	if st := f.session.Attention(); st.Payload.Title != "Saved" {
		t.Fatalf("expected saved alert, got %+v", st)
	}
}

func TestSession_ProviderError(t *testing.T) {
	f := newFixture(home(true))
	f.provider.startErr = errors.New("permission denied")
	ctx := context.Background()

	err := f.session.StartTracking(ctx)
	if !errors.Is(err, types.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if f.session.Status() != types.StatusUnavailable {
		t.Fatalf("expected unavailable status, got %s", f.session.Status())
	}
	if st := f.session.Attention(); st.Mode != types.ModeIdle {
		t.Fatalf("provider errors must not raise alerts, got %+v", st)
	}
}

func TestSession_StopTracking(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)
	_ = f.session.StartTracking(ctx)
	f.session.HandleSample(ctx, sampleAt(500, 0))

	if err := f.session.StopTracking(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.provider.stopped {
		t.Fatalf("provider must be stopped")
	}
	if f.session.Status() != types.StatusIdle || f.session.Attention().Mode != types.ModeIdle {
		t.Fatalf("stop must collapse the attention slot")
	}
}

func TestSession_PushLocationUsesNotifyMode(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()

	if err := f.session.SetNotifyMode(ctx, types.NotifyPrivate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.session.PushLocation(ctx, models.LocationUpdate{Lat: 13.7, Lng: 100.5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.store.modes) != 1 || f.store.modes[0] != types.NotifyPrivate {
		t.Fatalf("unexpected notify modes: %v", f.store.modes)
	}
	if len(f.session.Geofences()) != 1 {
		t.Fatalf("push must adopt the returned list")
	}

	if err := f.session.SetNotifyMode(ctx, "everyone"); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSession_SetNotifyModeFailureKeepsMode(t *testing.T) {
	f := newFixture()
	f.store.settingFn = func(types.NotifyMode) ([]models.Geofence, error) {
		return nil, errors.New("500")
	}

	if err := f.session.ToggleNotifyMode(context.Background()); !errors.Is(err, types.ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}
	if f.session.Snapshot().NotifyMode != types.NotifyFamily {
		t.Fatalf("mode must stay family")
	}
}

func TestSession_CheckInNeedsPosition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.session.CheckIn(ctx); !errors.Is(err, types.ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}

	f.session.HandleSample(ctx, sampleAt(0, 0))
	if err := f.session.CheckIn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := f.session.Attention(); st.Payload.Title != "Checked in" {
		t.Fatalf("expected check-in alert, got %+v", st)
	}
}

func TestSession_SyncFailureAlerts(t *testing.T) {
	f := newFixture()
	f.session.onSyncFailure(context.Background(), types.ErrSyncFailed)

	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Severity != types.SeverityError {
		t.Fatalf("expected error alert, got %+v", st)
	}
}

func TestSession_RefreshFailure(t *testing.T) {
	f := newFixture()
	f.store.getErr = errors.New("timeout")

	if err := f.session.Refresh(context.Background()); !errors.Is(err, types.ErrSyncFailed) {
		t.Fatalf("expected ErrSyncFailed, got %v", err)
	}
}

func TestSession_AlertSurvivesSampleWithoutNearest(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)
	_ = f.session.StartTracking(ctx)
	f.session.HandleSample(ctx, sampleAt(500, 0))

	f.store.toggleFn = func(id string, enabled bool) ([]models.Geofence, error) {
		return []models.Geofence{home(enabled)}, nil
	}
	if err := f.session.SetGeofenceEnabled(ctx, "home", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Title != "Geofence disabled" {
		t.Fatalf("expected disabled alert, got %+v", st)
	}

	// no enabled fence left, so the sample has no nearest
	f.session.HandleSample(ctx, sampleAt(490, 1))
	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Title != "Geofence disabled" {
		t.Fatalf("unexpired alert must survive a sample without nearest, got %+v", st)
	}
}

func TestSession_SyncAlertSurvivesSample(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.session.StartTracking(ctx)

	f.session.onSyncFailure(ctx, types.ErrSyncFailed)
	f.session.HandleSample(ctx, sampleAt(0, 0))

	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Severity != types.SeverityError {
		t.Fatalf("sync alert must survive the next sample, got %+v", st)
	}
}

func TestSession_TrackingWithoutNearestGoesIdle(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)
	_ = f.session.StartTracking(ctx)
	f.session.HandleSample(ctx, sampleAt(500, 0))
	if st := f.session.Attention(); st.Mode != types.ModeTracking {
		t.Fatalf("expected tracking, got %s", st.Mode)
	}

	f.store.list = nil
	if err := f.session.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if st := f.session.Attention(); st.Mode != types.ModeIdle {
		t.Fatalf("tracking without a nearest fence must go idle, got %s", st.Mode)
	}
}

func TestSession_ProviderErrorKeepsAlert(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)
	_ = f.session.StartTracking(ctx)
	f.session.HandleSample(ctx, sampleAt(500, 0))

	f.session.onSyncFailure(ctx, types.ErrSyncFailed)
	f.session.HandleProviderError(ctx, errors.New("gps lost"))

	if f.session.Status() != types.StatusUnavailable {
		t.Fatalf("expected unavailable status, got %s", f.session.Status())
	}
	if st := f.session.Attention(); st.Mode != types.ModeAlert || st.Payload.Title != "Sync failed" {
		t.Fatalf("provider error must not drop the alert, got %+v", st)
	}
}

func TestSession_ProviderErrorCollapsesTracking(t *testing.T) {
	f := newFixture(home(true))
	ctx := context.Background()
	_ = f.session.Refresh(ctx)
	_ = f.session.StartTracking(ctx)
	f.session.HandleSample(ctx, sampleAt(500, 0))

	f.session.HandleProviderError(ctx, errors.New("gps lost"))
	if st := f.session.Attention(); st.Mode != types.ModeIdle {
		t.Fatalf("provider error must clear tracking, got %s", st.Mode)
	}
}
