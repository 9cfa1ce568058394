package attention

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
)

type scheduled struct {
	d       time.Duration
	f       func()
	stopped bool
}

// fakeTimers records scheduled callbacks so tests fire them by hand.
type fakeTimers struct {
	mu    sync.Mutex
	items []*scheduled
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) func() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	s := &scheduled{d: d, f: f}
	ft.items = append(ft.items, s)
	return func() bool {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		was := !s.stopped
		s.stopped = true
		return was
	}
}

func (ft *fakeTimers) fire(i int) {
	ft.mu.Lock()
	s := ft.items[i]
	ft.mu.Unlock()
	s.f()
}

func (ft *fakeTimers) last() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.items) - 1
}

type mockRenderer struct {
	states []models.AttentionState
}

func (m *mockRenderer) RenderAttention(_ context.Context, st models.AttentionState) {
	m.states = append(m.states, st)
}

func newTestArbiter() (*Arbiter, *fakeTimers, *mockRenderer) {
	timers := &fakeTimers{}
	r := &mockRenderer{}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	a := New(Config{
		AlertDuration:  3 * time.Second,
		DetailDuration: 5 * time.Second,
		Now:            func() time.Time { return now },
		AfterFunc:      timers.AfterFunc,
	}, r, logger.Nop())
	return a, timers, r
}

func TestArbiter_AlertPreemptsTracking(t *testing.T) {
	a, timers, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowTracking(ctx, "Home", 850, 10)
	if st := a.State(); st.Mode != types.ModeTracking || st.Payload.Distance != "850 m" {
		t.Fatalf("expected tracking, got %+v", st)
	}

	a.ShowAlert(ctx, "Arrived", "Home", types.SeveritySuccess, 3*time.Second)
	if st := a.State(); st.Mode != types.ModeAlert || st.ExpiresAt == nil {
		t.Fatalf("expected alert with expiry, got %+v", st)
	}

	a.ShowTracking(ctx, "Home", 800, 10)
	if st := a.State(); st.Mode != types.ModeAlert || st.Payload.Title != "Arrived" {
		t.Fatalf("tracking must be a no-op while an alert is active, got %+v", st)
	}

	timers.fire(timers.last())
	if st := a.State(); st.Mode != types.ModeIdle {
		t.Fatalf("expired alert must return to idle, got %s", st.Mode)
	}

	a.ShowTracking(ctx, "Home", 700, 10)
	if st := a.State(); st.Mode != types.ModeTracking {
		t.Fatalf("tracking must resume on the next update, got %s", st.Mode)
	}
}

func TestArbiter_StaleTimerIgnored(t *testing.T) {
	a, timers, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowAlert(ctx, "first", "", types.SeverityInfo, time.Second)
	first := timers.last()
	a.ShowAlert(ctx, "second", "", types.SeverityInfo, 3*time.Second)

	if !timers.items[first].stopped {
		t.Fatalf("previous timer must be cancelled")
	}

	// a late firing of the first timer must not collapse the second alert
	timers.fire(first)
	if st := a.State(); st.Mode != types.ModeAlert || st.Payload.Title != "second" {
		t.Fatalf("stale timer changed state: %+v", st)
	}
}

func TestArbiter_StickyAlert(t *testing.T) {
	a, timers, _ := newTestArbiter()
	a.ShowAlert(context.Background(), "GPS", "waiting", types.SeverityWait, 0)

	if len(timers.items) != 0 {
		t.Fatalf("zero duration must not schedule a timer")
	}
	if st := a.State(); st.Mode != types.ModeAlert || st.ExpiresAt != nil {
		t.Fatalf("expected sticky alert, got %+v", st)
	}
}

func TestArbiter_ExpandedTrackingShowsDetail(t *testing.T) {
	a, timers, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowTracking(ctx, "Office", 2500, 10)
	if a.ToggleExpand() != true {
		t.Fatalf("expand must be on")
	}
	if st := a.State(); st.Mode != types.ModeTracking {
		t.Fatalf("toggle must not change mode by itself, got %s", st.Mode)
	}

	a.ShowTracking(ctx, "Office", 2500, 10)
	st := a.State()
	if st.Mode != types.ModeDetail || !st.Expanded {
		t.Fatalf("expected detail, got %+v", st)
	}
	// 2.5 km at 36 km/h = 4.17 min
	if st.Payload.Value != "2.50" || st.Payload.Unit != "km" || st.Payload.ETA != "4" || st.Payload.Arrival != "10:04" {
		t.Fatalf("unexpected detail payload: %+v", st.Payload)
	}

	timers.fire(timers.last())
	if st := a.State(); st.Mode != types.ModeIdle {
		t.Fatalf("detail must expire to idle, got %s", st.Mode)
	}
	if !a.Expanded() {
		t.Fatalf("expanded flag must persist across expiry")
	}
}

func TestArbiter_DetailPlaceholderForLongETA(t *testing.T) {
	a, _, _ := newTestArbiter()
	ctx := context.Background()

	a.ToggleExpand()
	// 500 km at walking speed
	a.ShowTracking(ctx, "Far away", 500_000, 0)
	if st := a.State(); st.Payload.ETA != "--" || st.Payload.Arrival != "--" {
		t.Fatalf("expected placeholder, got %+v", st.Payload)
	}
}

func TestArbiter_ShowLargePreempts(t *testing.T) {
	a, timers, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowLarge(ctx, "Speed", "42", "km/h", types.SeverityInfo)
	a.ShowTracking(ctx, "Home", 100, 1)
	st := a.State()
	if st.Mode != types.ModeDetail || st.Payload.Value != "42" {
		t.Fatalf("large view must not be replaced by tracking, got %+v", st)
	}
	if timers.items[timers.last()].d != 5*time.Second {
		t.Fatalf("large view must hide after the detail duration")
	}
}

func TestArbiter_Collapse(t *testing.T) {
	a, timers, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowAlert(ctx, "Saved", "", types.SeveritySuccess, 3*time.Second)
	a.ToggleExpand()
	a.Collapse(ctx)

	if st := a.State(); st.Mode != types.ModeIdle {
		t.Fatalf("collapse must force idle, got %s", st.Mode)
	}
	if a.Expanded() {
		t.Fatalf("collapse must clear expanded")
	}
	if !timers.items[timers.last()].stopped {
		t.Fatalf("collapse must cancel the pending timer")
	}

	a.ShowTracking(ctx, "Home", 100, 1)
	if st := a.State(); st.Mode != types.ModeTracking {
		t.Fatalf("collapse must clear the alert flag, got %s", st.Mode)
	}
}

func TestArbiter_Close(t *testing.T) {
	a, timers, r := newTestArbiter()
	ctx := context.Background()

	a.ShowAlert(ctx, "Saved", "", types.SeveritySuccess, 3*time.Second)
	idx := timers.last()
	a.Close()

	if !timers.items[idx].stopped {
		t.Fatalf("close must cancel the pending timer")
	}
	rendered := len(r.states)

	timers.fire(idx)
	a.ShowAlert(ctx, "ignored", "", types.SeverityInfo, time.Second)
	if len(r.states) != rendered {
		t.Fatalf("closed arbiter must not render")
	}
}

func TestArbiter_VersionIncreases(t *testing.T) {
	a, _, r := newTestArbiter()
	ctx := context.Background()

	a.ShowTracking(ctx, "Home", 100, 1)
	a.ShowAlert(ctx, "Saved", "", types.SeveritySuccess, time.Second)
	a.Collapse(ctx)

	for i := 1; i < len(r.states); i++ {
		if r.states[i].Version <= r.states[i-1].Version {
			t.Fatalf("versions must increase: %+v", r.states)
		}
	}
}

func TestArbiter_RealTimer(t *testing.T) {
	r := &syncRenderer{ch: make(chan models.AttentionState, 4)}
	a := New(Config{AlertDuration: 20 * time.Millisecond, DetailDuration: time.Second}, r, logger.Nop())
	defer a.Close()

	a.Notify(context.Background(), "Saved", "", types.SeveritySuccess)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-r.ch:
			if st.Mode == types.ModeIdle {
				return
			}
		case <-deadline:
			t.Fatalf("alert did not expire")
		}
	}
}

type syncRenderer struct {
	ch chan models.AttentionState
}

func (s *syncRenderer) RenderAttention(_ context.Context, st models.AttentionState) {
	s.ch <- st
}

func TestArbiter_AlertDropsExpanded(t *testing.T) {
	a, timers, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowTracking(ctx, "Office", 2500, 10)
	a.ToggleExpand()
	a.ShowAlert(ctx, "Left", "Home", types.SeverityWarning, 3*time.Second)

	if a.Expanded() {
		t.Fatalf("alert must drop the expanded view")
	}
	if st := a.State(); st.Expanded {
		t.Fatalf("alert state must not be expanded: %+v", st)
	}

	timers.fire(timers.last())
	a.ShowTracking(ctx, "Office", 2400, 10)
	if st := a.State(); st.Mode != types.ModeTracking {
		t.Fatalf("tracking after an alert must be compact, got %s", st.Mode)
	}
}

func TestArbiter_LoseTracking(t *testing.T) {
	a, _, _ := newTestArbiter()
	ctx := context.Background()

	a.ShowTracking(ctx, "Home", 850, 10)
	a.LoseTracking(ctx)
	if st := a.State(); st.Mode != types.ModeIdle {
		t.Fatalf("lost tracking must go idle, got %s", st.Mode)
	}

	a.ToggleExpand()
	a.ShowTracking(ctx, "Home", 850, 10)
	a.LoseTracking(ctx)
	if st := a.State(); st.Mode != types.ModeIdle {
		t.Fatalf("lost detail must go idle, got %s", st.Mode)
	}
	if !a.Expanded() {
		t.Fatalf("losing tracking must keep the expanded preference")
	}

	a.ShowAlert(ctx, "Sync failed", "", types.SeverityError, 3*time.Second)
	a.LoseTracking(ctx)
	if st := a.State(); st.Mode != types.ModeAlert {
		t.Fatalf("active alert must survive, got %s", st.Mode)
	}

	a.ShowLarge(ctx, "Speed", "12.3", "km/h", types.SeverityInfo)
	a.LoseTracking(ctx)
	if st := a.State(); st.Mode != types.ModeDetail || st.Payload.Value != "12.3" {
		t.Fatalf("large value must survive, got %+v", st)
	}
}
