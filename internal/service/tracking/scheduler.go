package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

// LocationPusher sends the latest location to the remote store.
type LocationPusher interface {
	PushLocation(ctx context.Context, update models.LocationUpdate) error
}

type SchedulerConfig struct {
	MinInterval time.Duration // minimum time since the last successful push
	Tick        time.Duration // period of deferred flushes
	Now         func() time.Time
}

func SchedulerConfigFrom(cfg config.TrackerConfig) SchedulerConfig {
	return SchedulerConfig{
		MinInterval: cfg.SyncMinInterval,
		Tick:        cfg.SyncTick,
	}
}

/*
Scheduler rate-limits location sync independently of the sample rate.
Offer pushes immediately when MinInterval has passed since the last successful
push, otherwise the latest offered location waits for the next tick.
A failed push keeps its location pending for the next tick and reports the
failure once per failure streak.
*/
type Scheduler struct {
	cfg       SchedulerConfig
	pusher    LocationPusher
	onFailure func(ctx context.Context, err error)
	l         logger.Logger

	trigger chan struct{}

	mu          sync.Mutex
	pending     *models.LocationUpdate
	lastSuccess time.Time
	failing     bool
}

func NewScheduler(cfg SchedulerConfig, pusher LocationPusher, onFailure func(ctx context.Context, err error), l logger.Logger) *Scheduler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if onFailure == nil {
		onFailure = func(context.Context, error) {}
	}
	return &Scheduler{
		cfg:       cfg,
		pusher:    pusher,
		onFailure: onFailure,
		l:         l,
		trigger:   make(chan struct{}, 1),
	}
}

// Offer replaces the pending location and wakes the run loop. It never blocks.
func (s *Scheduler) Offer(update models.LocationUpdate) {
	s.mu.Lock()
	s.pending = &update
	s.mu.Unlock()

	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run serves offers and ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.trigger:
			s.flush(ctx, false)
		case <-ticker.C:
			s.flush(ctx, true)
		}
	}
}

// flush pushes the pending location. Unless forced it honours MinInterval.
// Reports whether a push was attempted.
func (s *Scheduler) flush(ctx context.Context, force bool) bool {
	const op = "Scheduler.flush"
	ctx = wrap.WithAction(ctx, types.ActionSyncLocation)

	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return false
	}
	now := s.cfg.Now()
	if !force && !s.lastSuccess.IsZero() && now.Sub(s.lastSuccess) < s.cfg.MinInterval {
		s.mu.Unlock()
		return false
	}
	update := *s.pending
	s.pending = nil
	s.mu.Unlock()

	err := s.pusher.PushLocation(ctx, update)
	if err != nil {
		err = wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrSyncFailed, err))
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to sync location", err)
	}

	s.mu.Lock()
	firstFailure := err != nil && !s.failing
	recovered := err == nil && s.failing
	if err != nil && s.pending == nil {
		// a newer offer wins over the failed one
		s.pending = &update
	}
	if err == nil {
		s.lastSuccess = now
	}
	s.failing = err != nil
	s.mu.Unlock()

	if firstFailure {
		s.onFailure(ctx, err)
	}
	if recovered {
		s.l.Info(ctx, "location sync recovered")
	}
	return true
}
