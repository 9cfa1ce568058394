package tracking

import (
	"context"
	"fmt"
	"math"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	geocalc "github.com/Temutjin2k/geopulse/internal/service/calculator"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
)

// FilterConfig holds the gates and smoothing constants of the position filter.
type FilterConfig struct {
	MaxAccuracyMeters   float64 // samples less accurate than this are dropped once a fix exists
	MaxJumpSpeedMps     float64 // implied speed ceiling of the teleport gate
	MinJumpMeters       float64 // absolute separation floor of the teleport gate
	MinMoveMeters       float64
	MinSpeedIntervalSec float64
	MaxSpeedMps         float64
	MaxAccelerationMps2 float64 // max |raw - smoothed| per sample
	SpeedDecay          float64
	StartGain           float64
	MovingGain          float64
	StartSpeedMps       float64 // below this smoothed speed StartGain is used
	SpeedFloorMps       float64
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxAccuracyMeters:   100,
		MaxJumpSpeedMps:     60,
		MinJumpMeters:       500,
		MinMoveMeters:       geocalc.DefaultMinMoveMeters,
		MinSpeedIntervalSec: geocalc.DefaultMinIntervalSec,
		MaxSpeedMps:         50,
		MaxAccelerationMps2: 15,
		SpeedDecay:          0.9,
		StartGain:           0.35,
		MovingGain:          0.20,
		StartSpeedMps:       0.5,
		SpeedFloorMps:       0.3,
	}
}

// FilterConfigFrom maps tracker configuration onto filter constants.
func FilterConfigFrom(cfg config.TrackerConfig) FilterConfig {
	return FilterConfig{
		MaxAccuracyMeters:   cfg.MaxAccuracyMeters,
		MaxJumpSpeedMps:     cfg.MaxJumpSpeedMps,
		MinJumpMeters:       cfg.MinJumpMeters,
		MinMoveMeters:       cfg.MinMoveMeters,
		MinSpeedIntervalSec: cfg.MinSpeedIntervalSec,
		MaxSpeedMps:         cfg.MaxSpeedMps,
		MaxAccelerationMps2: cfg.MaxAccelerationMps2,
		SpeedDecay:          cfg.SpeedDecay,
		StartGain:           cfg.StartGain,
		MovingGain:          cfg.MovingGain,
		StartSpeedMps:       cfg.StartSpeedMps,
		SpeedFloorMps:       cfg.SpeedFloorMps,
	}
}

// Result is the outcome of one sample.
// Position acceptance and speed acceptance are independent.
type Result struct {
	Accepted    bool
	Reason      types.RejectReason
	SpeedReason types.SpeedRejectReason

	Position         models.Position
	RawSpeedMps      float64
	SmoothedSpeedMps float64
}

// Err returns ErrSampleRejected with the reason for rejected samples and nil otherwise.
func (r Result) Err() error {
	if r.Accepted {
		return nil
	}
	return fmt.Errorf("%w: %s", types.ErrSampleRejected, r.Reason)
}

// Filter rejects low-accuracy and teleporting samples and smooths speed.
// It is not safe for concurrent use; samples must be delivered one at a time.
type Filter struct {
	cfg   FilterConfig
	state models.MotionState
	l     logger.Logger
}

func NewFilter(cfg FilterConfig, l logger.Logger) *Filter {
	return &Filter{
		cfg: cfg,
		l:   l,
	}
}

// State returns a copy of the motion state.
func (f *Filter) State() models.MotionState {
	st := f.state
	if st.LastAccepted != nil {
		p := *st.LastAccepted
		st.LastAccepted = &p
	}
	return st
}

// Process runs a raw sample through the gates. Rejected samples leave the state untouched.
func (f *Filter) Process(ctx context.Context, p models.Position) Result {
	if reason := f.gate(p); reason != types.RejectNone {
		ctx = wrap.WithAction(ctx, types.ActionSampleRejected)
		f.l.Debug(ctx, "position sample rejected", "reason", reason, "lat", p.Lat, "lng", p.Lng)
		metrics.RecordSample(string(reason))

		return Result{
			Reason:           reason,
			Position:         p,
			RawSpeedMps:      f.state.RawSpeedMps,
			SmoothedSpeedMps: f.state.SmoothedSpeedMps,
		}
	}

	var raw float64
	if prev := f.state.LastAccepted; prev != nil {
		raw = geocalc.SpeedBetween(*prev, p, f.cfg.MinMoveMeters, f.cfg.MinSpeedIntervalSec)
	}

	speedReason := f.plausible(raw)
	if speedReason != types.SpeedAccepted {
		f.state.SmoothedSpeedMps *= f.cfg.SpeedDecay
		metrics.SpeedUpdatesRejected.WithLabelValues(string(speedReason)).Inc()
		f.l.Debug(ctx, "speed update rejected", "reason", speedReason, "raw_mps", raw)
	} else {
		f.state.SmoothedSpeedMps = f.smooth(raw)
	}

	accepted := p
	f.state.RawSpeedMps = raw
	f.state.LastAccepted = &accepted

	metrics.RecordSample("accepted")
	metrics.SmoothedSpeedGauge.Set(f.state.SmoothedSpeedMps)

	return Result{
		Accepted:         true,
		SpeedReason:      speedReason,
		Position:         p,
		RawSpeedMps:      raw,
		SmoothedSpeedMps: f.state.SmoothedSpeedMps,
	}
}

// gate applies coordinate, accuracy and teleport checks.
func (f *Filter) gate(p models.Position) types.RejectReason {
	if !geocalc.IsValidCoordinate(p.Lat, p.Lng) {
		return types.RejectInvalidCoordinate
	}

	prev := f.state.LastAccepted
	if prev == nil {
		// first fix is accepted regardless of accuracy
		return types.RejectNone
	}

	if p.Accuracy != nil && *p.Accuracy > f.cfg.MaxAccuracyMeters {
		return types.RejectLowAccuracy
	}

	dt := geocalc.ElapsedSeconds(*prev, p)
	if dt > 0 {
		separation := geocalc.DistanceMeters(prev.Coordinate(), p.Coordinate())
		if separation > dt*f.cfg.MaxJumpSpeedMps && separation > f.cfg.MinJumpMeters {
			return types.RejectJump
		}
	}

	return types.RejectNone
}

func (f *Filter) plausible(raw float64) types.SpeedRejectReason {
	switch {
	case raw < 0 || math.IsNaN(raw):
		return types.SpeedNegative
	case raw > f.cfg.MaxSpeedMps:
		return types.SpeedTooHigh
	case math.Abs(raw-f.state.SmoothedSpeedMps) > f.cfg.MaxAccelerationMps2:
		return types.SpeedAccelerationCap
	}
	return types.SpeedAccepted
}

// smooth is an adaptive EMA: faster convergence from rest, more stable once moving.
func (f *Filter) smooth(raw float64) float64 {
	cur := f.state.SmoothedSpeedMps

	gain := f.cfg.MovingGain
	if cur < f.cfg.StartSpeedMps {
		gain = f.cfg.StartGain
	}

	next := gain*raw + (1-gain)*cur
	if next < f.cfg.SpeedFloorMps {
		next = 0
	}
	if next > f.cfg.MaxSpeedMps {
		next = f.cfg.MaxSpeedMps
	}
	return next
}
