package tracking

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
)

// meters per degree of latitude on a 6371 km sphere
const metersPerDegLat = 6371000 * math.Pi / 180

func acc(v float64) *float64 { return &v }

// sample returns a position metersNorth of a fixed origin at the given second.
func sample(metersNorth float64, sec float64, accuracy *float64) models.Position {
	return models.Position{
		Lat:         13.7563 + metersNorth/metersPerDegLat,
		Lng:         100.5018,
		Accuracy:    accuracy,
		TimestampMs: int64(sec * 1000),
	}
}

func newTestFilter() *Filter {
	return NewFilter(DefaultFilterConfig(), logger.Nop())
}

func TestFilter_FirstFixIgnoresAccuracy(t *testing.T) {
	f := newTestFilter()
	ctx := context.Background()

	first := sample(0, 0, acc(200))
	if res := f.Process(ctx, first); !res.Accepted {
		t.Fatalf("first fix must be accepted, got reason %q", res.Reason)
	}

	before := f.State()
	res := f.Process(ctx, sample(10, 2, acc(200)))
	if res.Accepted || res.Reason != types.RejectLowAccuracy {
		t.Fatalf("expected low accuracy rejection, got %+v", res)
	}
	if !errors.Is(res.Err(), types.ErrSampleRejected) {
		t.Fatalf("expected ErrSampleRejected, got %v", res.Err())
	}

	after := f.State()
	if *after.LastAccepted != *before.LastAccepted || after.SmoothedSpeedMps != before.SmoothedSpeedMps {
		t.Fatalf("rejected sample must not change state: before %+v after %+v", before, after)
	}
}

func TestFilter_RejectsJump(t *testing.T) {
	f := newTestFilter()
	ctx := context.Background()

	f.Process(ctx, sample(0, 0, acc(5)))
	res := f.Process(ctx, sample(10_000, 5, acc(5)))
	if res.Accepted || res.Reason != types.RejectJump {
		t.Fatalf("10 km in 5 s must be rejected as a jump, got %+v", res)
	}
	if f.State().LastAccepted.TimestampMs != 0 {
		t.Fatalf("jump must not replace the last accepted fix")
	}
}

func TestFilter_RejectsInvalidCoordinate(t *testing.T) {
	f := newTestFilter()
	res := f.Process(context.Background(), models.Position{Lat: 0, Lng: 0, TimestampMs: 1})
	if res.Accepted || res.Reason != types.RejectInvalidCoordinate {
		t.Fatalf("(0,0) must be rejected, got %+v", res)
	}
	if f.State().LastAccepted != nil {
		t.Fatalf("state must stay empty")
	}
}

func TestFilter_Smoothing(t *testing.T) {
	f := newTestFilter()
	ctx := context.Background()

	f.Process(ctx, sample(0, 0, nil))

	// ~11.12 m/s from rest uses the start gain
	res := f.Process(ctx, sample(111.19, 10, nil))
	if !res.Accepted || res.SpeedReason != types.SpeedAccepted {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := 0.35 * res.RawSpeedMps
	if math.Abs(res.SmoothedSpeedMps-want) > 1e-9 {
		t.Fatalf("smoothed = %v, want %v", res.SmoothedSpeedMps, want)
	}

	// standing still: raw 0, moving gain
	prev := res.SmoothedSpeedMps
	res = f.Process(ctx, sample(111.19+1, 20, nil))
	if res.RawSpeedMps != 0 {
		t.Fatalf("1 m movement must yield raw speed 0, got %v", res.RawSpeedMps)
	}
	want = 0.8 * prev
	if math.Abs(res.SmoothedSpeedMps-want) > 1e-9 {
		t.Fatalf("smoothed = %v, want %v", res.SmoothedSpeedMps, want)
	}
}

func TestFilter_FloorsLowSpeed(t *testing.T) {
	f := newTestFilter()
	ctx := context.Background()

	f.Process(ctx, sample(0, 0, nil))
	// 5 m in 10 s = 0.5 m/s, 0.35 * 0.5 = 0.175 < 0.3
	res := f.Process(ctx, sample(5, 10, nil))
	if res.SmoothedSpeedMps != 0 {
		t.Fatalf("speeds under the floor must be 0, got %v", res.SmoothedSpeedMps)
	}
}

func TestFilter_AccelerationDecay(t *testing.T) {
	f := newTestFilter()
	ctx := context.Background()

	f.Process(ctx, sample(0, 0, nil))
	prev := f.Process(ctx, sample(111.19, 10, nil)).SmoothedSpeedMps

	// 25 m/s against ~3.9 m/s smoothed
	res := f.Process(ctx, sample(111.19+250, 20, nil))
	if !res.Accepted {
		t.Fatalf("position must be accepted even when speed is rejected")
	}
	if res.SpeedReason != types.SpeedAccelerationCap {
		t.Fatalf("expected acceleration rejection, got %q", res.SpeedReason)
	}
	if math.Abs(res.SmoothedSpeedMps-prev*0.9) > 1e-9 {
		t.Fatalf("smoothed speed must decay, got %v want %v", res.SmoothedSpeedMps, prev*0.9)
	}
	if f.State().LastAccepted.TimestampMs != 20_000 {
		t.Fatalf("last accepted position must advance")
	}
}

func TestFilter_SpeedTooHigh(t *testing.T) {
	cfg := DefaultFilterConfig()
	cfg.MaxAccelerationMps2 = 100
	f := NewFilter(cfg, logger.Nop())
	ctx := context.Background()

	f.Process(ctx, sample(0, 0, nil))
	// 55 m/s passes the teleport gate (550 m < 10 s * 60 m/s)
	res := f.Process(ctx, sample(550, 10, nil))
	if !res.Accepted || res.SpeedReason != types.SpeedTooHigh {
		t.Fatalf("expected accepted position with too_high speed, got %+v", res)
	}
	if res.SmoothedSpeedMps != 0 {
		t.Fatalf("decayed zero speed must stay 0, got %v", res.SmoothedSpeedMps)
	}
}

func BenchmarkFilter_Process(b *testing.B) {
	f := newTestFilter()
	ctx := context.Background()
	var sec float64

	for b.Loop() {
		sec++
		f.Process(ctx, sample(sec*10, sec, acc(5)))
	}
}
