package geocalc

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

var (
	bangkok   = models.Coordinate{Lat: 13.7563, Lng: 100.5018}
	chiangMai = models.Coordinate{Lat: 18.7883, Lng: 98.9853}
)

func TestDistanceMeters_Identity(t *testing.T) {
	points := []models.Coordinate{bangkok, chiangMai, {Lat: -33.86, Lng: 151.2}, {Lat: 89.9, Lng: -179.9}}
	for _, p := range points {
		if d := DistanceMeters(p, p); d != 0 {
			t.Fatalf("distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	ab := DistanceMeters(bangkok, chiangMai)
	ba := DistanceMeters(chiangMai, bangkok)
	if math.Abs(ab-ba) > 1e-6 {
		t.Fatalf("distance must be symmetric, got %v vs %v", ab, ba)
	}
}

func TestDistanceMeters_KnownFixture(t *testing.T) {
	d := DistanceMeters(bangkok, chiangMai)
	if d <= 525_000 || d >= 650_000 {
		t.Fatalf("Bangkok-Chiang Mai distance out of range: %v", d)
	}
}

func TestIsValidCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"bangkok", 13.7563, 100.5018, true},
		{"null island", 0, 0, false},
		{"equator", 0, 10, true},
		{"lat too high", 90.1, 10, false},
		{"lng too low", 10, -180.1, false},
		{"nan", math.NaN(), 10, false},
		{"edge", -90, 180, true},
	}
	for _, tt := range tests {
		if got := IsValidCoordinate(tt.lat, tt.lng); got != tt.want {
			t.Errorf("%s: IsValidCoordinate(%v, %v) = %v, want %v", tt.name, tt.lat, tt.lng, got, tt.want)
		}
	}
}

func TestSpeedMps(t *testing.T) {
	prev := models.Position{Lat: 13.7563, Lng: 100.5018, TimestampMs: 1_000}

	// ~111 m north in 10 s
	cur := models.Position{Lat: 13.7573, Lng: 100.5018, TimestampMs: 11_000}
	got := SpeedMps(prev, cur)
	if got < 10 || got > 12 {
		t.Fatalf("unexpected speed: %v", got)
	}

	jitter := models.Position{Lat: 13.75631, Lng: 100.5018, TimestampMs: 11_000}
	if s := SpeedMps(prev, jitter); s != 0 {
		t.Fatalf("movement under 3 m must yield 0, got %v", s)
	}

	burst := models.Position{Lat: 13.7573, Lng: 100.5018, TimestampMs: 1_400}
	if s := SpeedMps(prev, burst); s != 0 {
		t.Fatalf("interval under 0.5 s must yield 0, got %v", s)
	}
}

func TestETA_RoundHalfUp(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	est, err := ETA(1000, 18, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Minutes != 3 {
		t.Fatalf("1000 m at 18 km/h: got %d minutes, want 3", est.Minutes)
	}
	if est.Arrival != "10:03" {
		t.Fatalf("unexpected arrival: %s", est.Arrival)
	}

	// 1 km at 8 km/h = 7.5 min
	est, err = ETA(1000, 8, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Minutes != 8 {
		t.Fatalf("7.5 minutes must round up to 8, got %d", est.Minutes)
	}
}

func TestETA_InvalidSpeed(t *testing.T) {
	for _, speed := range []float64{0, -5} {
		if _, err := ETA(1000, speed, time.Now()); !errors.Is(err, types.ErrInvalidInput) {
			t.Fatalf("speed %v: expected ErrInvalidInput, got %v", speed, err)
		}
	}
}

func TestETAPolicy_WalkingFloor(t *testing.T) {
	p := DefaultETAPolicy()

	if got := p.EffectiveSpeedKmh(0); got != 5 {
		t.Fatalf("stationary speed must use walking floor, got %v", got)
	}
	// 0.5 m/s = 1.8 km/h
	if got := p.EffectiveSpeedKmh(0.5); got != 5 {
		t.Fatalf("1.8 km/h must use walking floor, got %v", got)
	}
	// 10 m/s = 36 km/h
	if got := p.EffectiveSpeedKmh(10); math.Abs(got-36) > 1e-9 {
		t.Fatalf("unexpected effective speed: %v", got)
	}
}

func TestEstimate_DisplayPlaceholder(t *testing.T) {
	est, err := DefaultETAPolicy().Estimate(500_000, 0, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	minutes, arrival := est.Display()
	if minutes != ETAPlaceholder || arrival != ETAPlaceholder {
		t.Fatalf("estimates over a day must be placeholders, got %s %s", minutes, arrival)
	}

	minutes, _ = Estimate{Minutes: 12, Arrival: "10:12"}.Display()
	if minutes != "12" {
		t.Fatalf("unexpected minutes: %s", minutes)
	}
}

func TestFormat(t *testing.T) {
	if got := FormatDistance(850.4); got != "850 m" {
		t.Errorf("FormatDistance(850.4) = %q", got)
	}
	if got := FormatDistance(1234); got != "1.2 km" {
		t.Errorf("FormatDistance(1234) = %q", got)
	}
	if v, u := DetailDistance(1234); v != "1.23" || u != "km" {
		t.Errorf("DetailDistance(1234) = %q %q", v, u)
	}
	if got := FormatSpeed(0.05); got != "0 km/h" {
		t.Errorf("FormatSpeed(0.05) = %q", got)
	}
	if got := FormatSpeed(0.25); got != "0.25 m/s" {
		t.Errorf("FormatSpeed(0.25) = %q", got)
	}
	if got := FormatSpeed(10); got != "36.0 km/h" {
		t.Errorf("FormatSpeed(10) = %q", got)
	}
	if got := FormatSpeed(30); got != "108 km/h" {
		t.Errorf("FormatSpeed(30) = %q", got)
	}
}

func BenchmarkDistanceMeters(b *testing.B) {
	for b.Loop() {
		_ = DistanceMeters(bangkok, chiangMai)
	}
}
