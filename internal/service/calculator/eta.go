package geocalc

import (
	"fmt"
	"math"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

const (
	DefaultStationaryKmh = 3.0
	DefaultWalkingKmh    = 5.0

	// estimates longer than a day are shown as a placeholder
	MaxDisplayMinutes = 24 * 60
	ETAPlaceholder    = "--"

	arrivalLayout = "15:04"
)

// Estimate is a straight-line arrival estimate.
type Estimate struct {
	Minutes int
	Arrival string // wall clock "HH:MM"
}

// Display returns the minutes and arrival strings, or placeholders when the estimate is too long to be useful.
func (e Estimate) Display() (minutes, arrival string) {
	if e.Minutes > MaxDisplayMinutes {
		return ETAPlaceholder, ETAPlaceholder
	}
	return fmt.Sprintf("%d", e.Minutes), e.Arrival
}

// ETA estimates minutes to cover distanceMeters at speedKmh, rounded half up.
// Callers substitute a floor speed; speedKmh <= 0 is rejected.
func ETA(distanceMeters, speedKmh float64, now time.Time) (Estimate, error) {
	const op = "geocalc.ETA"

	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsNaN(distanceMeters) || distanceMeters < 0 {
		return Estimate{}, fmt.Errorf("%s: distance=%v speed=%v: %w", op, distanceMeters, speedKmh, types.ErrInvalidInput)
	}

	distanceKm := distanceMeters / 1000
	minutes := int(math.Floor(distanceKm/speedKmh*60 + 0.5))

	return Estimate{
		Minutes: minutes,
		Arrival: now.Add(time.Duration(minutes) * time.Minute).Format(arrivalLayout),
	}, nil
}

// ETAPolicy substitutes a walking speed floor when the device is effectively stationary.
type ETAPolicy struct {
	StationaryKmh float64
	WalkingKmh    float64
}

func DefaultETAPolicy() ETAPolicy {
	return ETAPolicy{
		StationaryKmh: DefaultStationaryKmh,
		WalkingKmh:    DefaultWalkingKmh,
	}
}

// EffectiveSpeedKmh converts a smoothed speed into the km/h value used for estimates.
func (p ETAPolicy) EffectiveSpeedKmh(smoothedMps float64) float64 {
	kmh := MpsToKmh(smoothedMps)
	if kmh < p.StationaryKmh || math.IsNaN(kmh) {
		return p.WalkingKmh
	}
	return kmh
}

// Estimate applies the speed floor and computes the ETA.
func (p ETAPolicy) Estimate(distanceMeters, smoothedMps float64, now time.Time) (Estimate, error) {
	return ETA(distanceMeters, p.EffectiveSpeedKmh(smoothedMps), now)
}
