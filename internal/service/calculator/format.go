package geocalc

import (
	"fmt"
	"math"
)

// FormatDistance renders a distance for compact display: "850 m", "1.2 km".
func FormatDistance(meters float64) string {
	if math.IsNaN(meters) || meters < 0 {
		return "?"
	}
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(math.Round(meters)))
}

// DetailDistance splits a distance into a value and a unit for the expanded view.
func DetailDistance(meters float64) (value, unit string) {
	if meters >= 1000 {
		return fmt.Sprintf("%.2f", meters/1000), "km"
	}
	return fmt.Sprintf("%d", int(math.Round(meters))), "m"
}

// FormatSpeed renders a speed given in m/s.
func FormatSpeed(mps float64) string {
	if math.IsNaN(mps) || mps < 0.1 {
		return "0 km/h"
	}

	kmh := MpsToKmh(mps)
	switch {
	case kmh < 1:
		return fmt.Sprintf("%.2f m/s", mps)
	case kmh < 100:
		return fmt.Sprintf("%.1f km/h", kmh)
	default:
		return fmt.Sprintf("%d km/h", int(math.Round(kmh)))
	}
}
