package geocalc

import (
	"math"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
)

const (
	earthRadiusKm = 6371 // mean earth radius in km
	earthRadiusM  = earthRadiusKm * 1000.0

	// jitter suppression for speed-from-two-fixes
	DefaultMinMoveMeters  = 3.0
	DefaultMinIntervalSec = 0.5
)

// DistanceMeters returns the great-circle (haversine) distance between two points.
func DistanceMeters(a, b models.Coordinate) float64 {
	if a == b {
		return 0
	}

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	angle := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * angle
}

// IsValidCoordinate rejects NaN, out of range values and the exact (0,0) "no fix" sentinel.
func IsValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return false
	}
	if lat == 0 && lng == 0 {
		return false
	}
	return true
}

// ElapsedSeconds returns the time between two fixes in seconds.
func ElapsedSeconds(prev, cur models.Position) float64 {
	return float64(cur.TimestampMs-prev.TimestampMs) / 1000
}

// SpeedBetween computes the speed between two fixes in m/s.
// Separations under minMoveMeters or intervals of at most minIntervalSec yield 0.
func SpeedBetween(prev, cur models.Position, minMoveMeters, minIntervalSec float64) float64 {
	if !IsValidCoordinate(prev.Lat, prev.Lng) || !IsValidCoordinate(cur.Lat, cur.Lng) {
		return 0
	}

	distance := DistanceMeters(prev.Coordinate(), cur.Coordinate())
	if distance < minMoveMeters {
		return 0
	}

	dt := ElapsedSeconds(prev, cur)
	if dt <= minIntervalSec {
		return 0
	}
	return distance / dt
}

// SpeedMps is SpeedBetween with the default jitter thresholds.
func SpeedMps(prev, cur models.Position) float64 {
	return SpeedBetween(prev, cur, DefaultMinMoveMeters, DefaultMinIntervalSec)
}

// MpsToKmh converts meters per second into kilometers per hour.
func MpsToKmh(mps float64) float64 {
	return mps * 3.6
}
