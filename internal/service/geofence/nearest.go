package geofence

import (
	"math"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
)

// Nearest returns the enabled view with the smallest distance.
// A missing distance counts as +Inf; on ties the earliest view wins.
// Returns nil when no enabled view has a known distance.
func Nearest(views []models.RuntimeView) *models.RuntimeView {
	var (
		best    *models.RuntimeView
		bestDst = math.Inf(1)
	)

	for i := range views {
		v := &views[i]
		if !v.Enabled {
			continue
		}

		d := math.Inf(1)
		if v.DistanceMeters != nil {
			d = *v.DistanceMeters
		}
		if d < bestDst {
			best, bestDst = v, d
		}
	}

	if best == nil {
		return nil
	}
	out := *best
	return &out
}
