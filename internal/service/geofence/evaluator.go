package geofence

import (
	"context"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	geocalc "github.com/Temutjin2k/geopulse/internal/service/calculator"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
)

// Evaluation is the result of evaluating one accepted position against the geofence set.
type Evaluation struct {
	Views  []models.RuntimeView      // in geofence list order
	Events []models.TransitionEvent // notifiable transitions only
}

// Evaluator tracks inside/outside membership per geofence and detects transitions.
type Evaluator struct {
	state models.TransitionState
	l     logger.Logger
}

func NewEvaluator(l logger.Logger) *Evaluator {
	return &Evaluator{
		state: make(models.TransitionState),
		l:     l,
	}
}

// Membership returns the last known membership of a geofence.
func (e *Evaluator) Membership(geofenceID string) types.Membership {
	return e.state[geofenceID]
}

// Forget drops all membership so every fence is treated as first observed.
func (e *Evaluator) Forget() {
	e.state = make(models.TransitionState)
}

// Evaluate computes distance and membership for every placed geofence.
// The first observation of a fence never fires. Membership is stored even when the
// transition is not notifiable, and entries of fences no longer in the set are dropped.
func (e *Evaluator) Evaluate(ctx context.Context, pos models.Position, fences []models.Geofence) Evaluation {
	var (
		res  = Evaluation{Views: make([]models.RuntimeView, 0, len(fences))}
		seen = make(map[string]struct{}, len(fences))
		at   = pos.Time()
	)

	for _, g := range fences {
		center, ok := g.Center()
		if !ok {
			continue
		}
		seen[g.ID] = struct{}{}

		distance := geocalc.DistanceMeters(pos.Coordinate(), center)
		inside := distance <= g.RadiusMeters

		res.Views = append(res.Views, models.RuntimeView{
			GeofenceID:     g.ID,
			Name:           g.Name,
			Enabled:        g.Enabled,
			DistanceMeters: &distance,
			IsInside:       inside,
		})

		prev := e.state[g.ID]
		cur := types.MembershipOf(inside)
		e.state[g.ID] = cur

		if prev == types.MembershipUnknown || prev == cur {
			continue
		}

		kind := types.TransitionExit
		notify := g.NotifyOnExit
		if inside {
			kind = types.TransitionEnter
			notify = g.NotifyOnEnter
		}
		notify = notify && g.Enabled

		metrics.RecordTransition(string(kind), notify)
		e.l.Debug(wrap.WithGeofenceID(ctx, g.ID), "geofence membership changed",
			"kind", kind, "notify", notify, "distance_m", distance)

		if !notify {
			continue
		}

		res.Events = append(res.Events, models.TransitionEvent{
			Kind:           kind,
			Geofence:       g,
			DistanceMeters: distance,
			At:             at,
		})
	}

	for id := range e.state {
		if _, ok := seen[id]; !ok {
			delete(e.state, id)
		}
	}

	return res
}
