package models

import (
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

// Geofence is a user-defined circular region as stored by the remote store.
// CurrentDistance and IsInside are server-side annotations and are never written by the engine.
type Geofence struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
	RadiusMeters      float64  `json:"radius"`
	Enabled           bool     `json:"enabled"`
	NotifyOnEnter     bool     `json:"notifyOnEnter"`
	NotifyOnExit      bool     `json:"notifyOnExit"`
	NextDestinationID *string  `json:"nextDestinationId,omitempty"`

	CurrentDistance *float64 `json:"currentDistance,omitempty"`
	IsInside        *bool    `json:"isInside,omitempty"`
}

// Center returns the fence center and false when the fence has no coordinates yet.
func (g Geofence) Center() (Coordinate, bool) {
	if g.Lat == nil || g.Lng == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *g.Lat, Lng: *g.Lng}, true
}

// RuntimeView is the per-fence result of one evaluation pass.
type RuntimeView struct {
	GeofenceID     string   `json:"id"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	DistanceMeters *float64 `json:"distance,omitempty"`
	IsInside       bool     `json:"isInside"`
}

// TransitionState is the last known membership per geofence id.
type TransitionState map[string]types.Membership

// TransitionEvent is an observed boundary crossing.
type TransitionEvent struct {
	Kind           types.TransitionKind `json:"kind"`
	Geofence       Geofence             `json:"geofence"`
	DistanceMeters float64              `json:"distance"`
	At             time.Time            `json:"at"`
}

// TrackerSnapshot is what the render surface shows besides the attention slot.
type TrackerSnapshot struct {
	Status           types.TrackingStatus `json:"status"`
	NotifyMode       types.NotifyMode     `json:"notifyMode"`
	Position         *Position            `json:"position,omitempty"`
	SmoothedSpeedMps float64              `json:"speed"`
	Views            []RuntimeView        `json:"geofences"`
	Nearest          *RuntimeView         `json:"nearest,omitempty"`
}
