package models

import (
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

// StoreResponse is the body returned by every remote store action.
type StoreResponse struct {
	Geofences []Geofence `json:"geofences"`
	Error     string     `json:"error,omitempty"`
}

// GeofenceInput is the create/edit payload of a geofence.
type GeofenceInput struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name" validate:"required,max=100"`
	Lat               *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng               *float64 `json:"lng" validate:"omitempty,longitude"`
	RadiusMeters      float64  `json:"radius" validate:"gt=0,lte=100000"`
	Enabled           bool     `json:"enabled"`
	NotifyOnEnter     bool     `json:"notifyOnEnter"`
	NotifyOnExit      bool     `json:"notifyOnExit"`
	NextDestinationID *string  `json:"nextDestinationId,omitempty"`
}

// Geofence converts the input into a definition with the given id.
func (in GeofenceInput) Geofence(id string) Geofence {
	return Geofence{
		ID:                id,
		Name:              in.Name,
		Lat:               in.Lat,
		Lng:               in.Lng,
		RadiusMeters:      in.RadiusMeters,
		Enabled:           in.Enabled,
		NotifyOnEnter:     in.NotifyOnEnter,
		NotifyOnExit:      in.NotifyOnExit,
		NextDestinationID: in.NextDestinationID,
	}
}

// InputOf returns the mutable part of a geofence definition.
func InputOf(g Geofence) GeofenceInput {
	return GeofenceInput{
		ID:                g.ID,
		Name:              g.Name,
		Lat:               g.Lat,
		Lng:               g.Lng,
		RadiusMeters:      g.RadiusMeters,
		Enabled:           g.Enabled,
		NotifyOnEnter:     g.NotifyOnEnter,
		NotifyOnExit:      g.NotifyOnExit,
		NextDestinationID: g.NextDestinationID,
	}
}

// DeviceLocation is the last location a device reported to the store.
type DeviceLocation struct {
	DeviceID  string
	Lat       float64
	Lng       float64
	SpeedKmh  float64
	Accuracy  float64
	UpdatedAt time.Time
}

// Settings are per-device preferences kept by the store.
type Settings struct {
	DeviceID   string
	NotifyMode types.NotifyMode
}

// StoreRequest is the single request shape of the remote store: an action plus flat parameters.
// Lat/Lng carry the device position for location actions and the origin for mutations.
type StoreRequest struct {
	Action     types.StoreAction `json:"action" validate:"required"`
	Lat        *float64          `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng        *float64          `json:"lng,omitempty" validate:"omitempty,longitude"`
	Speed      float64           `json:"speed,omitempty" validate:"gte=0"`
	Accuracy   float64           `json:"accuracy,omitempty" validate:"gte=0"`
	NotifyMode types.NotifyMode  `json:"notifyMode,omitempty" validate:"omitempty,oneof=family private"`
	Payload    *GeofenceInput    `json:"payload,omitempty"`
	ID         string            `json:"id,omitempty"`
	Enabled    *bool             `json:"enabled,omitempty"`
	Message    string            `json:"message,omitempty" validate:"max=500"`
}

// Origin returns the request position, if both coordinates are set.
func (r StoreRequest) Origin() *Coordinate {
	if r.Lat == nil || r.Lng == nil {
		return nil
	}
	return &Coordinate{Lat: *r.Lat, Lng: *r.Lng}
}
