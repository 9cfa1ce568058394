package models

import (
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

// GeofenceEvent is published to the broker on every observed transition.
type GeofenceEvent struct {
	DeviceID       string               `json:"device_id"`
	Kind           types.TransitionKind `json:"kind"`
	GeofenceID     string               `json:"geofence_id"`
	GeofenceName   string               `json:"geofence_name"`
	DistanceMeters float64              `json:"distance_meters"`
	Timestamp      time.Time            `json:"timestamp"`
}

// DeviceEvent is published by the store for location, check-in and SOS actions.
type DeviceEvent struct {
	DeviceID   string           `json:"device_id"`
	Type       types.EventType  `json:"type"`
	NotifyMode types.NotifyMode `json:"notify_mode,omitempty"`
	Location   *Coordinate      `json:"location,omitempty"`
	SpeedKmh   float64          `json:"speed_kmh,omitempty"`
	Message    string           `json:"message,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}
