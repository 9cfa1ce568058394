package models

import "time"

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Position is one raw sample from the location provider.
type Position struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Accuracy    *float64 `json:"accuracy,omitempty"` // meters, unknown when nil
	TimestampMs int64    `json:"timestamp"`
}

func (p Position) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lng: p.Lng}
}

func (p Position) Time() time.Time {
	return time.UnixMilli(p.TimestampMs)
}

// MotionState is the position filter's running state.
type MotionState struct {
	RawSpeedMps      float64
	SmoothedSpeedMps float64
	LastAccepted     *Position
}

// LocationUpdate is what the tracker pushes to the remote store.
type LocationUpdate struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Speed    float64 `json:"speed"` // km/h, smoothed
	Accuracy float64 `json:"accuracy,omitempty"`
}
