package types

// EventType is the routing suffix of events published to the message broker.
type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventGeofenceEnter   EventType = "GEOFENCE_ENTER"
	EventGeofenceExit    EventType = "GEOFENCE_EXIT"
	EventLocationUpdated EventType = "LOCATION_UPDATED"
	EventCheckIn         EventType = "CHECK_IN"
	EventSOS             EventType = "SOS"
)
