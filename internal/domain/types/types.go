package types

type ServiceMode string

// Tracker - consumes location samples, detects geofence transitions and drives the attention slot
// Store - reference remote store serving geofence definitions over a single action endpoint
const (
	TrackerService ServiceMode = "tracker"
	StoreService   ServiceMode = "store"
)

// TrackingStatus is the overall state of the location provider subscription.
type TrackingStatus string

const (
	StatusIdle        TrackingStatus = "idle"
	StatusConnecting  TrackingStatus = "connecting"
	StatusTracking    TrackingStatus = "tracking"
	StatusUnavailable TrackingStatus = "unavailable"
)

// NotifyMode selects who the store notifies about location events.
type NotifyMode string

const (
	NotifyFamily  NotifyMode = "family"
	NotifyPrivate NotifyMode = "private"
)

func (m NotifyMode) String() string {
	return string(m)
}

// Toggle returns the other notify mode.
func (m NotifyMode) Toggle() NotifyMode {
	if m == NotifyFamily {
		return NotifyPrivate
	}
	return NotifyFamily
}

func (m NotifyMode) IsValid() bool {
	return m == NotifyFamily || m == NotifyPrivate
}

// Membership is the last known inside/outside state of a geofence.
// The zero value is MembershipUnknown: a fence that was never observed is not "outside".
type Membership uint8

const (
	MembershipUnknown Membership = iota
	MembershipOutside
	MembershipInside
)

// MembershipOf converts an inside flag into a known membership.
func MembershipOf(inside bool) Membership {
	if inside {
		return MembershipInside
	}
	return MembershipOutside
}

func (m Membership) String() string {
	switch m {
	case MembershipInside:
		return "inside"
	case MembershipOutside:
		return "outside"
	default:
		return "unknown"
	}
}

// TransitionKind is the direction of a geofence boundary crossing.
type TransitionKind string

const (
	TransitionEnter TransitionKind = "enter"
	TransitionExit  TransitionKind = "exit"
)

// AttentionMode is the state of the single shared display slot.
type AttentionMode string

const (
	ModeIdle     AttentionMode = "idle"
	ModeTracking AttentionMode = "tracking"
	ModeAlert    AttentionMode = "alert"
	ModeDetail   AttentionMode = "detail"
)

// Severity of an alert shown in the attention slot.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityWait     Severity = "wait"
	SeverityTracking Severity = "tracking"
)

// Icon returns the glyph the render surface shows next to an alert.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "✅"
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️"
	case SeverityWait:
		return "⏳"
	case SeverityTracking:
		return "🚗"
	default:
		return "📍"
	}
}

// RejectReason explains why the position filter dropped a sample.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectInvalidCoordinate RejectReason = "invalid_coordinate"
	RejectLowAccuracy       RejectReason = "low_accuracy"
	RejectJump              RejectReason = "jump"
)

// SpeedRejectReason explains why a raw speed did not update the smoothed speed.
type SpeedRejectReason string

const (
	SpeedAccepted        SpeedRejectReason = ""
	SpeedNegative        SpeedRejectReason = "negative"
	SpeedTooHigh         SpeedRejectReason = "too_high"
	SpeedAccelerationCap SpeedRejectReason = "acceleration"
)
