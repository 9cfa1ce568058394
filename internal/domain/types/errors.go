package types

import "errors"

var (
	// ErrSampleRejected marks a position sample dropped by the filter. Never surfaced to the user.
	ErrSampleRejected = errors.New("sample rejected")
	// ErrProviderUnavailable is a terminal location provider condition (permission denied, no signal).
	ErrProviderUnavailable = errors.New("location provider unavailable")
	// ErrSyncFailed is returned when pushing a location update to the remote store failed.
	ErrSyncFailed = errors.New("location sync failed")
	// ErrMutationFailed is returned when a geofence create/edit/delete/toggle call failed.
	ErrMutationFailed = errors.New("geofence mutation failed")
	// ErrInvalidInput is returned by pure math helpers on out-of-domain input.
	ErrInvalidInput = errors.New("invalid input")

	ErrNoPosition       = errors.New("no accepted position yet")
	ErrGeofenceNotFound = errors.New("geofence not found")
	ErrUnknownAction    = errors.New("unknown action")
	ErrStoreNotSet      = errors.New("remote store is not configured")
	ErrInvalidGeofence  = errors.New("invalid geofence definition")
	ErrUnauthorized     = errors.New("unauthorized")
)
