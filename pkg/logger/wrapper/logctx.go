package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action     string
		RequestID  string
		SessionID  string
		GeofenceID string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// WithLogCtx returns a new context with the provided LogCtx
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	// Check if there's an existing LogCtx and merge values
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.SessionID == "" {
			newLc.SessionID = lc.SessionID
		}
		if newLc.GeofenceID == "" {
			newLc.GeofenceID = lc.GeofenceID
		}
		return context.WithValue(ctx, LogCtxKey, newLc)
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithSessionID adds or updates the SessionID in the LogCtx within the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	lc.SessionID = sessionID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithGeofenceID adds or updates the GeofenceID in the LogCtx within the context
func WithGeofenceID(ctx context.Context, geofenceID string) context.Context {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	lc.GeofenceID = geofenceID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}

// FromContext returns the LogCtx stored in ctx, if any.
func FromContext(ctx context.Context) (LogCtx, bool) {
	lc, ok := ctx.Value(LogCtxKey).(LogCtx)
	return lc, ok
}

// GetRequestID returns the request id stored in ctx or an empty string.
func GetRequestID(ctx context.Context) string {
	lc, _ := FromContext(ctx)
	return lc.RequestID
}
