package models

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DeviceToken = "device"

// DeviceClaims identify a tracker device calling the store.
type DeviceClaims struct {
	DeviceID  string `json:"device_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed device token and its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

type ctxKeyDevice struct{}

// WithDevice stores authenticated device claims in ctx.
func WithDevice(ctx context.Context, claims *DeviceClaims) context.Context {
	return context.WithValue(ctx, ctxKeyDevice{}, claims)
}

// DeviceFromContext returns the authenticated device, or nil.
func DeviceFromContext(ctx context.Context) *DeviceClaims {
	claims, _ := ctx.Value(ctxKeyDevice{}).(*DeviceClaims)
	return claims
}
