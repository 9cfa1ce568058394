package middleware

import (
	"context"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/pkg/logger"
)

type (
	// DeviceAuth validates device tokens issued to trackers.
	DeviceAuth interface {
		Validate(ctx context.Context, token string) (*models.DeviceClaims, error)
	}

	Middleware struct {
		auth DeviceAuth
		log  logger.Logger
	}
)

// NewMiddleware creates the middleware set. auth may be nil for services without device auth.
func NewMiddleware(auth DeviceAuth, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
