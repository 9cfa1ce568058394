package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

// TokenService signs and validates device tokens shared between the tracker and the store.
type TokenService struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger
}

func NewTokenService(secret string, ttl time.Duration, log logger.Logger) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// Issue creates a device token valid for the configured TTL.
func (s *TokenService) Issue(ctx context.Context, deviceID string) (models.IssuedToken, error) {
	ctx = wrap.WithAction(ctx, "issue_device_token")
	if deviceID == "" {
		return models.IssuedToken{}, wrap.Error(ctx, ErrEmptyDeviceID)
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	claims := models.DeviceClaims{
		DeviceID:  deviceID,
		TokenType: models.DeviceToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return models.IssuedToken{}, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrTokenGenerateFail, err))
	}

	return models.IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate parses a device token and returns its claims.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.DeviceClaims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &models.DeviceClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}
	if !parsed.Valid || claims.TokenType != models.DeviceToken || claims.DeviceID == "" {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	return claims, nil
}

// TokenSource caches a device token and renews it shortly before expiry.
type TokenSource struct {
	svc      *TokenService
	deviceID string

	mu     sync.Mutex
	cached models.IssuedToken
}

func NewTokenSource(svc *TokenService, deviceID string) *TokenSource {
	return &TokenSource{svc: svc, deviceID: deviceID}
}

// Token returns a valid token.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.cached.Token != "" && ts.svc.now().Add(time.Minute).Before(ts.cached.ExpiresAt) {
		return ts.cached.Token, nil
	}

	issued, err := ts.svc.Issue(ctx, ts.deviceID)
	if err != nil {
		return "", err
	}
	ts.cached = issued
	return issued.Token, nil
}
