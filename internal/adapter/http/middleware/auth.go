package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

// RequireDevice validates the bearer device token and injects its claims into the context.
// Missing or invalid tokens get 401.
func (h *Middleware) RequireDevice(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := wrap.WithAction(r.Context(), "device_auth")

		if h.auth == nil {
			h.reject(ctx, w, http.StatusUnauthorized, "authorization is not configured")
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			h.reject(ctx, w, http.StatusUnauthorized, "authorization required")
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			h.reject(ctx, w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := h.auth.Validate(ctx, token)
		if err != nil || claims == nil {
			h.log.Warn(ctx, "failed to authenticate device", "error", fmt.Sprint(err))
			h.reject(ctx, w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithDevice(r.Context(), claims)))
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
