package middleware

import (
	"fmt"
	"net/http"

	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				err := fmt.Errorf("panic: %v", p)
				m.log.Error(wrap.WithAction(r.Context(), "http_panic"), "recovered from panic", err, "path", r.URL.Path)

				w.Header().Set("Connection", "close")
				m.reject(r.Context(), w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
