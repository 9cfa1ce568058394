package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// errorBody is the error shape shared with the handler package.
type errorBody struct {
	Error string `json:"error"`
}

// reject writes a JSON error. A failed write is logged; the status line is already sent.
func (m *Middleware) reject(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if err := writeError(w, status, message); err != nil {
		m.log.Error(ctx, "failed to write error response", err, "status", status)
	}
}

func writeError(w http.ResponseWriter, status int, message string) error {
	js, err := json.Marshal(errorBody{Error: message})
	if err != nil {
		return fmt.Errorf("encode error body: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		return fmt.Errorf("write error body: %w", err)
	}
	return nil
}
