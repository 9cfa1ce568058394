package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func TestClient_ToggleRequestShape(t *testing.T) {
	var got models.StoreRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"geofences":[{"id":"home","name":"Home","lat":13.7,"lng":100.5,"radius":100,"enabled":true,"currentDistance":42.5}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken("tok"), logger.Nop())
	list, err := c.ToggleGeofence(context.Background(), "home", true, &models.Coordinate{Lat: 13.7, Lng: 100.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Action != types.ActionToggleGeofence || got.ID != "home" || got.Enabled == nil || !*got.Enabled {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Lat == nil || *got.Lat != 13.7 {
		t.Fatalf("origin must be sent, got %+v", got)
	}
	if auth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if len(list) != 1 || list[0].CurrentDistance == nil || *list[0].CurrentDistance != 42.5 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"non 2xx", http.StatusInternalServerError, `{"error":"boom"}`, ErrBadStatus},
		{"malformed", http.StatusOK, `{"geofences":`, ErrBadResponse},
		{"error field", http.StatusOK, `{"error":"quota exceeded"}`, ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second, nil, logger.Nop())
			if _, err := c.GetData(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_EmptyListAndNoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil, logger.Nop())
	list, err := c.SetSettings(context.Background(), types.NotifyPrivate)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}

	c = NewClient("", time.Second, nil, logger.Nop())
	if _, err := c.GetData(context.Background()); !errors.Is(err, types.ErrStoreNotSet) {
		t.Fatalf("expected ErrStoreNotSet, got %v", err)
	}
}
