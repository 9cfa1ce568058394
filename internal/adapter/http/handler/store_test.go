package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
)

type mockStoreService struct {
	deviceID string
	req      models.StoreRequest
	list     []models.Geofence
	err      error
}

func (m *mockStoreService) Handle(_ context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	m.deviceID = deviceID
	m.req = req
	return m.list, m.err
}

func storeRequest(body string, device bool) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	if device {
		r = r.WithContext(models.WithDevice(r.Context(), &models.DeviceClaims{DeviceID: "device-1"}))
	}
	return r
}

func TestStore_Handle(t *testing.T) {
	svc := &mockStoreService{list: []models.Geofence{{ID: "a", Name: "Home", RadiusMeters: 100}}}
	h := NewStore(svc, logger.Nop())

	w := httptest.NewRecorder()
	h.Handle(w, storeRequest(`{"action":"UPDATE_LOCATION","lat":13.7,"lng":100.5,"notifyMode":"private"}`, true))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.deviceID != "device-1" {
		t.Errorf("expected device-1, got %q", svc.deviceID)
	}
	if svc.req.Action != types.ActionUpdateLocation || svc.req.NotifyMode != types.NotifyPrivate {
		t.Errorf("unexpected request %+v", svc.req)
	}

	var resp models.StoreResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Geofences) != 1 || resp.Geofences[0].Name != "Home" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestStore_HandleErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		device bool
		err    error
		want   int
	}{
		{name: "no device", body: `{"action":"GET_DATA"}`, want: http.StatusUnauthorized},
		{name: "malformed", body: `{"action":`, device: true, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"action":"GET_DATA","foo":1}`, device: true, want: http.StatusBadRequest},
		{name: "missing action", body: `{}`, device: true, want: http.StatusUnprocessableEntity},
		{name: "bad latitude", body: `{"action":"CHECK_IN","lat":91,"lng":0}`, device: true, want: http.StatusUnprocessableEntity},
		{name: "bad notify mode", body: `{"action":"SET_SETTINGS","notifyMode":"all"}`, device: true, want: http.StatusUnprocessableEntity},
		{name: "bad payload", body: `{"action":"ADD_GEOFENCE","payload":{"name":"","radius":0}}`, device: true, want: http.StatusUnprocessableEntity},
		{name: "not found", body: `{"action":"DELETE_GEOFENCE","id":"x"}`, device: true, err: types.ErrGeofenceNotFound, want: http.StatusNotFound},
		{name: "unknown action", body: `{"action":"SEND_CHAT"}`, device: true, err: types.ErrUnknownAction, want: http.StatusBadRequest},
		{name: "internal", body: `{"action":"GET_DATA"}`, device: true, err: fmt.Errorf("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewStore(&mockStoreService{err: tt.err}, logger.Nop())

			w := httptest.NewRecorder()
			h.Handle(w, storeRequest(tt.body, tt.device))

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("op: %w", types.ErrInvalidInput), http.StatusBadRequest},
		{types.ErrGeofenceNotFound, http.StatusNotFound},
		{types.ErrNoPosition, http.StatusConflict},
		{fmt.Errorf("op: %w: %w", types.ErrMutationFailed, fmt.Errorf("timeout")), http.StatusBadGateway},
		{types.ErrStoreNotSet, http.StatusServiceUnavailable},
		{fmt.Errorf("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
