package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

type TrackerService interface {
	Snapshot() models.TrackerSnapshot
	Attention() models.AttentionState
	Geofences() []models.Geofence
	Refresh(ctx context.Context) error
	CreateGeofence(ctx context.Context, in models.GeofenceInput) error
	UpdateGeofence(ctx context.Context, in models.GeofenceInput) error
	DeleteGeofence(ctx context.Context, id string) error
	SetGeofenceEnabled(ctx context.Context, id string, enabled bool) error
	CheckIn(ctx context.Context) error
	SendSOS(ctx context.Context, message string) error
	SetNotifyMode(ctx context.Context, mode types.NotifyMode) error
	ToggleNotifyMode(ctx context.Context) error
	ToggleExpand(ctx context.Context) bool
}

type (
	toggleRequest struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}

	sosRequest struct {
		Message string `json:"message" validate:"max=500"`
	}

	settingsRequest struct {
		NotifyMode types.NotifyMode `json:"notifyMode" validate:"required,oneof=family private"`
	}

	// stateResponse is the full tracker state shown to a user.
	stateResponse struct {
		Snapshot  models.TrackerSnapshot `json:"snapshot"`
		Attention models.AttentionState  `json:"attention"`
		Geofences []models.Geofence      `json:"geofences"`
	}
)

type Tracker struct {
	service  TrackerService
	validate *validator.Validate
	l        logger.Logger
}

func NewTracker(service TrackerService, l logger.Logger) *Tracker {
	return &Tracker{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		l:        l,
	}
}

// State godoc
// @Summary      Tracker state
// @Description  Current tracking snapshot, attention slot and geofence list
// @Tags         tracker
// @Produce      json
// @Success      200 {object} stateResponse
// @Router       /v1/state [get]
func (h *Tracker) State(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_state")
	h.writeState(ctx, w, http.StatusOK)
}

// Refresh godoc
// @Summary      Refresh geofences
// @Tags         tracker
// @Produce      json
// @Success      200 {object} stateResponse
// @Failure      502 {object} map[string]interface{} "Store unavailable"
// @Router       /v1/refresh [post]
func (h *Tracker) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_refresh")

	if err := h.service.Refresh(ctx); err != nil {
		h.fail(ctx, w, "failed to refresh geofences", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// CreateGeofence godoc
// @Summary      Create a geofence
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        request body models.GeofenceInput true "Geofence definition"
// @Success      201 {object} stateResponse
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Failure      502 {object} map[string]interface{} "Store call failed"
// @Router       /v1/geofences [post]
func (h *Tracker) CreateGeofence(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_create_geofence")

	var in models.GeofenceInput
	if !h.decode(ctx, w, r, &in) {
		return
	}
	in.ID = ""

	if err := h.service.CreateGeofence(ctx, in); err != nil {
		h.fail(ctx, w, "failed to create geofence", err)
		return
	}
	h.writeState(ctx, w, http.StatusCreated)
}

// UpdateGeofence godoc
// @Summary      Edit a geofence
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        id path string true "Geofence ID"
// @Param        request body models.GeofenceInput true "Geofence definition"
// @Success      200 {object} stateResponse
// @Failure      404 {object} map[string]interface{} "Geofence not found"
// @Failure      502 {object} map[string]interface{} "Store call failed"
// @Router       /v1/geofences/{id} [put]
func (h *Tracker) UpdateGeofence(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithGeofenceID(wrap.WithAction(r.Context(), "tracker_update_geofence"), r.PathValue("id"))

	var in models.GeofenceInput
	if !h.decode(ctx, w, r, &in) {
		return
	}
	in.ID = r.PathValue("id")

	if err := h.service.UpdateGeofence(ctx, in); err != nil {
		h.fail(ctx, w, "failed to update geofence", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// DeleteGeofence godoc
// @Summary      Delete a geofence
// @Tags         tracker
// @Produce      json
// @Param        id path string true "Geofence ID"
// @Success      200 {object} stateResponse
// @Failure      502 {object} map[string]interface{} "Store call failed"
// @Router       /v1/geofences/{id} [delete]
func (h *Tracker) DeleteGeofence(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithGeofenceID(wrap.WithAction(r.Context(), "tracker_delete_geofence"), r.PathValue("id"))

	if err := h.service.DeleteGeofence(ctx, r.PathValue("id")); err != nil {
		h.fail(ctx, w, "failed to delete geofence", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// ToggleGeofence godoc
// @Summary      Enable or disable a geofence
// @Description  Applied optimistically and reverted if the store rejects it
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        id path string true "Geofence ID"
// @Param        request body toggleRequest true "New enabled flag"
// @Success      200 {object} stateResponse
// @Failure      404 {object} map[string]interface{} "Geofence not found"
// @Failure      502 {object} map[string]interface{} "Store call failed"
// @Router       /v1/geofences/{id}/toggle [post]
func (h *Tracker) ToggleGeofence(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithGeofenceID(wrap.WithAction(r.Context(), "tracker_toggle_geofence"), r.PathValue("id"))

	var req toggleRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if err := h.service.SetGeofenceEnabled(ctx, r.PathValue("id"), *req.Enabled); err != nil {
		h.fail(ctx, w, "failed to toggle geofence", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// CheckIn godoc
// @Summary      Check in at the current position
// @Tags         tracker
// @Produce      json
// @Success      200 {object} stateResponse
// @Failure      409 {object} map[string]interface{} "No position yet"
// @Router       /v1/check-in [post]
func (h *Tracker) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_check_in")

	if err := h.service.CheckIn(ctx); err != nil {
		h.fail(ctx, w, "failed to check in", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// SendSOS godoc
// @Summary      Send an SOS
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        request body sosRequest true "SOS message"
// @Success      200 {object} stateResponse
// @Router       /v1/sos [post]
func (h *Tracker) SendSOS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_sos")

	var req sosRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if err := h.service.SendSOS(ctx, req.Message); err != nil {
		h.fail(ctx, w, "failed to send sos", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// SetSettings godoc
// @Summary      Set the notify mode
// @Tags         tracker
// @Accept       json
// @Produce      json
// @Param        request body settingsRequest true "Notify mode"
// @Success      200 {object} stateResponse
// @Router       /v1/settings [put]
func (h *Tracker) SetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_settings")

	var req settingsRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if err := h.service.SetNotifyMode(ctx, req.NotifyMode); err != nil {
		h.fail(ctx, w, "failed to save settings", err)
		return
	}
	h.writeState(ctx, w, http.StatusOK)
}

// ToggleExpand godoc
// @Summary      Expand or collapse the tracking view
// @Tags         tracker
// @Produce      json
// @Success      200 {object} map[string]bool
// @Router       /v1/attention/expand [post]
func (h *Tracker) ToggleExpand(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "tracker_toggle_expand")

	expanded := h.service.ToggleExpand(ctx)
	if err := writeJSON(w, http.StatusOK, envelope{"expanded": expanded}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
	}
}

func (h *Tracker) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSON(w, r, dst); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, validationErrors(err))
		return false
	}
	return true
}

func (h *Tracker) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := GetCode(err)
	if code >= http.StatusInternalServerError {
		h.l.Error(wrap.ErrorCtx(ctx, err), msg, err)
	} else {
		h.l.Warn(ctx, msg, "error", err.Error())
	}
	errorResponse(w, code, err.Error())
}

func (h *Tracker) writeState(ctx context.Context, w http.ResponseWriter, status int) {
	resp := stateResponse{
		Snapshot:  h.service.Snapshot(),
		Attention: h.service.Attention(),
		Geofences: h.service.Geofences(),
	}
	if resp.Geofences == nil {
		resp.Geofences = []models.Geofence{}
	}

	if err := writeJSON(w, status, resp, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
