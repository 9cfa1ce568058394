package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

type StoreService interface {
	Handle(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error)
}

type Store struct {
	service  StoreService
	validate *validator.Validate
	l        logger.Logger
}

func NewStore(service StoreService, l logger.Logger) *Store {
	return &Store{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		l:        l,
	}
}

// Handle godoc
// @Summary      Run a store action
// @Description  Single action endpoint. Every action answers with the device's geofences annotated with distance from the request origin.
// @Tags         store
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.StoreRequest true "Action and parameters"
// @Success      200 {object} models.StoreResponse
// @Failure      400 {object} map[string]interface{} "Bad request"
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Failure      404 {object} map[string]interface{} "Geofence not found"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api [post]
func (h *Store) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "store_api")

	device := models.DeviceFromContext(ctx)
	if device == nil {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	var req models.StoreRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.l.Warn(ctx, "invalid request data", "action", req.Action)
		failedValidationResponse(w, validationErrors(err))
		return
	}

	list, err := h.service.Handle(ctx, device.DeviceID, req)
	if err != nil {
		code := GetCode(err)
		if code >= http.StatusInternalServerError {
			h.l.Error(wrap.ErrorCtx(ctx, err), "store action failed", err, "action", req.Action)
		} else {
			h.l.Warn(ctx, "store action rejected", "action", req.Action, "error", err.Error())
		}
		errorResponse(w, code, err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, models.StoreResponse{Geofences: list}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
