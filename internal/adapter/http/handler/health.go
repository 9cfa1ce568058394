package handler

import (
	"net/http"

	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	status      func() string
	log         logger.Logger
}

// NewHealth creates the health handler. status is optional and reports the tracking status.
func NewHealth(serviceName string, status func() string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		status:      status,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service
// @Tags         Health
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	info := map[string]string{
		"service-name": a.serviceName,
	}
	if a.status != nil {
		info["tracking-status"] = a.status()
	}

	response := envelope{
		"status":      "available",
		"system_info": info,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
