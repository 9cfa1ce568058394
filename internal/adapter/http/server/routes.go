package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Temutjin2k/geopulse/docs"
	"github.com/Temutjin2k/geopulse/internal/adapter/http/middleware"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, mode types.ServiceMode, log logger.Logger) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux, mode, log)
	setupMetricsRoute(mux)

	switch mode {
	case types.StoreService:
		setupStoreRoutes(mux, routes, m)
	case types.TrackerService:
		setupTrackerRoutes(mux, routes)
	}
}

// setupStoreRoutes setups routes for the store service
func setupStoreRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /api", m.RequireDevice(routes.store.Handle)) // Single action endpoint
}

// setupTrackerRoutes setups routes for the tracker
func setupTrackerRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("GET /v1/state", routes.tracker.State)                           // Snapshot, attention and geofences
	mux.HandleFunc("POST /v1/refresh", routes.tracker.Refresh)                      // Reload geofences from the store
	mux.HandleFunc("POST /v1/geofences", routes.tracker.CreateGeofence)             // Create a geofence
	mux.HandleFunc("PUT /v1/geofences/{id}", routes.tracker.UpdateGeofence)         // Edit a geofence
	mux.HandleFunc("DELETE /v1/geofences/{id}", routes.tracker.DeleteGeofence)      // Delete a geofence
	mux.HandleFunc("POST /v1/geofences/{id}/toggle", routes.tracker.ToggleGeofence) // Enable or disable a geofence
	mux.HandleFunc("POST /v1/check-in", routes.tracker.CheckIn)                     // Check in at the current position
	mux.HandleFunc("POST /v1/sos", routes.tracker.SendSOS)                          // Send an SOS
	mux.HandleFunc("PUT /v1/settings", routes.tracker.SetSettings)                  // Set notify mode
	mux.HandleFunc("POST /v1/attention/expand", routes.tracker.ToggleExpand)        // Expand or collapse the tracking view
	mux.HandleFunc("GET /ws", routes.trackerWS.HandleWS)                            // Render surface
}

// setupSwaggerRoutes configures Swagger UI endpoints based on service mode
func setupSwaggerRoutes(mux *http.ServeMux, mode types.ServiceMode, log logger.Logger) {
	var instanceName string

	switch mode {
	case types.StoreService:
		instanceName = docs.StoreInstance
	case types.TrackerService:
		instanceName = docs.TrackerInstance
	default:
		log.Warn(wrap.WithAction(context.Background(), "setup swagger routes"), "unknown service mode for swagger setup", "mode", mode)
		return
	}

	mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName(instanceName)))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
