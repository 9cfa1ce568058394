package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/adapter/http/handler"
	"github.com/Temutjin2k/geopulse/internal/adapter/http/middleware"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/geopulse/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

// Options are the services behind the routes of each mode.
type Options struct {
	// Store mode.
	Store handler.StoreService
	Auth  middleware.DeviceAuth

	// Tracker mode.
	Tracker handler.TrackerService
	Hub     *ws.ConnectionHub
	Status  func() string
}

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health    *handler.Health
	store     *handler.Store
	tracker   *handler.Tracker
	trackerWS *handler.TrackerWS
}

func New(cfg config.Config, opts Options, logger logger.Logger) (*API, error) {
	var addr string
	handlers := &handlers{}

	switch cfg.Mode {
	case types.StoreService:
		if opts.Store == nil || opts.Auth == nil {
			return nil, errors.New("store service and device auth are required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.HTTP.StorePort)
		handlers.store = handler.NewStore(opts.Store, logger)
	case types.TrackerService:
		if opts.Tracker == nil || opts.Hub == nil {
			return nil, errors.New("tracker service and connection hub are required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.HTTP.TrackerPort)
		handlers.tracker = handler.NewTracker(opts.Tracker, logger)
		handlers.trackerWS = handler.NewTrackerWS(opts.Hub, opts.Tracker, logger)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}
	handlers.health = handler.NewHealth(string(cfg.Mode), opts.Status, logger)

	api := &API{
		mode:   cfg.Mode,
		mux:    http.NewServeMux(),
		routes: handlers,
		m:      middleware.NewMiddleware(opts.Auth, logger),
		addr:   addr,
		cfg:    cfg,
		log:    logger,
	}

	setupRoutes(api.mux, api.routes, api.m, api.mode, logger)

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

// Handler returns the routed handler with all middlewares applied.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// Run serves HTTP until Stop is called. It returns nil on graceful shutdown.
func (a *API) Run(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, "http_server_start")
	a.log.Info(ctx, "started http server", "address", a.addr)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// withMiddleware applies middlewares to the mux. Metrics must wrap the mux directly
// to see the matched route pattern.
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(string(a.mode))(a.mux))))
}
