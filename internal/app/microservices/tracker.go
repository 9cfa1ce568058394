package microservices

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/adapter/http/server"
	wshandler "github.com/Temutjin2k/geopulse/internal/adapter/http/ws"
	mqttadapter "github.com/Temutjin2k/geopulse/internal/adapter/mqtt"
	rabbitadapter "github.com/Temutjin2k/geopulse/internal/adapter/rabbit"
	storeclient "github.com/Temutjin2k/geopulse/internal/adapter/store"
	"github.com/Temutjin2k/geopulse/internal/service/attention"
	"github.com/Temutjin2k/geopulse/internal/service/auth"
	"github.com/Temutjin2k/geopulse/internal/service/tracker"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	"github.com/Temutjin2k/geopulse/pkg/rabbit"
	ws "github.com/Temutjin2k/geopulse/pkg/wsHub"
)

type TrackerService struct {
	mqtt       paho.Client
	rabbit     *rabbit.RabbitMQ
	hub        *ws.ConnectionHub
	session    *tracker.Session
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewTracker(ctx context.Context, cfg config.Config, log logger.Logger) (*TrackerService, error) {
	s := &TrackerService{
		cfg: cfg,
		log: log,
	}

	// render surface
	s.hub = ws.NewConnHub(log)
	renderer := wshandler.NewRenderer(s.hub)
	arbiter := attention.New(attention.ConfigFrom(cfg.Tracker), renderer, log)

	// remote store
	tokens := auth.NewTokenSource(auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log), cfg.Tracker.DeviceID)
	storeClient := storeclient.NewClient(cfg.Store.URL, cfg.Store.Timeout, tokens, log)

	// location provider
	mqttClient, err := mqttadapter.Connect(ctx, cfg.MQTT, log)
	if err != nil {
		log.Error(ctx, "failed to connect to mqtt broker", err)
		return nil, err
	}
	s.mqtt = mqttClient
	provider := mqttadapter.NewProvider(mqttClient, cfg.MQTT.Topic, cfg.Tracker.DeviceID, log)

	// transitions are published when the broker is reachable
	var publisher tracker.EventPublisher
	rabbitClient, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Warn(ctx, "rabbitmq unavailable, transitions will not be published", "error", err.Error())
	} else if err := rabbitadapter.Setup(ctx, rabbitClient, cfg.RabbitMQ.Exchange); err != nil {
		log.Warn(ctx, "failed to declare exchange, transitions will not be published", "error", err.Error())
		_ = rabbitClient.Close(ctx)
	} else {
		s.rabbit = rabbitClient
		publisher = rabbitadapter.NewEventProducer(rabbitClient, cfg.RabbitMQ.Exchange, string(cfg.Mode))
	}

	s.session = tracker.NewSession(tracker.ConfigFrom(cfg.Tracker), tracker.Deps{
		Store:     storeClient,
		Provider:  provider,
		Views:     renderer,
		Publisher: publisher,
	}, arbiter, log)

	s.httpServer, err = server.New(cfg, server.Options{
		Tracker: s.session,
		Hub:     s.hub,
		Status:  func() string { return string(s.session.Status()) },
	}, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

// Start runs the sync scheduler and the HTTP server until a signal arrives or one of them fails.
func (s *TrackerService) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "tracker service closed")
	}()

	if err := s.session.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "initial geofence load failed", "error", err.Error())
	}
	if err := s.session.StartTracking(ctx); err != nil {
		s.log.Warn(ctx, "location tracking is unavailable", "error", err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.session.RunSync(gctx)
	})
	g.Go(func() error {
		return s.httpServer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.httpServer.Stop(context.WithoutCancel(gctx))
	})

	s.log.Info(ctx, "tracker service started", "session_id", s.session.ID())
	return g.Wait()
}

func (s *TrackerService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if s.session != nil {
		if err := s.session.StopTracking(ctx); err != nil {
			s.log.Warn(ctx, "failed to stop tracking", "error", err.Error())
		}
		s.session.Close()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect(250)
	}
	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}
}
