package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/adapter/http/server"
	repo "github.com/Temutjin2k/geopulse/internal/adapter/postgres"
	rabbitadapter "github.com/Temutjin2k/geopulse/internal/adapter/rabbit"
	"github.com/Temutjin2k/geopulse/internal/service/auth"
	storesvc "github.com/Temutjin2k/geopulse/internal/service/store"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	"github.com/Temutjin2k/geopulse/pkg/postgres"
	"github.com/Temutjin2k/geopulse/pkg/rabbit"
	"github.com/Temutjin2k/geopulse/pkg/trm"
)

type StoreService struct {
	postgresDB *postgres.PostgreDB
	rabbit     *rabbit.RabbitMQ
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewStore(ctx context.Context, cfg config.Config, log logger.Logger) (*StoreService, error) {
	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}
	s := &StoreService{
		postgresDB: db,
		cfg:        cfg,
		log:        log,
	}

	if err := repo.Migrate(ctx, db.Pool); err != nil {
		log.Error(ctx, "failed to migrate database", err)
		s.close(ctx)
		return nil, err
	}

	s.rabbit, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		s.close(ctx)
		return nil, err
	}
	if err := rabbitadapter.Setup(ctx, s.rabbit, cfg.RabbitMQ.Exchange); err != nil {
		log.Error(ctx, "failed to declare exchange", err)
		s.close(ctx)
		return nil, err
	}
	producer := rabbitadapter.NewEventProducer(s.rabbit, cfg.RabbitMQ.Exchange, string(cfg.Mode))

	// services
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	storeSvc := storesvc.New(
		repo.NewGeofenceRepo(db.Pool),
		repo.NewLocationRepo(db.Pool),
		repo.NewSettingsRepo(db.Pool),
		producer,
		trm.New(db.Pool),
		log,
	)

	s.httpServer, err = server.New(cfg, server.Options{
		Store: storeSvc,
		Auth:  tokenSvc,
	}, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *StoreService) Start(ctx context.Context) error {
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "store service closed")
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Run(ctx)
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "store service started")
	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *StoreService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Error(ctx, "failed to shutdown HTTP server", err)
		}
	}
	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}
	s.postgresDB.Close()
}
