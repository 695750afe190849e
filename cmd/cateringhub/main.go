package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cateringhub/internal/app/middleware"
	appoutbox "cateringhub/internal/app/outbox"
	"cateringhub/internal/app/service"
	"cateringhub/internal/app/uow"
	"cateringhub/internal/infra/broker/kafka"
	redisstore "cateringhub/internal/infra/cache/redis"
	"cateringhub/internal/infra/config"
	mongostore "cateringhub/internal/infra/db/mongo"
	"cateringhub/internal/infra/delivery"
	"cateringhub/internal/infra/fixtures"
	ginserver "cateringhub/internal/infra/http/gin"
	"cateringhub/internal/infra/inbox"
	"cateringhub/internal/infra/obs"
	infraoutbox "cateringhub/internal/infra/outbox"
	"cateringhub/internal/infra/security"
	"cateringhub/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("dotenv load failed", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLoggerWithLevel(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	go func() {
		if err := app.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox relay stopped", "error", err)
		}
	}()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "kafka", cfg.KafkaEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type outboxStore interface {
	appoutbox.Outbox
	infraoutbox.Store
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	relay    *infraoutbox.Worker
	closers  []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.HealthHandlers{Checks: map[string]obs.Check{}, Timeout: 2 * time.Second}}

	var (
		factory     uow.UoWFactory
		outbox      outboxStore
		seeder      fixtures.Seeder
		inboxStore  delivery.Inbox
		idempotency middleware.IdempotencyStore
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		app.health.Checks["mongo"] = client.Ping
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		mongoOutbox, err := infraoutbox.NewMongoStore(ctx, client.DB)
		if err != nil {
			return nil, fmt.Errorf("mongo outbox: %w", err)
		}
		mongoInbox, err := inbox.NewMongoStore(ctx, client.DB, "cateringhub-inprocess")
		if err != nil {
			return nil, fmt.Errorf("mongo inbox: %w", err)
		}
		mongoIdem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("mongo idempotency: %w", err)
		}
		factory, outbox, seeder, inboxStore, idempotency = mongostore.Factory{DB: client.DB}, mongoOutbox, client, mongoInbox, mongoIdem
	default:
		store := memory.NewStore()
		factory, outbox, seeder, inboxStore, idempotency = store, store.Outbox(), store, inbox.NewMemoryStore(), memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	if cfg.RedisAddr != "" {
		rdb, err := redisstore.NewClient(ctx, redisstore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		app.health.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		idempotency = redisstore.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
	}

	if err := seedCatalog(ctx, cfg.CatalogFixtures, seeder, logger); err != nil {
		return nil, err
	}

	svc := service.New(service.Deps{
		UoW:             factory,
		Outbox:          outbox,
		Idempotency:     idempotency,
		ReferencePrefix: cfg.BookingReferencePrefix,
		Logger:          logger,
	})

	app.relay = &infraoutbox.Worker{
		Store:       outbox,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewProducerConfig("cateringhub-api"))
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		app.relay.Producer = producer
	} else {
		logger.Info("no kafka brokers configured, delivering notifications in-process")
		app.relay.Producer = delivery.LocalProducer{Handler: delivery.Handler{
			UoW:    factory,
			Inbox:  inboxStore,
			Sender: delivery.LogSender{Logger: logger},
			Logger: logger,
		}}
	}

	auth := ginserver.AuthMiddleware{DevHeaders: cfg.JWTAllowDevHeaders, Logger: logger}
	if cfg.JWTSecret != "" {
		auth.Tokens = security.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	}
	if cfg.JWTAllowDevHeaders {
		logger.Warn("development identity headers enabled")
	}

	app.handlers = ginserver.Handlers{
		Booking:        ginserver.BookingHandler{Commands: svc.Commands, Queries: svc.Queries, Logger: logger},
		VendorBooking:  ginserver.VendorBookingHandler{Commands: svc.Commands, Queries: svc.Queries, Logger: logger},
		Notification:   ginserver.NotificationHandler{Queries: svc.Queries, Logger: logger},
		AuthMiddleware: auth.Handle,
	}
	return app, nil
}

func seedCatalog(ctx context.Context, path string, seeder fixtures.Seeder, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	catalog, err := fixtures.Load(path)
	if err != nil {
		return fmt.Errorf("load catalog fixtures: %w", err)
	}
	if err := seeder.SeedCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog fixtures imported",
		"path", path,
		"vendors", len(catalog.Vendors),
		"packages", len(catalog.Packages),
		"events", len(catalog.Events),
	)
	return nil
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
}
