package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-listing-notify/internal/application/device"
	"github.com/go-listing-notify/internal/application/dispatch"
	"github.com/go-listing-notify/internal/application/notification"
	"github.com/go-listing-notify/internal/application/resolver"
	"github.com/go-listing-notify/internal/application/submission"
	"github.com/go-listing-notify/internal/config"
	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/infrastructure/dynamo"
	"github.com/go-listing-notify/internal/infrastructure/fcm"
	jwtinfra "github.com/go-listing-notify/internal/infrastructure/jwt"
	"github.com/go-listing-notify/internal/infrastructure/kafka"
	"github.com/go-listing-notify/internal/infrastructure/memory"
	mongoinfra "github.com/go-listing-notify/internal/infrastructure/mongo"
	"github.com/go-listing-notify/internal/infrastructure/sns"
	"github.com/go-listing-notify/internal/obs"
	transporthttp "github.com/go-listing-notify/internal/transport/http"
	"go.uber.org/zap"
)

// backend bundles the three stores selected by STORE_BACKEND.
type backend struct {
	notifications notification.Store
	devices       deviceStore
	directory     resolver.Directory
	health        func(context.Context) error
	close         func(context.Context) error
}

type deviceStore interface {
	GetByToken(ctx context.Context, token string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.Device, error)
	Delete(ctx context.Context, recipientID, deviceID string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.LogLevel,
		Pretty: cfg.AppEnv == "development",
		App:    "listing-notify",
		Env:    cfg.AppEnv,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store backend", zap.String("backend", cfg.Backend), zap.Error(err))
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Fatal("jwt provider", zap.Error(err))
	}

	notifSvc := notification.NewService(notification.ServiceDeps{
		Store:           store.notifications,
		Log:             logger,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	deviceSvc := device.NewService(store.devices, logger)
	submitSvc := submission.NewService(submission.ServiceDeps{
		Resolver:        resolver.NewService(store.directory, recipientPolicy(cfg), logger),
		Dispatcher:      dispatch.NewService(pushTransport(ctx, cfg.Push, logger), logger),
		Notifications:   notifSvc,
		AndroidSound:    cfg.Push.AndroidSound,
		IOSSound:        cfg.Push.IOSSound,
		DispatchTimeout: cfg.DispatchTimeout,
		StoreTimeout:    cfg.StoreTimeout,
		Log:             logger,
	})

	router, limiter := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Notifications: notifSvc,
		Devices:       deviceSvc,
		Submissions:   submitSvc,
		JWTProvider:   jwtProvider,
		Health:        store.health,
		Log:           logger,
	})
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DispatchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metrics := obs.BootstrapMetricsServer(cfg.MetricsAddr, store.health, logger)

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topic:   cfg.Kafka.Topic,
			Logger:  logger,
		})
		defer func() { _ = consumer.Close() }()
		go func() {
			if err := consumer.Consume(ctx, kafka.ListingHandler(submitSvc, logger)); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("listing consumer stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv),
			zap.String("backend", cfg.Backend), zap.String("push", cfg.Push.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	_ = metrics.Shutdown(shutdownCtx)
	if store.close != nil {
		if err := store.close(shutdownCtx); err != nil {
			logger.Warn("close store backend", zap.Error(err))
		}
	}
	logger.Info("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, logger)
		devices := dynamo.NewDeviceRepo(client, cfg.DynamoTables.Devices)
		return &backend{
			notifications: dynamo.NewNotificationRepo(client, cfg.DynamoTables.Notifications),
			devices:       devices,
			directory:     dynamo.NewRecipientRepo(client, cfg.DynamoTables.Recipients, cfg.RecipientRole, devices),
			health:        dynamo.Healthcheck(client, cfg.DynamoTables.Notifications),
		}, nil

	case config.BackendMongo:
		db, err := mongoinfra.NewDatabase(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		devices := mongoinfra.NewDeviceRepo(db)
		return &backend{
			notifications: mongoinfra.NewNotificationRepo(db),
			devices:       devices,
			directory:     mongoinfra.NewRecipientRepo(db, cfg.RecipientRole, devices),
			health:        mongoinfra.Healthcheck(db),
			close:         db.Client().Disconnect,
		}, nil

	default:
		logger.Warn("using in-memory store; data is lost on restart")
		devices := memory.NewDeviceStore()
		return &backend{
			notifications: memory.NewNotificationStore(),
			devices:       devices,
			directory:     memory.NewDirectory(cfg.RecipientRole, devices),
			health:        func(context.Context) error { return nil },
		}, nil
	}
}

// pushTransport builds the configured transport once. A transport that cannot
// be built leaves the service running with every dispatch failing.
func pushTransport(ctx context.Context, cfg config.Push, logger *zap.Logger) dispatch.Transport {
	var (
		t   dispatch.Transport
		err error
	)
	switch cfg.Provider {
	case config.PushFCM:
		t, err = fcm.NewTransport(ctx, cfg)
	case config.PushSNS:
		t, err = sns.NewTransport(ctx, cfg)
	default:
		return dispatch.LogTransport{Log: logger}
	}
	if err != nil {
		logger.Error("push transport unavailable", zap.String("provider", cfg.Provider), zap.Error(err))
		return dispatch.Unavailable{Err: err}
	}
	return t
}

func recipientPolicy(cfg *config.Config) resolver.Policy {
	policies := []resolver.Policy{resolver.ActiveRecipients}
	if cfg.RequireDeviceToken {
		policies = append(policies, resolver.WithDeviceToken)
	}
	if cfg.MatchRegion {
		policies = append(policies, resolver.SameRegion)
	}
	return resolver.All(policies...)
}
