// @title        Roots Admin Console API
// @version      1.0
// @description  Backend-for-frontend of the Roots admin console.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roots/admin-console/internal/api"
	"github.com/roots/admin-console/internal/api/metrics"
	"github.com/roots/admin-console/internal/api/middleware"
	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/service"
	"github.com/roots/admin-console/internal/infrastructure/config"
	mongodb "github.com/roots/admin-console/internal/infrastructure/db/mongo"
	redisdb "github.com/roots/admin-console/internal/infrastructure/db/redis"
	"github.com/roots/admin-console/internal/infrastructure/queue"
	"github.com/roots/admin-console/internal/infrastructure/remote"
	"github.com/roots/admin-console/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "admin-console",
		Version: version,
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("api", cfg.API.BaseURL).Msg("starting admin console")

	baseURL, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("parse API_BASE_URL: %w", err)
	}

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.Mongo.AppName,
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Audit log ---
	activityRepo := mongodb.NewActivityRepository(db)
	if err := activityRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure activity indexes: %w", err)
	}
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activityRepo, logger.Component("activity"))
	// The audit queue outlives the signal context so requests still draining
	// during HTTP shutdown can record their decisions.
	queueCtx, stopQueue := context.WithCancel(context.WithoutCancel(ctx))
	defer stopQueue()
	dispatcher.Start(queueCtx)
	activity := service.NewActivityService(activityRepo, countingQueue{dispatcher}, log)

	// --- Remote API ---
	remoteHooks := metrics.RemoteHooks()
	transport := remote.NewTransport(nil, remote.BreakerConfig{
		Name:         "roots-api",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		FailureRatio: cfg.Breaker.FailureRatio,
		MinRequests:  cfg.Breaker.MinRequests,
	}, remoteHooks, logger.Component("remote"))
	newClient := func(jar http.CookieJar) ports.AdminAPI {
		return remote.NewClient(remote.Config{
			BaseURL:   baseURL,
			Timeout:   cfg.API.Timeout,
			Transport: transport,
			Hooks:     remoteHooks,
		}, jar, logger.Component("remote"))
	}

	// --- Workspaces and services ---
	workspaces := service.NewWorkspaceManager(newClient, redisdb.NewSessionRepository(rdb), service.WorkspaceOptions{
		BaseURL:    baseURL,
		SessionTTL: cfg.SessionTTL,
		Cache: query.Options{
			StaleTime: cfg.Query.StaleTime,
			Retry:     cfg.Query.Retry,
			Hooks:     metrics.QueryHooks(),
		},
		Mutations: metrics.MutationHooks(),
		InboxSize: cfg.Query.InboxSize,
	}, logger.Component("workspace"))
	metrics.RegisterWorkspaceGauge(workspaces.Len)
	go workspaces.Run(ctx, cfg.Query.SweepInterval, cfg.Query.WorkspaceIdle)

	e := api.NewRouter(api.Dependencies{
		Workspaces:    workspaces,
		Auth:          service.NewAuthService(workspaces, log),
		Directory:     service.NewDirectoryService(cfg.API.UsersPageSize, log),
		Moderation:    service.NewModerationService(cfg.API.RequestsPageSize, activity, log),
		PaymentConfig: service.NewPaymentConfigService(activity, log),
		Activity:      activity,
		Mongo:         db,
		Redis:         rdb,
		Breaker:       transport,
		Cookie: middleware.CookieConfig{
			Secret: cfg.SessionSecret,
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
		},
		UploadMaxBytes: cfg.API.UploadMaxBytes,
		Log:            log,
	})

	// --- Serve until signalled ---
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down admin console")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	stopQueue()
	dispatcher.Wait()

	log.Info().Msg("admin console stopped")
	return nil
}

// countingQueue counts audit entries the dispatcher had no room for.
type countingQueue struct {
	*queue.Dispatcher
}

func (q countingQueue) Enqueue(a domain.Activity) bool {
	if q.Dispatcher.Enqueue(a) {
		return true
	}
	metrics.ActivityDroppedTotal.Inc()
	return false
}
