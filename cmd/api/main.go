package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wasales_backend/internal/adapters"
	"wasales_backend/internal/catalog"
	"wasales_backend/internal/events"
	apphttp "wasales_backend/internal/http"
	"wasales_backend/internal/http/router"
	"wasales_backend/internal/intent"
	"wasales_backend/internal/notification"
	"wasales_backend/internal/scheduler"
	"wasales_backend/internal/webhook"
	"wasales_backend/internal/whatsapp"
	"wasales_backend/platform/config"
	"wasales_backend/platform/db"
	"wasales_backend/platform/logger"
	"wasales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Turn queue client; nil when redis is not configured, which disables
	// the webhook ingress and leaves only the synchronous API.
	var turnQueue *scheduler.Client
	if cfg.RedisURL != "" {
		turnQueue, err = scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize turn queue client", "error", err)
			panic("failed to initialize turn queue client: " + err.Error())
		}
		defer func() { _ = turnQueue.Close() }()
		log.Info("turn queue client initialized", "queue", cfg.AsynqQueueName)
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool)
	productReader := adapters.NewCatalogProductReader(catalogModule.Service())

	intentModule, err := intent.NewModule(pool, eventBus, productReader, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize intent module", "error", err)
		panic("failed to initialize intent module: " + err.Error())
	}

	modules := []apphttp.Module{intentModule, catalogModule}
	if turnQueue != nil {
		modules = append(modules, webhook.NewModule(cfg, turnQueue, log))
	}

	// Agent alerting on recommended-action changes
	waClient := whatsapp.NewClient(cfg, log)
	notification.New(waClient, cfg, log).Subscribe(eventBus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules:  modules,
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	log.Info("server listening", "addr", cfg.HTTPAddr)
	if err := group.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server shut down cleanly")
}

// withRetry runs op up to attempts times with a fixed delay, respecting
// context cancellation between attempts.
func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, delay time.Duration, op func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		log.Warn("operation failed, retrying", "operation", name, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
