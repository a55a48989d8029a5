package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wasales_backend/internal/events"
	"wasales_backend/internal/intent"
	"wasales_backend/internal/notification"
	"wasales_backend/internal/scheduler"
	"wasales_backend/internal/whatsapp"
	"wasales_backend/platform/config"
	"wasales_backend/platform/db"
	"wasales_backend/platform/logger"
	"wasales_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting turn worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	if cfg.RedisURL == "" {
		panic("REDIS_URL is required for the turn worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := db.NewPool(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	// The worker shares the intent module wiring with the API; it needs no
	// product reader because it never renders responses.
	intentModule, err := intent.NewModule(pool, eventBus, nil, validator.New(), cfg, log)
	if err != nil {
		log.Error("failed to initialize intent module", "error", err)
		panic("failed to initialize intent module: " + err.Error())
	}

	waClient := whatsapp.NewClient(cfg, log)
	notification.New(waClient, cfg, log).Subscribe(eventBus)

	worker, err := scheduler.NewWorker(cfg, intentModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize turn worker", "error", err)
		panic("failed to initialize turn worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("turn worker shut down cleanly")
}
