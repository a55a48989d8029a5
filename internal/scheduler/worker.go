package scheduler

import (
	"context"
	"fmt"

	"wasales_backend/internal/intent/domain"
	intentservice "wasales_backend/internal/intent/service"
	"wasales_backend/platform/config"
	"wasales_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes queued conversation turns and applies them through the
// intent service. Per-conversation serialization happens inside the service;
// the worker only provides concurrency across conversations.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	intent *intentservice.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, intent *intentservice.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		intent: intent,
		log:    log,
	}

	mux.HandleFunc(TaskConversationTurn, w.handleConversationTurn)

	return w, nil
}

func (w *Worker) handleConversationTurn(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseConversationTurnPayload(task)
	if err != nil {
		return err
	}

	if payload.ConversationID == "" {
		w.log.Warn("queued turn without conversation id dropped", "delivery_id", payload.DeliveryID)
		return nil
	}

	events := make([]domain.RawSignalEvent, 0, len(payload.Events))
	for _, e := range payload.Events {
		observedAt := payload.ReceivedAt
		if e.ObservedAt != nil && !e.ObservedAt.IsZero() {
			observedAt = *e.ObservedAt
		}
		events = append(events, domain.RawSignalEvent{
			Kind:       e.Kind,
			Strength:   e.Strength,
			ProductID:  e.ProductID,
			ObservedAt: observedAt,
		})
	}

	// Persistence failures propagate so asynq retries the turn; the engine
	// itself never retries.
	_, err = w.intent.ApplyTurn(ctx, payload.ConversationID, events)
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("turn worker stopped", "error", err)
	}
}
