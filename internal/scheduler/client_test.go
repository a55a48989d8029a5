package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int { return 1 }

func TestNewClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without a redis url")
	}
}

func TestEnqueueConversationTurn_DeduplicatesByDeliveryID(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "intent-turns"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	defer client.Close()

	payload := ConversationTurnPayload{
		ConversationID: "conv-1",
		DeliveryID:     "delivery-42",
		ReceivedAt:     time.Now(),
		Events:         []TurnEventPayload{{Kind: "greeting"}},
	}

	if err := client.EnqueueConversationTurn(context.Background(), payload); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}
	// A webhook redelivery carries the same delivery id and must be a no-op.
	if err := client.EnqueueConversationTurn(context.Background(), payload); err != nil {
		t.Fatalf("redelivery enqueue failed: %v", err)
	}

	opt, err := redisClientOpt(cfg.redisURL, false)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("intent-turns")
	if err != nil {
		t.Fatalf("failed to list pending tasks: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task after redelivery, got %d", len(pending))
	}
	if pending[0].ID != "turn:delivery-42" {
		t.Fatalf("unexpected task id %q", pending[0].ID)
	}

	parsed, err := ParseConversationTurnPayload(asynq.NewTask(pending[0].Type, pending[0].Payload))
	if err != nil {
		t.Fatalf("failed to parse queued payload: %v", err)
	}
	if parsed.ConversationID != "conv-1" {
		t.Fatalf("unexpected conversation id %q", parsed.ConversationID)
	}
}

func TestEnqueueConversationTurn_DistinctDeliveries(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "intent-turns"})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	defer client.Close()

	for _, id := range []string{"a", "b"} {
		err := client.EnqueueConversationTurn(context.Background(), ConversationTurnPayload{
			ConversationID: "conv-1",
			DeliveryID:     id,
			ReceivedAt:     time.Now(),
		})
		if err != nil {
			t.Fatalf("enqueue %s failed: %v", id, err)
		}
	}

	opt, err := redisClientOpt("redis://"+mr.Addr(), false)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("intent-turns")
	if err != nil {
		t.Fatalf("failed to list pending tasks: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(pending))
	}
}
