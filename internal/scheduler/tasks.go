package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskConversationTurn = "intent.conversation.turn"

// TurnEventPayload is one raw classifier observation inside a queued turn.
type TurnEventPayload struct {
	Kind       string     `json:"kind"`
	Strength   *float64   `json:"strength,omitempty"`
	ProductID  string     `json:"productId,omitempty"`
	ObservedAt *time.Time `json:"observedAt,omitempty"`
}

// ConversationTurnPayload carries one inbound turn from the webhook ingress
// to the worker. DeliveryID deduplicates webhook redeliveries.
type ConversationTurnPayload struct {
	ConversationID string             `json:"conversationId"`
	DeliveryID     string             `json:"deliveryId,omitempty"`
	ReceivedAt     time.Time          `json:"receivedAt"`
	Events         []TurnEventPayload `json:"events"`
}

func NewConversationTurnTask(payload ConversationTurnPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConversationTurn, data), nil
}

func ParseConversationTurnPayload(task *asynq.Task) (ConversationTurnPayload, error) {
	var payload ConversationTurnPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ConversationTurnPayload{}, err
	}
	return payload, nil
}
