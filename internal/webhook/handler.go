package webhook

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wasales_backend/internal/scheduler"
	"wasales_backend/platform/httpkit"
	"wasales_backend/platform/logger"
)

// TurnEventRequest is one classifier observation in a webhook delivery.
type TurnEventRequest struct {
	Kind       string     `json:"kind" binding:"required"`
	Strength   *float64   `json:"strength" binding:"omitempty,min=0,max=1"`
	ProductID  string     `json:"productId"`
	ObservedAt *time.Time `json:"observedAt"`
}

// TurnRequest is the webhook payload delivered by the external classifier
// for one inbound conversation turn.
type TurnRequest struct {
	ConversationID string             `json:"conversationId" binding:"required"`
	DeliveryID     string             `json:"deliveryId"`
	Events         []TurnEventRequest `json:"events" binding:"required,dive"`
}

// Handler accepts classifier turn deliveries and queues them for the
// worker. The webhook never applies a turn inline; ingress stays fast and
// redeliveries are deduplicated by the queue.
type Handler struct {
	enqueuer scheduler.TurnEnqueuer
	log      *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(enqueuer scheduler.TurnEnqueuer, log *logger.Logger) *Handler {
	return &Handler{enqueuer: enqueuer, log: log}
}

// HandleTurn queues one delivered turn.
// POST /api/v1/webhook/turns
func (h *Handler) HandleTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	deliveryID := req.DeliveryID
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	payload := scheduler.ConversationTurnPayload{
		ConversationID: req.ConversationID,
		DeliveryID:     deliveryID,
		ReceivedAt:     time.Now().UTC(),
		Events:         make([]scheduler.TurnEventPayload, 0, len(req.Events)),
	}
	for _, e := range req.Events {
		payload.Events = append(payload.Events, scheduler.TurnEventPayload{
			Kind:       e.Kind,
			Strength:   e.Strength,
			ProductID:  e.ProductID,
			ObservedAt: e.ObservedAt,
		})
	}

	if err := h.enqueuer.EnqueueConversationTurn(c.Request.Context(), payload); err != nil {
		h.log.Error("failed to enqueue conversation turn", "error", err, "conversation_id", req.ConversationID)
		httpkit.Error(c, http.StatusServiceUnavailable, "failed to queue turn", nil)
		return
	}

	httpkit.Accepted(c, gin.H{"deliveryId": deliveryID})
}
