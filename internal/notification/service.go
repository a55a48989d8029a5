// Package notification routes intent events to the sales team. The current
// channel is a WhatsApp alert to the configured agent number.
package notification

import (
	"context"

	"wasales_backend/internal/events"
	"wasales_backend/internal/intent/domain"
	"wasales_backend/internal/whatsapp"
	"wasales_backend/platform/config"
	"wasales_backend/platform/logger"
)

// actionable lists the recommended actions worth interrupting an agent for.
var actionable = map[string]struct{}{
	domain.ActionHandover:        {},
	domain.ActionHandleObjection: {},
	domain.ActionPresentOffer:    {},
	domain.ActionCloseSale:       {},
}

// Service sends agent alerts when a conversation's recommended action moves
// to something actionable.
type Service struct {
	client     *whatsapp.Client
	agentPhone string
	log        *logger.Logger
}

// New creates the notification service. client may be nil when no WhatsApp
// gateway is configured; alerts are then logged only.
func New(client *whatsapp.Client, cfg config.NotificationConfig, log *logger.Logger) *Service {
	return &Service{
		client:     client,
		agentPhone: cfg.GetAgentAlertPhone(),
		log:        log,
	}
}

// Subscribe registers the service on the event bus.
func (s *Service) Subscribe(bus events.Bus) {
	bus.Subscribe(events.RecommendedActionChanged{}.EventName(), events.HandlerFunc(s.handleActionChanged))
}

func (s *Service) handleActionChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RecommendedActionChanged)
	if !ok {
		return nil
	}

	if _, ok := actionable[e.NewAction]; !ok {
		return nil
	}

	s.log.Info("recommended action changed",
		"conversation_id", e.ConversationID,
		"previous_action", e.PreviousAction,
		"new_action", e.NewAction,
		"score", e.Score,
		"stage", e.Stage,
	)

	if s.client == nil || s.agentPhone == "" {
		return nil
	}

	if err := s.client.SendAgentAlert(ctx, s.agentPhone, e.ConversationID, e.Stage, e.Score, e.NewAction); err != nil {
		// Alerting is best-effort; the turn has already been persisted.
		s.log.Error("agent alert failed", "error", err, "conversation_id", e.ConversationID)
	}
	return nil
}
