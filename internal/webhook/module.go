// Package webhook provides the classifier ingress module: the authenticated,
// rate-limited endpoint through which the external signal classifier pushes
// conversation turns.
package webhook

import (
	apphttp "wasales_backend/internal/http"
	"wasales_backend/internal/scheduler"
	"wasales_backend/platform/config"
	"wasales_backend/platform/httpkit"
	"wasales_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Module is the webhook ingress module implementing http.Module.
type Module struct {
	handler *Handler
	cfg     config.WebhookConfig
	limiter *httpkit.KeyRateLimiter
}

// NewModule creates and initializes the webhook module.
func NewModule(cfg config.WebhookConfig, enqueuer scheduler.TurnEnqueuer, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(enqueuer, log),
		cfg:     cfg,
		limiter: httpkit.NewKeyRateLimiter(rate.Limit(cfg.GetWebhookRatePerSecond()), cfg.GetWebhookRateBurst(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	group.Use(m.limiter.Middleware())
	group.Use(APIKeyAuthMiddleware(m.cfg.GetWebhookAPIKey()))
	group.POST("/turns", m.handler.HandleTurn)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
