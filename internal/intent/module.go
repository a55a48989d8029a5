// Package intent provides the purchase-intent bounded context module.
// This file defines the module that encapsulates engine construction,
// service wiring and route registration.
package intent

import (
	"wasales_backend/internal/events"
	apphttp "wasales_backend/internal/http"
	"wasales_backend/internal/intent/domain"
	"wasales_backend/internal/intent/handler"
	"wasales_backend/internal/intent/ports"
	"wasales_backend/internal/intent/repository"
	"wasales_backend/internal/intent/service"
	"wasales_backend/platform/config"
	"wasales_backend/platform/logger"
	"wasales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the intent bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// BuildEngineConfig assembles the engine configuration from the environment
// and an optional taxonomy file. Validation happens in domain.NewEngine.
func BuildEngineConfig(cfg config.IntentConfig) (domain.EngineConfig, error) {
	ec := domain.DefaultEngineConfig()
	ec.DecayRatePerHour = cfg.GetDecayRatePerHour()
	ec.HistoryCapacity = cfg.GetHistoryCapacity()
	ec.ProductInterestCapacity = cfg.GetProductInterestCapacity()
	ec.HysteresisMargin = cfg.GetHysteresisMargin()

	if path := cfg.GetTaxonomyPath(); path != "" {
		if err := ec.LoadTaxonomyFile(path); err != nil {
			return domain.EngineConfig{}, err
		}
	}
	return ec, nil
}

// NewModule creates and initializes the intent module with all its
// dependencies. products may be nil when no catalog is wired.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, products ports.ProductReader, val *validator.Validator, cfg config.IntentConfig, log *logger.Logger) (*Module, error) {
	engineConfig, err := BuildEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := domain.NewEngine(engineConfig)
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, engine, eventBus, log)
	h := handler.New(svc, products, val, log)

	return &Module{
		handler: h,
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intent"
}

// Service returns the intent service for external use (webhook ingress,
// queue worker).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts intent routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
