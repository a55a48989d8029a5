// Package catalog provides the product catalog bounded context module.
package catalog

import (
	"wasales_backend/internal/catalog/handler"
	"wasales_backend/internal/catalog/repository"
	"wasales_backend/internal/catalog/service"
	apphttp "wasales_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the catalog service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/products"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
