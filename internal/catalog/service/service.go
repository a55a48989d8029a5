// Package service exposes the product catalog read model.
package service

import (
	"context"
	"errors"

	"wasales_backend/internal/catalog/repository"
	"wasales_backend/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// ListActive returns the active catalog.
func (s *Service) ListActive(ctx context.Context) ([]repository.Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to list products", err)
	}
	return products, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to load product", err)
	}
	return product, nil
}

// GetByIDs resolves a batch of product ids; unknown ids are absent.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Product, error) {
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to load products", err)
	}
	return products, nil
}
