// Package transport defines the catalog module's response DTOs.
package transport

import "wasales_backend/internal/catalog/repository"

// ProductResponse is the wire shape of one catalog product.
type ProductResponse struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PriceCents  int64   `json:"priceCents"`
	Currency    string  `json:"currency"`
	Active      bool    `json:"active"`
}

// FromProduct maps a repository product to its response shape.
func FromProduct(p repository.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Active:      p.Active,
	}
}
