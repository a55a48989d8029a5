// Package adapters wires bounded contexts together by implementing one
// context's ports on top of another context's services.
package adapters

import (
	"context"

	catalogservice "wasales_backend/internal/catalog/service"
	"wasales_backend/internal/intent/ports"

	"github.com/google/uuid"
)

// CatalogProductReader implements intent/ports.ProductReader on the catalog
// service. Product ids that are not valid catalog UUIDs are skipped; the
// intent core treats product identifiers as opaque strings.
type CatalogProductReader struct {
	catalog *catalogservice.Service
}

// NewCatalogProductReader creates the adapter.
func NewCatalogProductReader(catalog *catalogservice.Service) *CatalogProductReader {
	return &CatalogProductReader{catalog: catalog}
}

// GetProducts resolves product identifiers to catalog data.
func (a *CatalogProductReader) GetProducts(ctx context.Context, ids []string) (map[string]ports.ProductInfo, error) {
	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		uuids = append(uuids, parsed)
	}

	products, err := a.catalog.GetByIDs(ctx, uuids)
	if err != nil {
		return nil, err
	}

	result := make(map[string]ports.ProductInfo, len(products))
	for _, p := range products {
		result[p.ID.String()] = ports.ProductInfo{
			ID:   p.ID.String(),
			SKU:  p.SKU,
			Name: p.Name,
		}
	}
	return result, nil
}

var _ ports.ProductReader = (*CatalogProductReader)(nil)
