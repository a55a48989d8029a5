// Package ports declares the interfaces the intent module needs from other
// bounded contexts. Adapters in internal/adapters satisfy them.
package ports

import "context"

// ProductInfo is the minimal catalog view the intent module needs.
type ProductInfo struct {
	ID   string
	SKU  string
	Name string
}

// ProductReader resolves product identifiers to catalog data for response
// decoration. Lookups are best-effort; unknown ids are simply absent.
type ProductReader interface {
	GetProducts(ctx context.Context, ids []string) (map[string]ProductInfo, error)
}
