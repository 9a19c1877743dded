package cart

import (
	"context"
	"encoding/json"
)

// Repository reads and removes stored carts.
type Repository interface {
	// Find returns (nil, nil) when no cart is stored under id.
	Find(ctx context.Context, id string) (*Cart, error)
	// Delete succeeds whether or not the cart exists.
	Delete(ctx context.Context, id string) error
}

// ProductReader fetches catalog data for a single SKU.
type ProductReader interface {
	// GetProduct returns (nil, nil) when the catalog has no usable answer for sku.
	GetProduct(ctx context.Context, sku string) (json.RawMessage, error)
}
