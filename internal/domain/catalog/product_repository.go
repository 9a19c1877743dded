package catalog

import "context"

// ProductRepository defines the read contract of the product document store.
// Implementations return shared.ErrStoreUnavailable while the store is not connected.
type ProductRepository interface {
	// FindAll returns every product
	FindAll(ctx context.Context) ([]Product, error)

	// FindBySKU returns (nil, nil) if no product has the SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByCategory returns products in a category, sorted by name
	FindByCategory(ctx context.Context, category string) ([]Product, error)

	// Categories returns the distinct category names
	Categories(ctx context.Context) ([]string, error)

	// Search performs a full text search on name and description
	Search(ctx context.Context, text string) ([]Product, error)
}
