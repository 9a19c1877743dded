package cart

import (
	"fmt"

	"github.com/shopcart/backend/internal/domain/shared"
)

// ErrCartNotFound is returned when no cart is stored under the requested id.
var ErrCartNotFound = shared.NewDomainError(shared.CodeNotFound, "Cart not found")

// StoreError is a failure of the key-value store while reading or deleting a cart.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cart store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CatalogError is a transport-level failure talking to the catalog service.
// A non-2xx answer is not a CatalogError.
type CatalogError struct {
	SKU string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog lookup %q: %v", e.SKU, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}
