package catalog

import "github.com/shopcart/backend/internal/domain/shared"

// Catalog errors
var (
	ErrProductNotFound = shared.NewDomainError(shared.CodeNotFound, "SKU not found")
	ErrInvalidSKU      = shared.NewDomainError(shared.CodeInvalidInput, "invalid SKU")
	ErrEmptySearch     = shared.NewDomainError(shared.CodeInvalidInput, "search text is required")
)
