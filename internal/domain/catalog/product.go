package catalog

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Product represents a product/SKU in the catalog
type Product struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	InStock     int
	Categories  []string
}

// skuPattern restricts SKUs to a short token safe to place in a URL path.
var skuPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidSKU reports whether sku is a well-formed SKU
func ValidSKU(sku string) bool {
	return skuPattern.MatchString(sku)
}

// InCategory reports whether the product is listed under category
func (p *Product) InCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
