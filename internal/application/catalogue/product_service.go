package catalogue

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/infrastructure/logger"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
)

// ProductService handles product read operations of the catalogue
type ProductService struct {
	repo   catalog.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(repo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{repo: repo, logger: logger}
}

// ListProducts returns every product
func (s *ProductService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// GetProduct returns the product with the given SKU
func (s *ProductService) GetProduct(ctx context.Context, sku string) (_ *catalog.Product, err error) {
	ctx, span := telemetry.StartSpan(ctx, "catalogue.get_product", telemetry.AttrSKU.String(sku))
	defer func() { telemetry.EndSpan(span, err) }()

	if !catalog.ValidSKU(sku) {
		return nil, catalog.ErrInvalidSKU
	}

	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		logger.Or(ctx, s.logger).Debug("product not found", zap.String("sku", sku))
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

// ListByCategory returns the products of a category sorted by name
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	products, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// ListCategories returns all distinct category names
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Search returns products whose name or description match text
func (s *ProductService) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, catalog.ErrEmptySearch
	}

	products, err := s.repo.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

func nonNil(products []catalog.Product) []catalog.Product {
	if products == nil {
		return []catalog.Product{}
	}
	return products
}
