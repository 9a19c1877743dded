package cart

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/shopcart/backend/internal/infrastructure/logger"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
)

// Service serves stored carts enriched with catalogue data
type Service struct {
	repo           cart.Repository
	products       cart.ProductReader
	maxConcurrency int
	logger         *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithMaxConcurrency caps the number of catalogue lookups in flight for one
// cart. Zero or less means one lookup per item, all at once.
func WithMaxConcurrency(n int) Option {
	return func(s *Service) {
		s.maxConcurrency = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new cart Service
func NewService(repo cart.Repository, products cart.ProductReader, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		products: products,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart loads the cart stored under id and attaches catalogue data to each
// item. Lookups run concurrently; items keep their stored order. Any lookup
// error fails the whole request and no partial cart is returned.
func (s *Service) GetCart(ctx context.Context, id string) (_ *cart.Cart, err error) {
	ctx, span := telemetry.StartSpan(ctx, "cart.get", telemetry.AttrCartID.String(id))
	defer func() {
		if errors.Is(err, cart.ErrCartNotFound) {
			span.SetAttributes(telemetry.AttrFound.Bool(false))
			telemetry.EndSpan(span, nil)
			return
		}
		telemetry.EndSpan(span, err)
	}()

	c, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound
	}
	span.SetAttributes(telemetry.AttrFound.Bool(true), telemetry.AttrItemCount.Int(c.Len()))
	if c.Len() == 0 {
		return c, nil
	}

	infos, err := s.lookup(ctx, c.SKUs())
	if err != nil {
		logger.Or(ctx, s.logger).Debug("cart enrichment aborted",
			zap.String("cart_id", id),
			zap.Int("items", c.Len()),
			zap.Error(err),
		)
		return nil, err
	}

	for i := range c.Items {
		c.Items[i].ProductInfo = infos[i]
	}

	logger.Or(ctx, s.logger).Debug("cart enriched",
		zap.String("cart_id", id),
		zap.Int("items", c.Len()),
	)
	return c, nil
}

// lookup fetches product data for every sku. Result i belongs to skus[i]
// regardless of completion order.
func (s *Service) lookup(ctx context.Context, skus []string) ([]json.RawMessage, error) {
	infos := make([]json.RawMessage, len(skus))

	g, gctx := errgroup.WithContext(ctx)
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}

	for idx := range skus {
		g.Go(func() error {
			info, err := s.products.GetProduct(gctx, skus[idx])
			if err != nil {
				return err
			}
			infos[idx] = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// DeleteCart removes the cart stored under id. Deleting a missing cart succeeds.
func (s *Service) DeleteCart(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Or(ctx, s.logger).Debug("cart deleted", zap.String("cart_id", id))
	return nil
}
