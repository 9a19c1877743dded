package catalogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/infrastructure/logger"
)

const (
	// DefaultTimeout bounds one product lookup
	DefaultTimeout = 5 * time.Second
	// maxProductResponseSize limits the product body size
	maxProductResponseSize = 1 << 20 // 1MB
)

// Lookup outcomes reported to the outcome observer
const (
	OutcomeFound      = "found"
	OutcomeMissing    = "missing"
	OutcomeInvalidSKU = "invalid_sku"
	OutcomeError      = "error"
)

// HTTPClient looks up products on the catalogue service over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	observe    func(outcome string)
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.httpClient = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *HTTPClient) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOutcomeObserver registers a callback receiving the outcome of each lookup
func WithOutcomeObserver(fn func(outcome string)) Option {
	return func(h *HTTPClient) {
		h.observe = fn
	}
}

// NewHTTPClient creates a client for the catalogue service rooted at baseURL.
// A non-positive timeout falls back to DefaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetProduct fetches the product document for sku.
// It returns nil, nil when the catalogue has no usable product: the SKU is
// malformed, or the service answered with a non-2xx status. Transport
// failures and malformed bodies are returned as *cart.CatalogError.
func (h *HTTPClient) GetProduct(ctx context.Context, sku string) (json.RawMessage, error) {
	if !catalog.ValidSKU(sku) {
		logger.Or(ctx, h.logger).Warn("skipping catalogue lookup for malformed sku", zap.String("sku", sku))
		h.report(OutcomeInvalidSKU)
		return nil, nil
	}

	endpoint := h.baseURL + "/product/" + url.PathEscape(sku)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		h.report(OutcomeError)
		return nil, &cart.CatalogError{SKU: sku, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.report(OutcomeError)
		return nil, &cart.CatalogError{SKU: sku, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProductResponseSize))
		logger.Or(ctx, h.logger).Warn("catalogue returned no product",
			zap.String("sku", sku),
			zap.Int("status", resp.StatusCode),
		)
		h.report(OutcomeMissing)
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProductResponseSize+1))
	if err != nil {
		h.report(OutcomeError)
		return nil, &cart.CatalogError{SKU: sku, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxProductResponseSize {
		h.report(OutcomeError)
		return nil, &cart.CatalogError{SKU: sku, Err: errors.New("response body too large")}
	}
	if !json.Valid(body) {
		h.report(OutcomeError)
		return nil, &cart.CatalogError{SKU: sku, Err: errors.New("invalid JSON in product response")}
	}

	h.report(OutcomeFound)
	return json.RawMessage(body), nil
}

func (h *HTTPClient) report(outcome string) {
	if h.observe != nil {
		h.observe(outcome)
	}
}

var _ cart.ProductReader = (*HTTPClient)(nil)
