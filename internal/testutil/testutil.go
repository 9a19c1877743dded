// Package testutil provides common test utilities for the cart and catalogue services.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/shopcart/backend/internal/domain/catalog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Do sends a request without a body to handler and returns the recorded response.
func Do(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// Get performs a real GET against a running server and returns status and body.
func Get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// ContextWithTimeout creates a context with a timeout that is cancelled when the test ends.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or fails the test after timeout.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}

// ProductStore is an in-memory catalog.ProductRepository
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
	err      error
}

// NewProductStore creates a store holding products
func NewProductStore(products ...catalog.Product) *ProductStore {
	s := &ProductStore{products: make(map[string]catalog.Product, len(products))}
	for _, p := range products {
		s.products[p.SKU] = p
	}
	return s
}

// FailWith makes every subsequent call return err. A nil err restores normal behavior.
func (s *ProductStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *ProductStore) FindAll(ctx context.Context) ([]catalog.Product, error) {
	return s.filter(func(catalog.Product) bool { return true })
}

func (s *ProductStore) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *ProductStore) FindByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	return s.filter(func(p catalog.Product) bool { return p.InCategory(category) })
}

func (s *ProductStore) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range s.products {
		for _, c := range p.Categories {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Search matches text case-insensitively against name and description
func (s *ProductStore) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	needle := strings.ToLower(text)
	return s.filter(func(p catalog.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	})
}

func (s *ProductStore) filter(keep func(catalog.Product) bool) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []catalog.Product{}
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ catalog.ProductRepository = (*ProductStore)(nil)
