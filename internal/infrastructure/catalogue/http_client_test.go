package catalogue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shopcart/backend/internal/domain/cart"
)

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) record(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *outcomeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}

func TestHTTPClient_GetProduct(t *testing.T) {
	paths := &outcomeRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths.record(r.URL.Path)
		switch r.URL.Path {
		case "/product/A":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"A","name":"Ay","price":3}`))
		case "/product/BROKEN":
			_, _ = w.Write([]byte(`{"sku":`))
		case "/product/FAIL":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.Error(w, "SKU not found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	rec := &outcomeRecorder{}
	core, logs := observer.New(zapcore.WarnLevel)
	client := NewHTTPClient(server.URL+"/", time.Second,
		WithLogger(zap.New(core)),
		WithOutcomeObserver(rec.record),
	)

	t.Run("found", func(t *testing.T) {
		info, err := client.GetProduct(context.Background(), "A")
		require.NoError(t, err)
		assert.JSONEq(t, `{"sku":"A","name":"Ay","price":3}`, string(info))
		assert.Equal(t, []string{"/product/A"}, paths.all())
	})

	t.Run("not found is absent", func(t *testing.T) {
		info, err := client.GetProduct(context.Background(), "ZZZ")
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("server error is absent", func(t *testing.T) {
		info, err := client.GetProduct(context.Background(), "FAIL")
		require.NoError(t, err)
		assert.Nil(t, info)
		assert.GreaterOrEqual(t, logs.FilterMessage("catalogue returned no product").Len(), 2)
	})

	t.Run("invalid body is an error", func(t *testing.T) {
		info, err := client.GetProduct(context.Background(), "BROKEN")
		assert.Nil(t, info)

		var ce *cart.CatalogError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "BROKEN", ce.SKU)
	})

	t.Run("malformed sku makes no request", func(t *testing.T) {
		before := len(paths.all())
		info, err := client.GetProduct(context.Background(), "../admin")
		require.NoError(t, err)
		assert.Nil(t, info)
		assert.Len(t, paths.all(), before)
	})

	assert.Equal(t, []string{
		OutcomeFound, OutcomeMissing, OutcomeMissing, OutcomeError, OutcomeInvalidSKU,
	}, rec.all())
}

func TestHTTPClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClient(url, time.Second)
	info, err := client.GetProduct(context.Background(), "A")
	assert.Nil(t, info)

	var ce *cart.CatalogError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "A", ce.SKU)
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPClient(server.URL, 50*time.Millisecond)
	_, err := client.GetProduct(context.Background(), "A")

	var ce *cart.CatalogError
	require.ErrorAs(t, err, &ce)
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(server.URL, time.Second).GetProduct(ctx, "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient("http://catalogue:8080/", 0, WithHTTPClient(nil), WithLogger(nil))
	assert.Equal(t, "http://catalogue:8080", client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.NotNil(t, client.logger)
}
