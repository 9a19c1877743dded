package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/shopcart/backend/internal/application/cart"
	appcatalogue "github.com/shopcart/backend/internal/application/catalogue"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/cache"
	"github.com/shopcart/backend/internal/infrastructure/catalogue"
	"github.com/shopcart/backend/internal/infrastructure/connector"
	"github.com/shopcart/backend/internal/testutil"
)

type flow struct {
	redis      *miniredis.Miniredis
	products   *testutil.ProductStore
	catalogue  *httptest.Server
	cart       *httptest.Server
	connection *connector.Connector
}

func newFlow(t *testing.T) *flow {
	t.Helper()

	products := testutil.NewProductStore(
		catalog.Product{SKU: "A", Name: "Ay", Description: "first", Price: decimal.RequireFromString("3"), InStock: 1},
		catalog.Product{SKU: "B", Name: "Bee", Description: "second", Price: decimal.RequireFromString("1.5"), Categories: []string{"Robot"}},
	)
	catalogueSrv := httptest.NewServer(newEngine(zap.NewNop(),
		NewCatalogueHandler(appcatalogue.NewProductService(products, nil)).Routes()))
	t.Cleanup(catalogueSrv.Close)

	server := miniredis.RunT(t)
	hook := cache.NewConnectionHook(nil)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), OnConnect: hook.OnConnect})
	client.AddHook(hook)
	t.Cleanup(func() { _ = client.Close() })

	conn := connector.New("redis", cache.PingDialer(client), connector.WithRetryDelay(10*time.Millisecond))
	hook.ReportTo(conn)
	conn.Start(testutil.ContextWithTimeout(t, 10*time.Second))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Stop(ctx)
	})

	service := appcart.NewService(
		cache.NewRedisCartRepository(client, time.Second),
		catalogue.NewHTTPClient(catalogueSrv.URL, time.Second),
	)
	cartSrv := httptest.NewServer(newEngine(zap.NewNop(),
		NewSystemHandler("redis", conn, nil).Routes(),
		NewCartHandler(service).Routes(),
	))
	t.Cleanup(cartSrv.Close)

	return &flow{redis: server, products: products, catalogue: catalogueSrv, cart: cartSrv, connection: conn}
}

func TestFlow_CartEnrichedFromCatalogue(t *testing.T) {
	f := newFlow(t)
	testutil.RequireEventually(t, f.connection.Connected, 2*time.Second, 5*time.Millisecond, "redis never connected")

	status, body := testutil.Get(t, f.cart.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"app":"OK","redis":true}`, body)

	require.NoError(t, f.redis.Set("42", `{"total":6,"items":[{"sku":"A","qty":1},{"sku":"ghost","qty":1},{"sku":"B","qty":2}]}`))

	status, body = testutil.Get(t, f.cart.URL+"/cart/42")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total":6,"items":[
		{"sku":"A","qty":1,"productInfo":{"sku":"A","name":"Ay","description":"first","price":3,"instock":1,"categories":[]}},
		{"sku":"ghost","qty":1},
		{"sku":"B","qty":2,"productInfo":{"sku":"B","name":"Bee","description":"second","price":1.5,"instock":0,"categories":["Robot"]}}
	]}`, body)
}

func TestFlow_CatalogueStoreDownLeavesItemsBare(t *testing.T) {
	f := newFlow(t)
	require.NoError(t, f.redis.Set("42", `{"items":[{"sku":"A","qty":1}]}`))
	f.products.FailWith(shared.ErrStoreUnavailable)

	status, body := testutil.Get(t, f.catalogue.URL+"/product/A")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "database not available", body)

	status, body = testutil.Get(t, f.cart.URL+"/cart/42")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"items":[{"sku":"A","qty":1}]}`, body)
}

func TestFlow_CatalogueUnreachableFailsCart(t *testing.T) {
	f := newFlow(t)
	require.NoError(t, f.redis.Set("42", `{"items":[{"sku":"A","qty":1}]}`))
	f.catalogue.Close()

	status, body := testutil.Get(t, f.cart.URL+"/cart/42")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, `catalog lookup "A"`)
}

func TestFlow_DeleteAndMissingCart(t *testing.T) {
	f := newFlow(t)
	require.NoError(t, f.redis.Set("42", `{"items":[]}`))

	req, err := http.NewRequest(http.MethodDelete, f.cart.URL+"/cart/42", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, f.redis.Exists("42"))

	status, body := testutil.Get(t, f.cart.URL+"/cart/42")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Cart not found", body)
}

func TestFlow_NullCartIsNotFound(t *testing.T) {
	f := newFlow(t)
	require.NoError(t, f.redis.Set("42", `null`))

	status, body := testutil.Get(t, f.cart.URL+"/cart/42")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Cart not found", body)
}
