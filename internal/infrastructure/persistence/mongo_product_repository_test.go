package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/config"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func productDoc(sku, name string, price float64, categories ...string) bson.D {
	return bson.D{
		{Key: "sku", Value: sku},
		{Key: "name", Value: name},
		{Key: "description", Value: name + " description"},
		{Key: "price", Value: price},
		{Key: "instock", Value: 4},
		{Key: "categories", Value: bson.A(toAny(categories))},
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func TestMongoProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("FindAll decodes every product", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			productDoc("A", "Anvil", 3.5, "tools"),
			productDoc("B", "Bucket", 1, "tools", "garden"),
		))

		products, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, products, 2)
		assert.Equal(mt, "A", products[0].SKU)
		assert.True(mt, products[0].Price.Equal(decimal.RequireFromString("3.5")))
		assert.Equal(mt, 4, products[0].InStock)
		assert.Equal(mt, []string{"tools", "garden"}, products[1].Categories)
	})

	mt.Run("FindBySKU found", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			productDoc("A", "Anvil", 3.5, "tools"),
		))

		product, err := repo.FindBySKU(context.Background(), "A")
		require.NoError(mt, err)
		require.NotNil(mt, product)
		assert.Equal(mt, "Anvil", product.Name)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "A", cmd.Lookup("filter", "sku").StringValue())
	})

	mt.Run("FindBySKU missing", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		product, err := repo.FindBySKU(context.Background(), "ZZZ")
		require.NoError(mt, err)
		assert.Nil(mt, product)
	})

	mt.Run("FindBySKU command error", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))

		product, err := repo.FindBySKU(context.Background(), "A")
		assert.Nil(mt, product)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "boom")
	})

	mt.Run("FindByCategory filters and sorts by name", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			productDoc("A", "Anvil", 3.5, "tools"),
			productDoc("B", "Bucket", 1, "tools"),
		))

		products, err := repo.FindByCategory(context.Background(), "tools")
		require.NoError(mt, err)
		assert.Len(mt, products, 2)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "tools", cmd.Lookup("filter", "categories").StringValue())
		_, err = cmd.LookupErr("sort", "name")
		assert.NoError(mt, err)
	})

	mt.Run("Categories returns distinct strings", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "values", Value: bson.A{"garden", "tools"}},
		})

		categories, err := repo.Categories(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"garden", "tools"}, categories)
	})

	mt.Run("Search uses the text index", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			productDoc("A", "Anvil", 3.5, "tools"),
		))

		products, err := repo.Search(context.Background(), "anvil")
		require.NoError(mt, err)
		require.Len(mt, products, 1)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "anvil", cmd.Lookup("filter", "$text", "$search").StringValue())
	})

	mt.Run("EnsureIndexes", func(mt *mtest.T) {
		repo := NewMongoProductRepository(StaticCollection{Coll: mt.Coll}, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(context.Background()))
		assert.Equal(mt, "createIndexes", mt.GetStartedEvent().CommandName)
	})
}

func TestMongoProductRepository_Unavailable(t *testing.T) {
	repo := NewMongoProductRepository(StaticCollection{}, 0)
	ctx := context.Background()

	_, err := repo.FindAll(ctx)
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)

	_, err = repo.FindBySKU(ctx, "A")
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)

	_, err = repo.FindByCategory(ctx, "tools")
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)

	_, err = repo.Categories(ctx)
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)

	_, err = repo.Search(ctx, "anvil")
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)

	assert.ErrorIs(t, repo.EnsureIndexes(ctx), shared.ErrStoreUnavailable)
	assert.Equal(t, DefaultQueryTimeout, repo.timeout)
}

func TestMongoStore_BeforeDial(t *testing.T) {
	store := NewMongoStore(config.MongoConfig{
		URL:        "mongodb://localhost:27017",
		Database:   "catalogue",
		Collection: "products",
	})

	assert.Nil(t, store.Collection())
	assert.NoError(t, store.Close(context.Background()))
}

func TestMongoStore_DialInvalidURL(t *testing.T) {
	store := NewMongoStore(config.MongoConfig{URL: "postgres://not-mongo", Database: "catalogue", Collection: "products"})

	err := store.Dial(context.Background())
	require.Error(t, err)
	assert.Nil(t, store.Collection())
}
