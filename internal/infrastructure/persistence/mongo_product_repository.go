package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
)

// DefaultQueryTimeout bounds a single product query
const DefaultQueryTimeout = 3 * time.Second

// productDocument is the stored shape of a product
type productDocument struct {
	SKU         string   `bson:"sku"`
	Name        string   `bson:"name"`
	Description string   `bson:"description"`
	Price       float64  `bson:"price"`
	InStock     int      `bson:"instock"`
	Categories  []string `bson:"categories"`
}

func (d *productDocument) toDomain() catalog.Product {
	return catalog.Product{
		SKU:         d.SKU,
		Name:        d.Name,
		Description: d.Description,
		Price:       decimal.NewFromFloat(d.Price),
		InStock:     d.InStock,
		Categories:  d.Categories,
	}
}

// MongoProductRepository implements catalog.ProductRepository on a MongoDB collection
type MongoProductRepository struct {
	source  CollectionSource
	timeout time.Duration
}

// NewMongoProductRepository creates a repository reading from source.
// A non-positive timeout falls back to DefaultQueryTimeout.
func NewMongoProductRepository(source CollectionSource, timeout time.Duration) *MongoProductRepository {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &MongoProductRepository{source: source, timeout: timeout}
}

func (r *MongoProductRepository) collection() (*mongo.Collection, error) {
	coll := r.source.Collection()
	if coll == nil {
		return nil, shared.ErrStoreUnavailable
	}
	return coll, nil
}

// FindAll returns every product
func (r *MongoProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	return r.find(ctx, bson.D{}, nil)
}

// FindBySKU finds a product by its SKU, returning (nil, nil) when there is none
func (r *MongoProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc productDocument
	if err := coll.FindOne(ctx, bson.D{{Key: "sku", Value: sku}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product %q: %w", sku, err)
	}
	product := doc.toDomain()
	return &product, nil
}

// FindByCategory returns the products listed under category, sorted by name
func (r *MongoProductRepository) FindByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.D{{Key: "categories", Value: category}}, opts)
}

// Categories returns the distinct category names
func (r *MongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	values, err := coll.Distinct(ctx, "categories", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

// Search performs a full text search over the text index
func (r *MongoProductRepository) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	filter := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: text}}}}
	opts := options.Find().
		SetProjection(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}).
		SetSort(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}})
	return r.find(ctx, filter, opts)
}

// EnsureIndexes creates the text index used by Search and a unique index on sku
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("product_text"),
		},
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetName("product_sku").SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]catalog.Product, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]catalog.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].toDomain()
	}
	return products, nil
}

var _ catalog.ProductRepository = (*MongoProductRepository)(nil)
