package persistence

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shopcart/backend/internal/infrastructure/config"
)

// CollectionSource hands out the product collection once it is reachable
type CollectionSource interface {
	// Collection returns nil while the store is not connected
	Collection() *mongo.Collection
}

// MongoStore holds the MongoDB client established by Dial
type MongoStore struct {
	cfg    config.MongoConfig
	client atomic.Pointer[mongo.Client]
}

// NewMongoStore creates an unconnected store
func NewMongoStore(cfg config.MongoConfig) *MongoStore {
	return &MongoStore{cfg: cfg}
}

// Dial makes one connection attempt. It is meant to be driven by a
// connector.Connector, which retries until it succeeds.
func (s *MongoStore) Dial(ctx context.Context) error {
	if s.client.Load() != nil {
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.URL))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s.client.Store(client)
	return nil
}

// Collection returns the configured product collection, or nil before Dial succeeds
func (s *MongoStore) Collection() *mongo.Collection {
	client := s.client.Load()
	if client == nil {
		return nil
	}
	return client.Database(s.cfg.Database).Collection(s.cfg.Collection)
}

// Close disconnects the client if one was established
func (s *MongoStore) Close(ctx context.Context) error {
	client := s.client.Swap(nil)
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// StaticCollection is a CollectionSource for an already connected collection
type StaticCollection struct {
	Coll *mongo.Collection
}

// Collection returns the wrapped collection
func (s StaticCollection) Collection() *mongo.Collection {
	return s.Coll
}
