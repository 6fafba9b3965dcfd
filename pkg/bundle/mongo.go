package bundle

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const bundleCollection = "bundles"

// MongoStore is a MongoDB-backed bundle store for server deployments, where
// bundles published by CI must be visible to every replica.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name. Defaults to "depshim".
	Database string
}

// NewMongoStore connects to MongoDB and prepares the bundle collection.
// The connection is verified with a ping, and a unique index on the bundle
// name keeps Put idempotent across replicas.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo store: connection URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "depshim"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	col := client.Database(cfg.Database).Collection(bundleCollection)
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create bundle index: %w", err)
	}

	return &MongoStore{client: client, col: col}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*Bundle, error) {
	var b Bundle
	err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("find bundle: %w", err)
	}
	return &b, nil
}

func (s *MongoStore) Put(ctx context.Context, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := s.col.ReplaceOne(ctx, bson.M{"name": b.Name}, b, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store bundle: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	raw, err := s.col.Distinct(ctx, "name", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("delete bundle: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
