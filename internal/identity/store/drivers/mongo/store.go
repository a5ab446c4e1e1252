// Package mongo implements the store contract on a MongoDB deployment.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rblessings/urlradar/internal/identity/store"
)

const (
	usersCollection = "users"

	connectTimeout = 10 * time.Second
)

// Store wraps a MongoDB client and database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	users  *Users
}

var _ store.Store = (*Store)(nil)

// Connect dials the deployment at uri and binds the named database. The
// returned store is ready once EnsureIndexes has been called.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client: client,
		db:     db,
		users:  &Users{col: db.Collection(usersCollection)},
	}, nil
}

// EnsureIndexes creates the unique email index. Creation is idempotent, so
// every instance runs it at startup. The index is what actually guarantees
// email uniqueness under concurrent registration.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

// Users returns the user repository.
func (s *Store) Users() store.Users { return s.users }

// Ping verifies the deployment is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
