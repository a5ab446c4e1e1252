package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/internal/identity/store"
	"github.com/rblessings/urlradar/pkg/idx"
)

// Users implements store.Users on a MongoDB collection.
type Users struct {
	col *mongo.Collection
}

var _ store.Users = (*Users)(nil)

// userDoc is the persisted shape of a user record.
type userDoc struct {
	ID           string    `bson:"_id"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Version      int64     `bson:"version"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDoc(u domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Version:      u.Version,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Insert persists a new user, assigning a fresh id and version 1. The unique
// email index is the arbiter under concurrent inserts of the same address.
func (r *Users) Insert(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	u.ID = idx.New()
	u.Version = 1
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, toDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, store.ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByID returns the record with the given id.
func (r *Users) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// GetByEmail returns the record with the given normalized email.
func (r *Users) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *Users) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateWithVersion applies the record only when the stored version still
// matches, incrementing it atomically in the same command.
func (r *Users) UpdateWithVersion(ctx context.Context, u domain.User) (domain.User, error) {
	filter := bson.D{
		{Key: "_id", Value: u.ID},
		{Key: "version", Value: u.Version},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "first_name", Value: u.FirstName},
			{Key: "last_name", Value: u.LastName},
			{Key: "email", Value: u.Email},
			{Key: "password_hash", Value: u.PasswordHash},
			{Key: "updated_at", Value: time.Now().UTC()},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}

	var doc userDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	// No match means either the id is unknown or the version went stale.
	// Re-read by id alone to tell the two apart.
	if _, err := r.GetByID(ctx, u.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User{}, store.ErrVersionConflict
}
