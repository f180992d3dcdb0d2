package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/amaralkaff/lsa-backend/internal/model"
)

// listLimit caps list responses. The collections are small editorial sets.
const listLimit = 1000

// Filter is an equality match on document fields.
type Filter map[string]any

// ContentRepository persists one content type in its own collection.
type ContentRepository[T model.Content] struct {
	col *mongo.Collection
}

// NewContentRepository creates a repository for the named collection.
func NewContentRepository[T model.Content](s *Store, collection string) *ContentRepository[T] {
	return &ContentRepository[T]{col: s.col(collection)}
}

// EnsureIndexes creates the created_at index used by List ordering.
func (r *ContentRepository[T]) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}})
	if err != nil {
		return fmt.Errorf("creating %s indexes: %w", r.col.Name(), wrapError(err))
	}
	return nil
}

// Insert stores a new document. The caller assigns the ID.
func (r *ContentRepository[T]) Insert(ctx context.Context, doc T) error {
	_, err := r.col.InsertOne(ctx, doc)
	return wrapError(err)
}

// Get retrieves a document by its hex ObjectID.
func (r *ContentRepository[T]) Get(ctx context.Context, id string) (*T, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc T
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, wrapError(err)
	}
	return &doc, nil
}

// List returns documents matching filter, newest first.
func (r *ContentRepository[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	match := bson.M{}
	for k, v := range filter {
		match[k] = v
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(listLimit)

	cursor, err := r.col.Find(ctx, match, opts)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err)
	}
	return docs, nil
}

// Delete removes a document by its hex ObjectID.
func (r *ContentRepository[T]) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
