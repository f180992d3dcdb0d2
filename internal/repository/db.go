package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names.
const (
	ColUsers    = "users"
	ColPrograms = "programs"
	ColBlogs    = "blogs"
	ColGallery  = "gallery"
	ColPartners = "partners"
)

const (
	connectAttempts   = 3
	connectRetryDelay = time.Second
)

// Store owns the MongoDB client and the database handle shared by every repository.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB, retrying a few times before giving up.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true)

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := mongo.Connect(opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				slog.Info("connected to mongodb", "database", dbName, "attempt", attempt)
				return &Store{client: client, db: client.Database(dbName)}, nil
			}
			_ = client.Disconnect(context.Background())
		}

		lastErr = err
		slog.Warn("mongodb connection attempt failed", "attempt", attempt, "error", err)

		if attempt < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectRetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("connecting to mongodb after %d attempts: %w", connectAttempts, lastErr)
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrapError(s.client.Ping(ctx, readpref.Primary()))
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}
