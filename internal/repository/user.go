package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/amaralkaff/lsa-backend/internal/model"
)

const (
	indexEmailUnique    = "email_unique"
	indexUsernameUnique = "username_unique"
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{col: s.col(ColUsers)}
}

// EnsureIndexes creates the unique indexes that make duplicate detection
// authoritative at insert time.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexEmailUnique),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexUsernameUnique),
		},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating user indexes: %w", wrapError(err))
	}
	return nil
}

// Insert stores a new user and sets the generated ID on the user struct.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	_, err := r.col.InsertOne(ctx, user)
	switch duplicateField(err) {
	case "":
	case "email":
		return ErrDuplicateEmail
	case "username":
		return ErrDuplicateUsername
	default:
		return fmt.Errorf("inserting user: %w", err)
	}
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.col.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, wrapError(err)
	}
	return &user, nil
}

// CountByEmail returns the number of users with the given email.
func (r *UserRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{{Key: "email", Value: email}})
	return n, wrapError(err)
}

// CountByUsername returns the number of users with the given username.
func (r *UserRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{{Key: "username", Value: username}})
	return n, wrapError(err)
}

// SetAdmin marks an existing user as an active administrator.
func (r *UserRepository) SetAdmin(ctx context.Context, email string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "is_admin", Value: true}, {Key: "is_active", Value: true}}}},
	)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
