package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrNotFound          = errors.New("document not found")
	ErrInvalidID         = errors.New("invalid document id")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// wrapError converts driver errors into repository errors. Connectivity
// failures become ErrStoreUnavailable so callers can answer 503.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

// duplicateField reports which unique index rejected a write, or "" when
// err is not a duplicate key error.
func duplicateField(err error) string {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, indexEmailUnique):
		return "email"
	case strings.Contains(msg, indexUsernameUnique):
		return "username"
	}
	return "unknown"
}
