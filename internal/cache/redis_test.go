package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/amaralkaff/lsa-backend/internal/model"
)

func setupTestCache(t *testing.T) (*IdentityCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewIdentityCache(client, 30*time.Second), mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	u := &model.User{
		ID:           bson.NewObjectID(),
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "$argon2id$secret",
		IsActive:     true,
	}
	require.NoError(t, c.Set(ctx, u))

	got, found, err := c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.PasswordHash, "hash must not be cached")
}

func TestGetNotFound(t *testing.T) {
	c, _ := setupTestCache(t)

	got, found, err := c.Get(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &model.User{Email: "a@x.com"}))
	mr.FastForward(31 * time.Second)

	_, found, err := c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &model.User{Email: "a@x.com"}))
	require.NoError(t, c.Invalidate(ctx, "a@x.com"))

	_, found, err := c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set(keyPrefix+"bad@x.com", "not-json"))

	_, found, err := c.Get(context.Background(), "bad@x.com")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestGetAfterServerClosed(t *testing.T) {
	c, mr := setupTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "a@x.com")
	assert.Error(t, err)
}
