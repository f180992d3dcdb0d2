package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/repository"
)

func TestUserStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	u := &model.User{Email: "a@x.com", Username: "alice"}
	require.NoError(t, s.Insert(ctx, u))
	assert.False(t, u.ID.IsZero())

	assert.ErrorIs(t, s.Insert(ctx, &model.User{Email: "a@x.com", Username: "bob"}), repository.ErrDuplicateEmail)
	assert.ErrorIs(t, s.Insert(ctx, &model.User{Email: "b@x.com", Username: "alice"}), repository.ErrDuplicateUsername)

	_, err := s.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	n, err := s.CountByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUserStore_SetActive(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	require.NoError(t, s.Insert(ctx, &model.User{Email: "a@x.com", Username: "alice", IsActive: true}))

	s.SetActive("a@x.com", false)
	u, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	require.NoError(t, s.SetAdmin(ctx, "a@x.com"))
	u, err = s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.IsActive)
}

func TestContentStore_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewContentStore[model.Program]()

	first := model.Program{ID: bson.NewObjectID(), Title: "first", ProgramType: model.ProgramTypeWorkshop}
	second := model.Program{ID: bson.NewObjectID(), Title: "second", ProgramType: model.ProgramTypeSosialisasi}
	require.NoError(t, s.Insert(ctx, first))
	require.NoError(t, s.Insert(ctx, second))

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)

	filtered, err := s.List(ctx, repository.Filter{"program_type": model.ProgramTypeWorkshop})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "first", filtered[0].Title)
}

func TestContentStore_GetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewContentStore[model.Blog]()
	b := model.Blog{ID: bson.NewObjectID(), Title: "hello"}
	require.NoError(t, s.Insert(ctx, b))

	got, err := s.Get(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, repository.ErrInvalidID)

	require.NoError(t, s.Delete(ctx, b.ID.Hex()))
	assert.ErrorIs(t, s.Delete(ctx, b.ID.Hex()), repository.ErrNotFound)
}
