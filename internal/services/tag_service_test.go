package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		"Go":                 "go",
		"  GO  ":             "go",
		"Machine   Learning": "machine learning",
		"ÉCOLE":              "école",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTag(in), "NormalizeTag(%q)", in)
	}
}

func TestTagService_Create(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	user := seedUser(t, db, "user", domain.RoleUser)

	_, err := svc.Create(ctx, user, "go")
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = svc.Create(ctx, admin, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = svc.Create(ctx, admin, strings.Repeat("a", maxTagRunes+1))
	assert.ErrorIs(t, err, ErrTooLong)

	tag, err := svc.Create(ctx, admin, " Go ")
	require.NoError(t, err)
	assert.Equal(t, "go", tag.Name)

	_, err = svc.Create(ctx, admin, "GO")
	assert.ErrorIs(t, err, ErrTagExists)

	_, err = svc.Create(ctx, admin, "rust")
	require.NoError(t, err)
	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "go", all[0].Name)
	assert.Equal(t, "rust", all[1].Name)
}

func TestTagService_Follow(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice", domain.RoleUser)
	goTag := seedTag(t, db, "go")
	sqlTag := seedTag(t, db, "sql")

	assert.ErrorIs(t, svc.Follow(ctx, 0, []uint{goTag}), ErrMissingUser)
	assert.ErrorIs(t, svc.Follow(ctx, 999, []uint{goTag}), ErrUserNotFound)
	assert.ErrorIs(t, svc.Follow(ctx, alice, []uint{goTag, 404}), ErrTagNotFound)

	require.NoError(t, svc.Follow(ctx, alice, []uint{sqlTag, goTag, goTag}))
	followed, err := svc.Followed(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, followed, 2)

	require.NoError(t, svc.Follow(ctx, alice, []uint{sqlTag}))
	followed, err = svc.Followed(ctx, alice)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "sql", followed[0].Name)

	require.NoError(t, svc.Follow(ctx, alice, nil))
	followed, err = svc.Followed(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, followed)
}
