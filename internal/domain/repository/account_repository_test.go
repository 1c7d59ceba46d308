package repository

import (
	"context"
	"testing"

	"papergen/internal/common"
	"papergen/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBlobAccountRepository(NewMemoryBlobStore())

	account := &model.Account{ID: "a1", Email: "teacher@example.org", HashedPassword: "hash"}
	require.NoError(t, repo.Create(ctx, account))

	byEmail, err := repo.FindByEmail(ctx, "Teacher@Example.org")
	require.NoError(t, err)
	assert.Equal(t, "a1", byEmail.ID)

	byID, err := repo.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "teacher@example.org", byID.Email)

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.Create(ctx, &model.Account{ID: "a2", Email: "TEACHER@example.org"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestBlobAccountsLiveBesideStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	require.NoError(t, NewBlobAccountRepository(blobs).Create(ctx, &model.Account{ID: "a1", Email: "x@example.org"}))

	_, ok, err := blobs.Get(ctx, StoreKey)
	require.NoError(t, err)
	assert.False(t, ok, "accounts must not be written under the store key")
}
