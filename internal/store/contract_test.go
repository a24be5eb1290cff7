package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pagexpress/internal/pattern"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract: общий набор проверок для любой реализации Repository.
func runRepositoryContract(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	created, err := repo.Create(ctx, heroDoc("Hero"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Fields[0].ID, got.Fields[0].ID)
	assert.Equal(t, created.Fieldset[0].Fields[0].ID, got.Fieldset[0].Fields[0].ID)
	assert.Equal(t, created.CreatedAt.UnixMicro(), got.CreatedAt.UnixMicro())

	_, err = repo.Create(ctx, heroDoc("Hero"))
	assert.True(t, errors.Is(err, ErrDuplicateName), "got %v", err)

	upd := heroDoc("Hero")
	upd.Label = "Updated"
	updated, err := repo.Update(ctx, created.ID, upd, created.Version)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	_, err = repo.Update(ctx, created.ID, upd, created.Version)
	assert.True(t, errors.Is(err, ErrVersionConflict), "got %v", err)

	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, pattern.ComponentPattern{Name: fmt.Sprintf("Banner%d", i), Label: "Banner"})
		require.NoError(t, err)
	}
	page, err := repo.List(ctx, ListParams{Limit: 2, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Banner0", page.Data[0].Name)

	page, err = repo.List(ctx, ListParams{Search: "upd"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Hero", page.Data[0].Name)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, created.ID), ErrNotFound))
}

func TestMemory_Contract(t *testing.T) {
	runRepositoryContract(t, NewMemory())
}
