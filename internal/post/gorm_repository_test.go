package post

import (
	"context"
	"fmt"
	"testing"

	"blog-service/internal/shared/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	store, err := db.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Base.AutoMigrate(&Post{}))
	return NewGormRepository(store)
}

func TestGormRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteRepo(t)

	created, err := r.Create(ctx, Post{Title: "hello", Text: "world", Author: "ann"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.NotEmpty(t, created.GUID)

	got, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, created.GUID, got.GUID)

	upd, err := r.Update(ctx, created.ID, "bye", "")
	require.NoError(t, err)
	assert.Equal(t, "bye", upd.Title)
	assert.Equal(t, "", upd.Text)
	assert.Equal(t, "ann", upd.Author)

	got, err = r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", got.Title)
	assert.Equal(t, "", got.Text)

	require.NoError(t, r.DeleteByID(ctx, created.ID))
	_, err = r.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepository_Misses(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteRepo(t)

	_, err := r.FindByID(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Update(ctx, 7, "a", "b")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteByID(ctx, 7), ErrNotFound)

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGormRepository_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteRepo(t)

	_, _ = r.Create(ctx, Post{Title: "a"})
	b, _ := r.Create(ctx, Post{Title: "b"})
	require.NoError(t, r.DeleteByID(ctx, b.ID))

	c, err := r.Create(ctx, Post{Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, b.ID+1, c.ID)
}

func TestGormRepository_SeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteRepo(t)

	require.NoError(t, r.Seed(ctx, DemoPosts()...))
	require.NoError(t, r.Seed(ctx, DemoPosts()...))

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"First post", "Second post", "Third post"},
		[]string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, int64(3), list[2].ID)
}
