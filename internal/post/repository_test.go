package post

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	p, err := r.Create(ctx, Post{ID: 99, Title: "t", Text: "x", Author: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Len(t, p.GUID, 36)
	assert.Equal(t, fixed, p.CreatedAt)

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(p))
}

func TestMemoryRepository_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, _ := r.Create(ctx, Post{Title: "a"})
	b, _ := r.Create(ctx, Post{Title: "b"})
	require.NoError(t, r.DeleteByID(ctx, b.ID))
	require.NoError(t, r.DeleteByID(ctx, a.ID))

	c, err := r.Create(ctx, Post{Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, 1, r.Len())
}

func TestMemoryRepository_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Seed(ctx, DemoPosts()...))

	_, err := r.Create(ctx, Post{Title: "fourth"})
	require.NoError(t, err)
	require.NoError(t, r.DeleteByID(ctx, 2))

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)
	assert.Equal(t, "First post", list[0].Title)
	assert.Equal(t, time.Date(2020, 10, 10, 10, 10, 0, 0, time.UTC), list[0].CreatedAt)
}

func TestMemoryRepository_EmptyListIsNotNil(t *testing.T) {
	list, err := NewMemoryRepository().ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMemoryRepository_UpdateReplacesTitleAndText(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	orig, _ := r.Create(ctx, Post{Title: "old", Text: "old text", Author: "ann"})

	upd, err := r.Update(ctx, orig.ID, "new", "")
	require.NoError(t, err)
	assert.Equal(t, "new", upd.Title)
	assert.Equal(t, "", upd.Text)
	assert.Equal(t, orig.GUID, upd.GUID)
	assert.Equal(t, orig.Author, upd.Author)
	assert.Equal(t, orig.CreatedAt, upd.CreatedAt)
}

func TestMemoryRepository_MissesLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Seed(ctx, DemoPosts()...))
	before, _ := r.ListAll(ctx)

	_, err := r.FindByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Update(ctx, 42, "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteByID(ctx, 42), ErrNotFound)

	after, _ := r.ListAll(ctx)
	assert.Equal(t, before, after)

	next, _ := r.Create(ctx, Post{Title: "next"})
	assert.Equal(t, int64(4), next.ID)
}

func TestMemoryRepository_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	const n = 64
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Create(ctx, Post{Title: "p"})
			if err == nil {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, r.Len())
}
