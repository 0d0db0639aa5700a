package post

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	ListAll(ctx context.Context) ([]Post, error)
	FindByID(ctx context.Context, id int64) (Post, error)
	Create(ctx context.Context, p Post) (Post, error)
	Update(ctx context.Context, id int64, title, text string) (Post, error)
	DeleteByID(ctx context.Context, id int64) error
	Seed(ctx context.Context, posts ...Post) error
}

// MemoryRepository keeps posts in process memory. Ids come from a counter that
// only moves forward, so a deleted id is never handed out again.
type MemoryRepository struct {
	mu     sync.RWMutex
	posts  map[int64]Post
	order  []int64
	nextID int64
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:  make(map[int64]Post),
		nextID: 1,
		now:    time.Now,
	}
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Post, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.posts[id])
	}
	return out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepository) Create(_ context.Context, p Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.CreatedAt = r.now()
	return r.insert(p), nil
}

func (r *MemoryRepository) Seed(_ context.Context, posts ...Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range posts {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = r.now()
		}
		r.insert(p)
	}
	return nil
}

// insert assigns identity and appends. Caller holds the write lock.
func (r *MemoryRepository) insert(p Post) Post {
	p.ID = r.nextID
	r.nextID++
	p.GUID = uuid.NewString()
	r.posts[p.ID] = p
	r.order = append(r.order, p.ID)
	return p
}

func (r *MemoryRepository) Update(_ context.Context, id int64, title, text string) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	p.Title = title
	p.Text = text
	r.posts[id] = p
	return p, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len is the number of live posts.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts)
}
