package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-service/internal/shared/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	store *db.Store
	now   func() time.Time
}

// NewGormRepository stores posts in the "posts" table. The table must already
// be migrated.
func NewGormRepository(s *db.Store) Repository {
	return &gormRepository{store: s, now: time.Now}
}

func (r *gormRepository) ListAll(ctx context.Context) ([]Post, error) {
	out := make([]Post, 0)
	if err := r.store.Base.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := r.store.Base.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("find post %d: %w", id, err)
	}
	return p, nil
}

func (r *gormRepository) Create(ctx context.Context, p Post) (Post, error) {
	p.ID = 0
	p.GUID = uuid.NewString()
	p.CreatedAt = r.now()
	if err := r.store.Base.WithContext(ctx).Create(&p).Error; err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (r *gormRepository) Update(ctx context.Context, id int64, title, text string) (Post, error) {
	var p Post
	err := r.store.Base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		// map form so empty strings are written too
		if err := tx.Model(&Post{}).Where("id = ?", id).
			Updates(map[string]any{"title": title, "text": text}).Error; err != nil {
			return err
		}
		p.Title, p.Text = title, text
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("update post %d: %w", id, err)
	}
	return p, nil
}

func (r *gormRepository) DeleteByID(ctx context.Context, id int64) error {
	res := r.store.Base.WithContext(ctx).Where("id = ?", id).Delete(&Post{})
	if res.Error != nil {
		return fmt.Errorf("delete post %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed only fills an empty table so restarts against a durable database do
// not duplicate the demo posts.
func (r *gormRepository) Seed(ctx context.Context, posts ...Post) error {
	return r.store.Base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Post{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, p := range posts {
			p.ID = 0
			p.GUID = uuid.NewString()
			if p.CreatedAt.IsZero() {
				p.CreatedAt = r.now()
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("seed post %q: %w", p.Title, err)
			}
		}
		return nil
	})
}
