package migrate

import (
	"blog-service/internal/post"
	"blog-service/internal/shared/db"
)

func AutoMigrateAll(store *db.Store) error {
	return store.Base.AutoMigrate(
		&post.Post{},
	)
}
