package post

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("post not found")

type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GUID      string    `gorm:"uniqueIndex;size:36" json:"guid"`
	Title     string    `json:"title"`
	Text      string    `gorm:"type:text" json:"text"`
	Author    string    `gorm:"size:120" json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Equal reports whether all fields match. Timestamps compare by instant.
func (p Post) Equal(o Post) bool {
	return p.ID == o.ID &&
		p.GUID == o.GUID &&
		p.Title == o.Title &&
		p.Text == o.Text &&
		p.Author == o.Author &&
		p.CreatedAt.Equal(o.CreatedAt)
}

// DemoPosts are loaded into a fresh store when seeding is enabled.
func DemoPosts() []Post {
	return []Post{
		{
			Title:     "First post",
			Text:      "Text of first post",
			Author:    "Victor",
			CreatedAt: time.Date(2020, 10, 10, 10, 10, 0, 0, time.UTC),
		},
		{
			Title:     "Second post",
			Text:      "Text of second post",
			Author:    "Gregory",
			CreatedAt: time.Date(2020, 11, 11, 11, 11, 0, 0, time.UTC),
		},
		{
			Title:     "Third post",
			Text:      "Text of third post",
			Author:    "Kobayashi",
			CreatedAt: time.Date(2020, 12, 12, 12, 12, 0, 0, time.UTC),
		},
	}
}
