package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is authored by exactly one user; content and image are both
// optional at the storage layer (the request layer requires content).
type Post struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null;index"`
	Content   *string   `gorm:"column:content;type:text"`
	ImageURL  *string   `gorm:"column:image_url;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Like toggles a user's liked state on a post; the unique index makes a
// concurrent double-like collapse into a single row.
type Like struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:likes_user_post_key"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:likes_user_post_key;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Comment belongs to a post and an authoring user; listed newest first.
type Comment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
