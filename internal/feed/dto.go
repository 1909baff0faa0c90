package feed

import (
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/internal/users"
)

// CreatePostDTO is the request body for authoring a post.
type CreatePostDTO struct {
	Content  string  `json:"content" validate:"required_without=ImageURL,max=4000"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// AddCommentDTO is the request body for commenting on a post.
type AddCommentDTO struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CommentDTO is a comment with its author's profile.
type CommentDTO struct {
	ID        uuid.UUID     `json:"id"`
	PostID    uuid.UUID     `json:"post_id"`
	User      users.UserDTO `json:"user"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// PostDTO is a feed entry decorated with counts, the caller's like state,
// and comments newest first.
type PostDTO struct {
	ID            uuid.UUID     `json:"id"`
	Author        users.UserDTO `json:"author"`
	Content       *string       `json:"content,omitempty"`
	ImageURL      *string       `json:"image_url,omitempty"`
	LikeCount     int64         `json:"like_count"`
	CommentCount  int64         `json:"comment_count"`
	LikedByCaller bool          `json:"liked_by_caller"`
	Comments      []CommentDTO  `json:"comments"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PageDTO is an offset-paginated slice of the feed.
type PageDTO struct {
	Items []PostDTO `json:"items"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Total int64     `json:"total"`
}

// LikeResultDTO reports the post's like state after a toggle.
type LikeResultDTO struct {
	PostID    uuid.UUID `json:"post_id"`
	Liked     bool      `json:"liked"`
	LikeCount int64     `json:"like_count"`
}
