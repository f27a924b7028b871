package domain

import (
	"context"
	"time"
)

// Post is representing the Post data struct. The comment subsystem only
// mutates CommentCount; everything else belongs to the post lifecycle.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CommentCount int64     `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Author *User `json:"author,omitempty"`
}

// PostRepository defines the contract for post data persistence.
type PostRepository interface {
	// GetByID retrieves a single post by its ID.
	// Returns ErrNotFound if the post doesn't exist.
	GetByID(ctx context.Context, id int64) (*Post, error)

	// Fetch retrieves a page of posts, newest first.
	Fetch(ctx context.Context, offset, limit int64) ([]*Post, error)
	Count(ctx context.Context) (int64, error)

	// FetchIDs pages through all post IDs, used to seed the bloom filter.
	FetchIDs(ctx context.Context, offset, limit int64) ([]int64, error)

	// Store creates a new post and backfills its ID.
	Store(ctx context.Context, p *Post) error

	// AddCommentCount adjusts comment_count by delta, floored at zero.
	AddCommentCount(ctx context.Context, id int64, delta int64) error

	// SetCommentCount overwrites comment_count, used by reconciliation.
	SetCommentCount(ctx context.Context, id int64, count int64) error
}

// PostUsecase defines the business logic contract for post operations.
type PostUsecase interface {
	Store(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	Fetch(ctx context.Context, page, limit int64) ([]*Post, Pagination, error)

	// InitBloomFilter seeds the post-id bloom filter from the store.
	InitBloomFilter(ctx context.Context) error
}
