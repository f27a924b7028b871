package cache

import (
	"context"

	"github.com/quillhaven/quillhaven/domain"
)

// CommentPage is one page of top-level comments with its pagination metadata.
type CommentPage struct {
	Comments   []*domain.Comment
	Pagination domain.Pagination
}

// ReplyPage is one page of replies with its pagination metadata.
type ReplyPage struct {
	Replies    []*domain.Comment
	Pagination domain.Pagination
}

// CommentAPI is the server surface the store reconciles against. The HTTP
// client implements it over the wire contract; tests substitute a stub.
type CommentAPI interface {
	FetchComments(ctx context.Context, postID, page int64) (*CommentPage, error)
	FetchReplies(ctx context.Context, commentID, page int64) (*ReplyPage, error)
	FetchCount(ctx context.Context, postID int64) (int64, error)
	CreateComment(ctx context.Context, content string, postID, parentCommentID int64) (*domain.Comment, error)
	UpdateComment(ctx context.Context, commentID int64, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	ToggleLike(ctx context.Context, commentID int64) (*domain.LikeResult, error)
}
