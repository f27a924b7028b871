package domain

import (
	"context"
	"time"
)

// DeletedCommentContent replaces the content of a soft-deleted comment.
// The record stays addressable by ID so replies can still resolve their parent.
const DeletedCommentContent = "[This comment has been deleted]"

const (
	// DefaultCommentLimit is the page size for top-level comment listings.
	DefaultCommentLimit = 10
	// DefaultReplyLimit is the page size for reply listings.
	DefaultReplyLimit = 5
)

// Comment domain model. A comment either attaches directly to a post
// (ParentID == 0) or replies to a top-level comment. Replies never nest
// deeper than one level; the service rejects replies to replies.
type Comment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"postId"`
	AuthorID  int64      `json:"authorId"`
	Content   string     `json:"content"`
	ParentID  int64      `json:"parentCommentId"`
	ReplyIDs  []int64    `json:"replies"`
	Likes     int64      `json:"likes"`
	LikedBy   []int64    `json:"likedBy"`
	IsEdited  bool       `json:"isEdited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	IsDeleted bool       `json:"isDeleted"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// Author 评论作者信息 (denormalized summary for display)
	Author *User `json:"author,omitempty"`
}

// LikedByUser reports whether uid is present in the LikedBy set.
func (c *Comment) LikedByUser(uid int64) bool {
	for _, id := range c.LikedBy {
		if id == uid {
			return true
		}
	}
	return false
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Likes   int64   `json:"likes"`
	LikedBy []int64 `json:"likedBy"`
	Liked   bool    `json:"hasLiked"`
}

// CommentUsecase 业务逻辑接口
type CommentUsecase interface {
	// Create validates and persists a new comment, bumps the owning post's
	// comment count and, for replies, appends the new ID to the parent's
	// reply list. Backfills ID, timestamps and the author summary.
	Create(ctx context.Context, c *Comment) error

	// FetchByPost returns non-deleted top-level comments of a post,
	// newest first, with page/limit offset pagination.
	FetchByPost(ctx context.Context, postID, page, limit int64) ([]*Comment, Pagination, error)

	// FetchReplies returns non-deleted replies of a comment, oldest first.
	FetchReplies(ctx context.Context, parentID, page, limit int64) ([]*Comment, Pagination, error)

	// Edit replaces the content of the actor's own comment and marks it edited.
	Edit(ctx context.Context, actorID, commentID int64, content string) (*Comment, error)

	// SoftDelete tombstones the actor's own comment and decrements the
	// owning post's comment count.
	SoftDelete(ctx context.Context, actorID, commentID int64) error

	// ToggleLike flips the actor's like on a comment and returns the new state.
	ToggleLike(ctx context.Context, actorID, commentID int64) (*LikeResult, error)

	// CountByPost counts non-deleted comments (top-level + replies) of a post.
	// Independent read path from post.CommentCount, usable to detect drift.
	CountByPost(ctx context.Context, postID int64) (int64, error)
}

// CommentRepository 数据存取接口
type CommentRepository interface {
	Store(ctx context.Context, c *Comment) error

	// GetByID returns the comment regardless of its deleted flag.
	// Returns ErrNotFound if the row doesn't exist.
	GetByID(ctx context.Context, id int64) (*Comment, error)

	// Update persists all mutable fields of an existing comment.
	Update(ctx context.Context, c *Comment) error

	// FetchByPost 获取一级评论 (non-deleted, created_at DESC, id DESC tie-break)
	FetchByPost(ctx context.Context, postID int64, offset, limit int64) ([]*Comment, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)

	// FetchReplies 获取子回复 (non-deleted, created_at ASC, id ASC tie-break)
	FetchReplies(ctx context.Context, parentID int64, offset, limit int64) ([]*Comment, error)
	CountReplies(ctx context.Context, parentID int64) (int64, error)

	// CountAllByPost counts non-deleted comments of a post across both levels.
	CountAllByPost(ctx context.Context, postID int64) (int64, error)

	// AppendReply adds replyID to the parent's reply list.
	AppendReply(ctx context.Context, parentID, replyID int64) error
	// RemoveReply prunes replyID from the parent's reply list.
	RemoveReply(ctx context.Context, parentID, replyID int64) error
}

// CommentCountCache caches per-post comment counts for the fast read path.
// A miss returns ErrCacheMiss.
type CommentCountCache interface {
	GetCount(ctx context.Context, postID int64) (int64, error)
	SetCount(ctx context.Context, postID, count int64) error
	IncrCount(ctx context.Context, postID int64) error
	DecrCount(ctx context.Context, postID int64) error
	DelCount(ctx context.Context, postID int64) error
}
