package response

import "github.com/quillhaven/quillhaven/domain"

type Comment struct {
	ID        int64   `json:"id"`
	PostID    int64   `json:"postId"`
	Content   string  `json:"content"`
	ParentID  *int64  `json:"parentCommentId"`
	Replies   []int64 `json:"replies"`
	Likes     int64   `json:"likes"`
	LikedBy   []int64 `json:"likedBy"`
	IsEdited  bool    `json:"isEdited"`
	EditedAt  *string `json:"editedAt,omitempty"`
	IsDeleted bool    `json:"isDeleted"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`

	// Author 评论作者信息
	Author *User `json:"author,omitempty"`
}

// NewCommentFromDomain: Domain -> Response. Top-level comments serialize
// parentCommentId as null, replies and likedBy as [] rather than null.
func NewCommentFromDomain(c *domain.Comment) *Comment {
	if c == nil {
		return nil
	}

	res := &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Replies:   c.ReplyIDs,
		Likes:     c.Likes,
		LikedBy:   c.LikedBy,
		IsEdited:  c.IsEdited,
		IsDeleted: c.IsDeleted,
		CreatedAt: c.CreatedAt.Format(DateTimeFormat),
		UpdatedAt: c.UpdatedAt.Format(DateTimeFormat),
		Author:    NewUserFromDomain(c.Author),
	}
	if c.ParentID != 0 {
		parentID := c.ParentID
		res.ParentID = &parentID
	}
	if res.Replies == nil {
		res.Replies = []int64{}
	}
	if res.LikedBy == nil {
		res.LikedBy = []int64{}
	}
	if c.EditedAt != nil {
		editedAt := c.EditedAt.Format(DateTimeFormat)
		res.EditedAt = &editedAt
	}
	return res
}

func NewCommentsFromDomain(comments []*domain.Comment) []*Comment {
	res := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		res = append(res, NewCommentFromDomain(c))
	}
	return res
}

// CommentsPagination is the pagination envelope of top-level listings.
type CommentsPagination struct {
	CurrentPage   int64 `json:"currentPage"`
	TotalPages    int64 `json:"totalPages"`
	TotalComments int64 `json:"totalComments"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

func NewCommentsPagination(p domain.Pagination) CommentsPagination {
	return CommentsPagination{
		CurrentPage:   p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalComments: p.TotalItems,
		HasNextPage:   p.HasNextPage,
		HasPrevPage:   p.HasPrevPage,
	}
}

// RepliesPagination is the pagination envelope of reply listings; same shape,
// total scoped to "replies".
type RepliesPagination struct {
	CurrentPage  int64 `json:"currentPage"`
	TotalPages   int64 `json:"totalPages"`
	TotalReplies int64 `json:"totalReplies"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

func NewRepliesPagination(p domain.Pagination) RepliesPagination {
	return RepliesPagination{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalReplies: p.TotalItems,
		HasNextPage:  p.HasNextPage,
		HasPrevPage:  p.HasPrevPage,
	}
}
