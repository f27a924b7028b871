package response

import "github.com/quillhaven/quillhaven/domain"

type Post struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	CommentCount int64  `json:"commentCount"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`

	Author *User `json:"author,omitempty"`
}

type PostsPagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalPosts  int64 `json:"totalPosts"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPostsPagination(p domain.Pagination) PostsPagination {
	return PostsPagination{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalPosts:  p.TotalItems,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
}

func NewPostFromDomain(p *domain.Post) *Post {
	if p == nil {
		return nil
	}
	return &Post{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt.Format(DateTimeFormat),
		UpdatedAt:    p.UpdatedAt.Format(DateTimeFormat),
		Author:       NewUserFromDomain(p.Author),
	}
}
