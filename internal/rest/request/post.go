package request

import "github.com/quillhaven/quillhaven/domain"

type CreatePost struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (r *CreatePost) ToDomain() domain.Post {
	return domain.Post{
		Title:   r.Title,
		Content: r.Content,
	}
}
