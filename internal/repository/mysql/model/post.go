package model

import (
	"time"

	"github.com/quillhaven/quillhaven/domain"
)

type Post struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	AuthorID     int64     `gorm:"column:author_id;not null"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Content      string    `gorm:"type:text;not null"`
	CommentCount int64     `gorm:"column:comment_count;default:0"`
	CreatedAt    time.Time `gorm:"type:datetime"`
	UpdatedAt    time.Time `gorm:"type:datetime"`
}

func (Post) TableName() string {
	return "post"
}

func NewPostFromDomain(p *domain.Post) *Post {
	m := &Post{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Author != nil {
		m.AuthorID = p.Author.ID
	}
	return m
}

func (m *Post) ToDomain() domain.Post {
	return domain.Post{
		ID:           m.ID,
		Title:        m.Title,
		Content:      m.Content,
		CommentCount: m.CommentCount,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Author:       &domain.User{ID: m.AuthorID},
	}
}
