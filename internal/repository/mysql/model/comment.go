package model

import (
	"time"

	"github.com/quillhaven/quillhaven/domain"
)

type Comment struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	PostID    int64      `gorm:"column:post_id;not null;index"`
	AuthorID  int64      `gorm:"column:author_id;not null"`
	Content   string     `gorm:"type:text;not null"`
	ParentID  int64      `gorm:"column:parent_id;default:0;index"`
	ReplyIDs  []int64    `gorm:"column:reply_ids;serializer:json"`
	Likes     int64      `gorm:"column:likes;default:0"`
	LikedBy   []int64    `gorm:"column:liked_by;serializer:json"`
	IsEdited  bool       `gorm:"column:is_edited;default:0"`
	EditedAt  *time.Time `gorm:"column:edited_at"`
	IsDeleted bool       `gorm:"column:is_deleted;default:0"`
	CreatedAt time.Time  `gorm:"type:datetime"`
	UpdatedAt time.Time  `gorm:"type:datetime"`
}

func (Comment) TableName() string {
	return "comment"
}

func NewCommentFromDomain(c *domain.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		ParentID:  c.ParentID,
		ReplyIDs:  c.ReplyIDs,
		Likes:     c.Likes,
		LikedBy:   c.LikedBy,
		IsEdited:  c.IsEdited,
		EditedAt:  c.EditedAt,
		IsDeleted: c.IsDeleted,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *Comment) ToDomain() domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		ParentID:  m.ParentID,
		ReplyIDs:  m.ReplyIDs,
		Likes:     m.Likes,
		LikedBy:   m.LikedBy,
		IsEdited:  m.IsEdited,
		EditedAt:  m.EditedAt,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
