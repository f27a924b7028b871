package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/repository/mysql/model"
)

type commentRepository struct {
	DB *gorm.DB
}

var _ domain.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (c *commentRepository) Store(ctx context.Context, comment *domain.Comment) error {
	m := model.NewCommentFromDomain(comment)
	if err := c.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	comment.ID = m.ID
	comment.CreatedAt = m.CreatedAt
	comment.UpdatedAt = m.UpdatedAt
	return nil
}

func (c *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var m model.Comment
	err := c.DB.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	res := m.ToDomain()
	return &res, nil
}

func (c *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	m := model.NewCommentFromDomain(comment)
	result := c.DB.WithContext(ctx).Save(m)
	if result.Error != nil {
		return result.Error
	}
	comment.UpdatedAt = m.UpdatedAt
	return nil
}

func (c *commentRepository) FetchByPost(ctx context.Context, postID int64, offset, limit int64) ([]*domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("post_id = ? AND parent_id = 0 AND is_deleted = ?", postID, false).
		Order("created_at DESC, id DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return toDomainComments(comments), nil
}

func (c *commentRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := c.DB.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND parent_id = 0 AND is_deleted = ?", postID, false).
		Count(&count).Error
	return count, err
}

func (c *commentRepository) FetchReplies(ctx context.Context, parentID int64, offset, limit int64) ([]*domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at ASC, id ASC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return toDomainComments(comments), nil
}

func (c *commentRepository) CountReplies(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := c.DB.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Count(&count).Error
	return count, err
}

func (c *commentRepository) CountAllByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := c.DB.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Count(&count).Error
	return count, err
}

func (c *commentRepository) AppendReply(ctx context.Context, parentID, replyID int64) error {
	var parent model.Comment
	if err := c.DB.WithContext(ctx).First(&parent, "id = ?", parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	for _, id := range parent.ReplyIDs {
		if id == replyID {
			return nil
		}
	}
	parent.ReplyIDs = append(parent.ReplyIDs, replyID)
	return c.DB.WithContext(ctx).Model(&parent).
		Select("reply_ids").
		Updates(model.Comment{ReplyIDs: parent.ReplyIDs}).Error
}

func (c *commentRepository) RemoveReply(ctx context.Context, parentID, replyID int64) error {
	var parent model.Comment
	if err := c.DB.WithContext(ctx).First(&parent, "id = ?", parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	kept := make([]int64, 0, len(parent.ReplyIDs))
	removed := false
	for _, id := range parent.ReplyIDs {
		if id == replyID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return nil
	}
	parent.ReplyIDs = kept
	return c.DB.WithContext(ctx).Model(&parent).
		Select("reply_ids").
		Updates(model.Comment{ReplyIDs: parent.ReplyIDs}).Error
}

func toDomainComments(comments []model.Comment) []*domain.Comment {
	res := make([]*domain.Comment, 0, len(comments))
	for i := range comments {
		domainComment := comments[i].ToDomain()
		res = append(res, &domainComment)
	}
	return res
}
