package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/repository/mysql/model"
)

type postRepository struct {
	DB *gorm.DB
}

var _ domain.PostRepository = (*postRepository)(nil)

func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{
		DB: db,
	}
}

func (p *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var m model.Post
	err := p.DB.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	res := m.ToDomain()
	return &res, nil
}

func (p *postRepository) Fetch(ctx context.Context, offset, limit int64) ([]*domain.Post, error) {
	var posts []model.Post
	err := p.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Post, 0, len(posts))
	for i := range posts {
		domainPost := posts[i].ToDomain()
		res = append(res, &domainPost)
	}
	return res, nil
}

func (p *postRepository) FetchIDs(ctx context.Context, offset, limit int64) ([]int64, error) {
	var ids []int64
	err := p.DB.WithContext(ctx).Model(&model.Post{}).
		Order("id ASC").
		Offset(int(offset)).
		Limit(int(limit)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (p *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.DB.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (p *postRepository) Store(ctx context.Context, post *domain.Post) error {
	m := model.NewPostFromDomain(post)
	if err := p.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	post.ID = m.ID
	post.CreatedAt = m.CreatedAt
	post.UpdatedAt = m.UpdatedAt
	return nil
}

// AddCommentCount adjusts the denormalized counter in a single statement.
// GREATEST floors it at zero so a stale decrement can never drive it negative.
func (p *postRepository) AddCommentCount(ctx context.Context, id int64, delta int64) error {
	result := p.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("GREATEST(comment_count + ?, 0)", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *postRepository) SetCommentCount(ctx context.Context, id int64, count int64) error {
	result := p.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", count)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
