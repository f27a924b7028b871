package post

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quillhaven/quillhaven/domain"
)

const bloomSeedBatch = 1000

// Service carries the minimal post lifecycle the comment subsystem leans on:
// a resolvable post ID and a mutable comment counter.
type Service struct {
	postRepo  domain.PostRepository
	userRepo  domain.UserRepository
	bloomRepo domain.BloomRepository
}

var _ domain.PostUsecase = (*Service)(nil)

func NewService(postRepo domain.PostRepository, userRepo domain.UserRepository, bloomRepo domain.BloomRepository) *Service {
	return &Service{
		postRepo:  postRepo,
		userRepo:  userRepo,
		bloomRepo: bloomRepo,
	}
}

func (s *Service) Store(ctx context.Context, p *domain.Post) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	if p.Title == "" || p.Content == "" {
		return fmt.Errorf("title and content are required: %w", domain.ErrBadParamInput)
	}

	p.CommentCount = 0
	if err := s.postRepo.Store(ctx, p); err != nil {
		return err
	}

	if err := s.bloomRepo.Add(ctx, p.ID); err != nil {
		logrus.Errorf("failed to add post %d to bloom filter: %v", p.ID, err)
	}

	s.fillAuthor(ctx, p)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fillAuthor(ctx, p)
	return p, nil
}

func (s *Service) Fetch(ctx context.Context, page, limit int64) ([]*domain.Post, domain.Pagination, error) {
	page, limit = domain.ClampPage(page, limit, domain.DefaultCommentLimit)

	posts, err := s.postRepo.Fetch(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	for _, p := range posts {
		s.fillAuthor(ctx, p)
	}
	return posts, domain.NewPagination(page, limit, total), nil
}

// InitBloomFilter walks all post IDs into the bloom filter at startup so the
// comment service can trust a negative lookup.
func (s *Service) InitBloomFilter(ctx context.Context) error {
	var offset int64
	for {
		ids, err := s.postRepo.FetchIDs(ctx, offset, bloomSeedBatch)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := s.bloomRepo.BulkAdd(ctx, ids); err != nil {
			return err
		}
		offset += int64(len(ids))
	}
}

func (s *Service) fillAuthor(ctx context.Context, p *domain.Post) {
	if p.Author == nil || p.Author.ID == 0 {
		return
	}
	u, err := s.userRepo.GetByID(ctx, p.Author.ID)
	if err != nil {
		logrus.Warnf("failed to resolve author of post %d: %v", p.ID, err)
		return
	}
	p.Author = u.Summary()
}
