package comment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/quillhaven/quillhaven/domain"
)

type service struct {
	commentRepo domain.CommentRepository
	postRepo    domain.PostRepository
	userRepo    domain.UserRepository
	bloomRepo   domain.BloomRepository
	countCache  domain.CommentCountCache
	reconciler  domain.CounterReconciler

	countGroup singleflight.Group
}

var _ domain.CommentUsecase = (*service)(nil)

func NewService(
	commentRepo domain.CommentRepository,
	postRepo domain.PostRepository,
	userRepo domain.UserRepository,
	bloomRepo domain.BloomRepository,
	countCache domain.CommentCountCache,
	reconciler domain.CounterReconciler,
) *service {
	return &service{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		bloomRepo:   bloomRepo,
		countCache:  countCache,
		reconciler:  reconciler,
	}
}

func (s *service) postMustExist(ctx context.Context, id int64) error {
	exists, err := s.bloomRepo.Exists(ctx, id)
	if err == nil && !exists {
		logrus.Warnf("bloom filter says post %d does not exist", id)
		return fmt.Errorf("post: %w", domain.ErrNotFound)
	}

	return nil
}

func (s *service) Create(ctx context.Context, c *domain.Comment) error {
	c.Content = strings.TrimSpace(c.Content)
	if c.Content == "" {
		return fmt.Errorf("content: %w", domain.ErrBadParamInput)
	}

	if err := s.postMustExist(ctx, c.PostID); err != nil {
		return err
	}
	if _, err := s.postRepo.GetByID(ctx, c.PostID); err != nil {
		if err == domain.ErrNotFound {
			return fmt.Errorf("post: %w", domain.ErrNotFound)
		}
		return err
	}

	if c.ParentID != 0 {
		parent, err := s.commentRepo.GetByID(ctx, c.ParentID)
		if err != nil {
			if err == domain.ErrNotFound {
				return fmt.Errorf("parent comment: %w", domain.ErrNotFound)
			}
			return err
		}
		// only one level of nesting: a reply always hangs off a
		// top-level comment
		if parent.ParentID != 0 {
			return fmt.Errorf("cannot reply to a reply: %w", domain.ErrBadParamInput)
		}
		if parent.PostID != c.PostID {
			return fmt.Errorf("parent comment belongs to another post: %w", domain.ErrBadParamInput)
		}
	}

	c.ReplyIDs = []int64{}
	c.Likes = 0
	c.LikedBy = []int64{}
	c.IsEdited = false
	c.EditedAt = nil
	c.IsDeleted = false

	if err := s.commentRepo.Store(ctx, c); err != nil {
		return err
	}

	// The comment row, the parent's reply list and the post counter are
	// three separate writes. A failed side write is logged and handed to
	// the reconciler instead of failing the already-persisted comment.
	if c.ParentID != 0 {
		if err := s.commentRepo.AppendReply(ctx, c.ParentID, c.ID); err != nil {
			logrus.Errorf("failed to append reply %d to comment %d: %v", c.ID, c.ParentID, err)
		}
	}
	if err := s.postRepo.AddCommentCount(ctx, c.PostID, 1); err != nil {
		logrus.Errorf("failed to increment comment count of post %d: %v", c.PostID, err)
		s.reconciler.Enqueue(c.PostID)
	}
	if err := s.countCache.IncrCount(ctx, c.PostID); err != nil {
		logrus.Warnf("failed to bump cached comment count of post %d: %v", c.PostID, err)
	}

	s.fillAuthors(ctx, []*domain.Comment{c})
	return nil
}

func (s *service) FetchByPost(ctx context.Context, postID, page, limit int64) ([]*domain.Comment, domain.Pagination, error) {
	page, limit = domain.ClampPage(page, limit, domain.DefaultCommentLimit)

	if err := s.postMustExist(ctx, postID); err != nil {
		return nil, domain.Pagination{}, err
	}

	var (
		items []*domain.Comment
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.commentRepo.FetchByPost(gctx, postID, (page-1)*limit, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.commentRepo.CountByPost(gctx, postID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Pagination{}, err
	}

	s.fillAuthors(ctx, items)
	return items, domain.NewPagination(page, limit, total), nil
}

func (s *service) FetchReplies(ctx context.Context, parentID, page, limit int64) ([]*domain.Comment, domain.Pagination, error) {
	page, limit = domain.ClampPage(page, limit, domain.DefaultReplyLimit)

	var (
		items []*domain.Comment
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.commentRepo.FetchReplies(gctx, parentID, (page-1)*limit, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.commentRepo.CountReplies(gctx, parentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Pagination{}, err
	}

	s.fillAuthors(ctx, items)
	return items, domain.NewPagination(page, limit, total), nil
}

func (s *service) Edit(ctx context.Context, actorID, commentID int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content: %w", domain.ErrBadParamInput)
	}

	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	c.Content = content
	c.IsEdited = true
	c.EditedAt = &now

	if err := s.commentRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.fillAuthors(ctx, []*domain.Comment{c})
	return c, nil
}

func (s *service) SoftDelete(ctx context.Context, actorID, commentID int64) error {
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != actorID {
		return domain.ErrForbidden
	}
	if c.IsDeleted {
		// already tombstoned; decrementing again would make the
		// counter drift downward on retry
		return nil
	}

	c.IsDeleted = true
	c.Content = domain.DeletedCommentContent

	if err := s.commentRepo.Update(ctx, c); err != nil {
		return err
	}

	if err := s.postRepo.AddCommentCount(ctx, c.PostID, -1); err != nil {
		logrus.Errorf("failed to decrement comment count of post %d: %v", c.PostID, err)
		s.reconciler.Enqueue(c.PostID)
	}
	if err := s.countCache.DecrCount(ctx, c.PostID); err != nil {
		logrus.Warnf("failed to drop cached comment count of post %d: %v", c.PostID, err)
	}
	if c.ParentID != 0 {
		if err := s.commentRepo.RemoveReply(ctx, c.ParentID, c.ID); err != nil {
			logrus.Errorf("failed to prune reply %d from comment %d: %v", c.ID, c.ParentID, err)
		}
	}

	return nil
}

func (s *service) ToggleLike(ctx context.Context, actorID, commentID int64) (*domain.LikeResult, error) {
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if c.LikedByUser(actorID) {
		kept := make([]int64, 0, len(c.LikedBy))
		for _, id := range c.LikedBy {
			if id != actorID {
				kept = append(kept, id)
			}
		}
		c.LikedBy = kept
		if c.Likes > 0 {
			c.Likes--
		}
	} else {
		c.LikedBy = append(c.LikedBy, actorID)
		c.Likes++
	}

	if err := s.commentRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	likedBy := c.LikedBy
	if likedBy == nil {
		likedBy = []int64{}
	}
	return &domain.LikeResult{
		Likes:   c.Likes,
		LikedBy: likedBy,
		Liked:   c.LikedByUser(actorID),
	}, nil
}

func (s *service) CountByPost(ctx context.Context, postID int64) (int64, error) {
	count, err := s.countCache.GetCount(ctx, postID)
	if err == nil {
		return count, nil
	}
	if err != domain.ErrCacheMiss {
		logrus.Warnf("comment count cache read failed for post %d: %v", postID, err)
	}

	// singleflight keeps a cold key from stampeding the store
	res, err, _ := s.countGroup.Do(strconv.FormatInt(postID, 10), func() (interface{}, error) {
		count, err := s.commentRepo.CountAllByPost(ctx, postID)
		if err != nil {
			return int64(0), err
		}
		if err := s.countCache.SetCount(ctx, postID, count); err != nil {
			logrus.Warnf("failed to warm comment count cache for post %d: %v", postID, err)
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// fillAuthors resolves the denormalized author summaries in one batched
// lookup. A missing author leaves the summary nil rather than failing the
// listing.
func (s *service) fillAuthors(ctx context.Context, comments []*domain.Comment) {
	if len(comments) == 0 {
		return
	}

	idSet := make(map[int64]struct{}, len(comments))
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		if _, ok := idSet[c.AuthorID]; ok {
			continue
		}
		idSet[c.AuthorID] = struct{}{}
		ids = append(ids, c.AuthorID)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		logrus.Errorf("failed to resolve comment authors: %v", err)
		return
	}

	byID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, c := range comments {
		if u, ok := byID[c.AuthorID]; ok {
			c.Author = u.Summary()
		}
	}
}
