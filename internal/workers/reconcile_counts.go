package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quillhaven/quillhaven/domain"
)

// countsReconciler recomputes post.comment_count from the comment store for
// posts whose counter writes failed. The cached comment counter is rewritten
// at the same time so both read paths agree again.
type countsReconciler struct {
	commentRepo domain.CommentRepository
	postRepo    domain.PostRepository
	countCache  domain.CommentCountCache
	ch          chan int64
	interval    time.Duration
}

var _ domain.CounterReconciler = (*countsReconciler)(nil)

func NewCountsReconciler(commentRepo domain.CommentRepository, postRepo domain.PostRepository, countCache domain.CommentCountCache, interval time.Duration) *countsReconciler {
	return &countsReconciler{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		countCache:  countCache,
		ch:          make(chan int64, 1024),
		interval:    interval,
	}
}

func (w *countsReconciler) Enqueue(postID int64) {
	select {
	case w.ch <- postID:
	default:
		logrus.Info("countsReconciler's channel is full, hint dropped")
	}
}

func (w *countsReconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	pending := make(map[int64]struct{})
	for {
		select {
		case postID := <-w.ch:
			pending[postID] = struct{}{}
		case <-ticker.C:
			w.flush(ctx, pending)
			pending = make(map[int64]struct{})
		case <-ctx.Done():
			logrus.Info("shutting down countsReconciler, flushing remaining hints...")
			w.flush(context.Background(), pending)
			return
		}
	}
}

func (w *countsReconciler) flush(ctx context.Context, pending map[int64]struct{}) {
	for postID := range pending {
		count, err := w.commentRepo.CountAllByPost(ctx, postID)
		if err != nil {
			logrus.Errorf("failed to recount comments of post %d: %v", postID, err)
			continue
		}
		if err := w.postRepo.SetCommentCount(ctx, postID, count); err != nil {
			logrus.Errorf("failed to reconcile comment count of post %d: %v", postID, err)
			continue
		}
		if err := w.countCache.SetCount(ctx, postID, count); err != nil {
			logrus.Warnf("failed to refresh cached comment count of post %d: %v", postID, err)
		}
		logrus.Infof("reconciled comment count of post %d to %d", postID, count)
	}
}
