package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhaven/quillhaven/domain"
)

// the embedded interfaces cover the methods the reconciler never touches

type recountCommentRepo struct {
	domain.CommentRepository
	mu     sync.Mutex
	counts map[int64]int64
	calls  int
}

func (r *recountCommentRepo) CountAllByPost(_ context.Context, postID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.counts[postID], nil
}

type recountPostRepo struct {
	domain.PostRepository
	mu  sync.Mutex
	set map[int64]int64
}

func (r *recountPostRepo) SetCommentCount(_ context.Context, id, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set[id] = count
	return nil
}

type recountCache struct {
	domain.CommentCountCache
	mu  sync.Mutex
	set map[int64]int64
}

func (c *recountCache) SetCount(_ context.Context, postID, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set[postID] = count
	return nil
}

func TestCountsReconciler_FlushesOnTick(t *testing.T) {
	commentRepo := &recountCommentRepo{counts: map[int64]int64{7: 19}}
	postRepo := &recountPostRepo{set: make(map[int64]int64)}
	cache := &recountCache{set: make(map[int64]int64)}

	w := NewCountsReconciler(commentRepo, postRepo, cache, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	w.Enqueue(7)

	require.Eventually(t, func() bool {
		postRepo.mu.Lock()
		defer postRepo.mu.Unlock()
		return postRepo.set[7] == 19
	}, time.Second, time.Millisecond)

	cache.mu.Lock()
	assert.Equal(t, int64(19), cache.set[7])
	cache.mu.Unlock()

	cancel()
	<-done
}

func TestCountsReconciler_DeduplicatesHints(t *testing.T) {
	commentRepo := &recountCommentRepo{counts: map[int64]int64{7: 3}}
	postRepo := &recountPostRepo{set: make(map[int64]int64)}
	cache := &recountCache{set: make(map[int64]int64)}

	w := NewCountsReconciler(commentRepo, postRepo, cache, time.Hour)

	// hints land in the channel before Start drains them
	w.Enqueue(7)
	w.Enqueue(7)
	w.Enqueue(7)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	// give the loop time to drain the hints, then trigger the final flush
	require.Eventually(t, func() bool {
		return len(w.ch) == 0
	}, time.Second, time.Millisecond)
	cancel()
	<-done

	commentRepo.mu.Lock()
	assert.Equal(t, 1, commentRepo.calls, "duplicate hints collapse into one recount")
	commentRepo.mu.Unlock()

	postRepo.mu.Lock()
	assert.Equal(t, int64(3), postRepo.set[7])
	postRepo.mu.Unlock()
}

func TestCountsReconciler_FullChannelDropsHint(t *testing.T) {
	commentRepo := &recountCommentRepo{counts: map[int64]int64{}}
	postRepo := &recountPostRepo{set: make(map[int64]int64)}
	cache := &recountCache{set: make(map[int64]int64)}

	w := NewCountsReconciler(commentRepo, postRepo, cache, time.Hour)

	// Enqueue never blocks, even past the channel capacity
	for i := 0; i < 2000; i++ {
		w.Enqueue(int64(i))
	}
	assert.Equal(t, 1024, len(w.ch))
}
