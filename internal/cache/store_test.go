package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/cache"
)

const (
	stubCommentLimit = 10
	stubReplyLimit   = 5
)

// stubAPI serves canned pages straight from in-memory slices. Top-level
// lists are held newest first, reply lists ascending, mirroring the server.
type stubAPI struct {
	mu       sync.Mutex
	comments map[int64][]*domain.Comment
	replies  map[int64][]*domain.Comment
	counts   map[int64]int64

	commentFetches int
	replyFetches   int

	err    error
	gate   chan struct{}
	nextID int64
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		comments: make(map[int64][]*domain.Comment),
		replies:  make(map[int64][]*domain.Comment),
		counts:   make(map[int64]int64),
		nextID:   1000,
	}
}

func pageSlice(list []*domain.Comment, page, limit int64) ([]*domain.Comment, domain.Pagination) {
	total := int64(len(list))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return list[start:end], domain.NewPagination(page, limit, total)
}

func (a *stubAPI) FetchComments(_ context.Context, postID, page int64) (*cache.CommentPage, error) {
	if a.gate != nil {
		<-a.gate
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commentFetches++
	if a.err != nil {
		return nil, a.err
	}
	items, pagination := pageSlice(a.comments[postID], page, stubCommentLimit)
	return &cache.CommentPage{Comments: items, Pagination: pagination}, nil
}

func (a *stubAPI) FetchReplies(_ context.Context, commentID, page int64) (*cache.ReplyPage, error) {
	if a.gate != nil {
		<-a.gate
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replyFetches++
	if a.err != nil {
		return nil, a.err
	}
	items, pagination := pageSlice(a.replies[commentID], page, stubReplyLimit)
	return &cache.ReplyPage{Replies: items, Pagination: pagination}, nil
}

func (a *stubAPI) FetchCount(_ context.Context, postID int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return 0, a.err
	}
	return a.counts[postID], nil
}

func (a *stubAPI) CreateComment(_ context.Context, content string, postID, parentCommentID int64) (*domain.Comment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	a.nextID++
	return &domain.Comment{
		ID:        a.nextID,
		PostID:    postID,
		ParentID:  parentCommentID,
		Content:   content,
		ReplyIDs:  []int64{},
		LikedBy:   []int64{},
		CreatedAt: time.Now(),
	}, nil
}

func (a *stubAPI) UpdateComment(_ context.Context, commentID int64, content string) (*domain.Comment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	for _, list := range a.comments {
		for _, c := range list {
			if c.ID == commentID {
				dup := *c
				dup.Content = content
				dup.IsEdited = true
				return &dup, nil
			}
		}
	}
	return &domain.Comment{ID: commentID, Content: content, IsEdited: true}, nil
}

func (a *stubAPI) DeleteComment(_ context.Context, commentID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *stubAPI) ToggleLike(_ context.Context, commentID int64) (*domain.LikeResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return &domain.LikeResult{Likes: 1, LikedBy: []int64{7}, Liked: true}, nil
}

func (a *stubAPI) setErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// seedComments fills a post with n top-level comments, newest first, with
// descending IDs starting at startID+n-1.
func (a *stubAPI) seedComments(postID int64, n int) {
	list := make([]*domain.Comment, 0, n)
	for i := n; i >= 1; i-- {
		list = append(list, &domain.Comment{
			ID:       int64(i),
			PostID:   postID,
			Content:  faker.Sentence(),
			ReplyIDs: []int64{},
			LikedBy:  []int64{},
		})
	}
	a.comments[postID] = list
	a.counts[postID] = int64(n)
}

func (a *stubAPI) seedReplies(parentID, postID int64, n int) {
	list := make([]*domain.Comment, 0, n)
	for i := 1; i <= n; i++ {
		list = append(list, &domain.Comment{
			ID:       int64(100 + i),
			PostID:   postID,
			ParentID: parentID,
			Content:  faker.Sentence(),
			LikedBy:  []int64{},
		})
	}
	a.replies[parentID] = list
}

func TestFetchComments_ReplacesList(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	require.Len(t, store.Comments(1), 3)

	// the server list shrank; a refetch must not keep stale entries
	api.comments[1] = api.comments[1][:1]
	require.NoError(t, store.FetchComments(context.Background(), 1))
	assert.Len(t, store.Comments(1), 1)

	p, ok := store.CommentsPagination(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.CurrentPage)
	assert.False(t, p.HasNextPage)
}

func TestLoadMoreComments_CompletesAcrossPages(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 15)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	assert.Len(t, store.Comments(1), 10)
	p, _ := store.CommentsPagination(1)
	assert.True(t, p.HasNextPage)

	require.NoError(t, store.LoadMoreComments(context.Background(), 1))
	got := store.Comments(1)
	require.Len(t, got, 15)

	seen := make(map[int64]bool, len(got))
	for _, c := range got {
		assert.False(t, seen[c.ID], "comment %d appears twice", c.ID)
		seen[c.ID] = true
	}

	p, _ = store.CommentsPagination(1)
	assert.False(t, p.HasNextPage)
	assert.Equal(t, int64(2), p.CurrentPage)

	// exhausted cursor makes further load-mores free
	calls := api.commentFetches
	require.NoError(t, store.LoadMoreComments(context.Background(), 1))
	assert.Equal(t, calls, api.commentFetches)
}

func TestLoadMoreComments_DedupesShiftedPage(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 15)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))

	// a comment lands at the top between the two fetches, shifting page 2
	fresh := &domain.Comment{ID: 99, PostID: 1, Content: faker.Sentence()}
	api.comments[1] = append([]*domain.Comment{fresh}, api.comments[1]...)

	require.NoError(t, store.LoadMoreComments(context.Background(), 1))
	got := store.Comments(1)

	seen := make(map[int64]bool, len(got))
	for _, c := range got {
		assert.False(t, seen[c.ID], "comment %d appears twice", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, got, 15)
}

func TestFetchComments_ErrorKeepsData(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))

	boom := errors.New("server unreachable")
	api.setErr(boom)
	err := store.FetchComments(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.Comments(1), 3, "failed refresh keeps the merged data")
	assert.ErrorIs(t, store.CommentsErr(1), boom)
	assert.False(t, store.CommentsLoading(1))

	// the error is not sticky once a retry lands
	api.setErr(nil)
	require.NoError(t, store.FetchComments(context.Background(), 1))
	assert.NoError(t, store.CommentsErr(1))
}

func TestFetchComments_InFlightGuard(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	api.gate = make(chan struct{})
	store := cache.NewCommentStore(api)

	done := make(chan error, 1)
	go func() {
		done <- store.FetchComments(context.Background(), 1)
	}()

	// wait until the first fetch holds the key
	require.Eventually(t, func() bool {
		return store.CommentsLoading(1)
	}, time.Second, time.Millisecond)

	err := store.FetchComments(context.Background(), 1)
	assert.ErrorIs(t, err, cache.ErrFetchInFlight)

	close(api.gate)
	require.NoError(t, <-done)
	assert.False(t, store.CommentsLoading(1))
	assert.Len(t, store.Comments(1), 3)
}

func TestFetchReplies_AndLoadMore(t *testing.T) {
	api := newStubAPI()
	api.seedReplies(10, 1, 7)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchReplies(context.Background(), 10))
	assert.Len(t, store.Replies(10), 5)
	p, ok := store.RepliesPagination(10)
	require.True(t, ok)
	assert.True(t, p.HasNextPage)
	assert.Equal(t, int64(7), p.TotalItems)

	require.NoError(t, store.LoadMoreReplies(context.Background(), 10))
	got := store.Replies(10)
	require.Len(t, got, 7)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID, got[i].ID, "replies stay in ascending order")
	}
}

func TestFetchCount(t *testing.T) {
	api := newStubAPI()
	api.counts[1] = 42
	store := cache.NewCommentStore(api)

	count, err := store.FetchCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)

	cached, ok := store.Count(1)
	require.True(t, ok)
	assert.Equal(t, int64(42), cached)
}

func TestCreateComment_TopLevelPrepends(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	_, err := store.FetchCount(context.Background(), 1)
	require.NoError(t, err)

	created, err := store.CreateComment(context.Background(), "fresh take", 1, 0)
	require.NoError(t, err)

	got := store.Comments(1)
	require.Len(t, got, 4)
	assert.Equal(t, created.ID, got[0].ID, "new comment shows up first")

	count, _ := store.Count(1)
	assert.Equal(t, int64(4), count)
	assert.False(t, store.CreateLoading())
}

func TestCreateComment_ReplyUpdatesParent(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	parent := store.Comments(1)[0]

	created, err := store.CreateComment(context.Background(), "me too", 1, parent.ID)
	require.NoError(t, err)

	replies := store.Replies(parent.ID)
	require.Len(t, replies, 1)
	assert.Equal(t, created.ID, replies[0].ID)

	// the cached parent now carries the reply ID
	for _, c := range store.Comments(1) {
		if c.ID == parent.ID {
			assert.Contains(t, c.ReplyIDs, created.ID)
		}
	}

	count, _ := store.Count(1)
	assert.Equal(t, int64(1), count, "replies count toward the post total")
}

func TestCreateComment_ErrorLeavesCacheAlone(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	api.setErr(errors.New("rejected"))

	_, err := store.CreateComment(context.Background(), "nope", 1, 0)
	assert.Error(t, err)
	assert.Len(t, store.Comments(1), 3)
	assert.False(t, store.CreateLoading())
}

func TestUpdateComment_InPlace(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	target := store.Comments(1)[1]

	updated, err := store.UpdateComment(context.Background(), target.ID, "refined take")
	require.NoError(t, err)
	assert.True(t, updated.IsEdited)

	got := store.Comments(1)
	require.Len(t, got, 3)
	assert.Equal(t, target.ID, got[1].ID, "edited comment keeps its position")
	assert.Equal(t, "refined take", got[1].Content)
	assert.False(t, store.UpdateLoading(target.ID))
}

func TestDeleteComment(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	_, err := store.FetchCount(context.Background(), 1)
	require.NoError(t, err)

	victim := store.Comments(1)[0]
	require.NoError(t, store.DeleteComment(context.Background(), victim.ID))

	got := store.Comments(1)
	assert.Len(t, got, 2)
	for _, c := range got {
		assert.NotEqual(t, victim.ID, c.ID)
	}
	count, _ := store.Count(1)
	assert.Equal(t, int64(2), count)

	// deleting something the cache never held must not drift the count
	require.NoError(t, store.DeleteComment(context.Background(), 9999))
	count, _ = store.Count(1)
	assert.Equal(t, int64(2), count)
}

func TestDeleteComment_ReplyScrubsParent(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 2)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	parent := store.Comments(1)[0]

	created, err := store.CreateComment(context.Background(), "short lived", 1, parent.ID)
	require.NoError(t, err)
	require.NoError(t, store.DeleteComment(context.Background(), created.ID))

	assert.Empty(t, store.Replies(parent.ID))
	for _, c := range store.Comments(1) {
		assert.NotContains(t, c.ReplyIDs, created.ID)
	}
}

func TestToggleLike_PatchesOnlyLikeState(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	target := store.Comments(1)[2]
	originalContent := target.Content

	res, err := store.ToggleLike(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	got := store.Comments(1)
	assert.Equal(t, target.ID, got[2].ID, "liked comment keeps its position")
	assert.Equal(t, originalContent, got[2].Content)
	assert.Equal(t, int64(1), got[2].Likes)
	assert.Equal(t, []int64{7}, got[2].LikedBy)
	assert.False(t, store.LikeLoading(target.ID))
}

func TestClearComments(t *testing.T) {
	api := newStubAPI()
	api.seedComments(1, 3)
	store := cache.NewCommentStore(api)

	require.NoError(t, store.FetchComments(context.Background(), 1))
	store.ClearComments(1)

	assert.Empty(t, store.Comments(1))
	_, ok := store.CommentsPagination(1)
	assert.False(t, ok)
}
