package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/quillhaven/quillhaven/domain"
)

// ErrFetchInFlight is returned when a fetch for the same key is already
// running; the caller simply waits for the first one to land.
var ErrFetchInFlight = errors.New("a fetch for this key is already in flight")

type keyKind int8

const (
	kindComments keyKind = iota
	kindReplies
)

type fetchKey struct {
	kind keyKind
	id   int64
}

// CommentStore is the consuming side's incrementally-updated mirror of
// fetched comments and replies. It merges independent paginated fetches and
// mutation results into one consistent view per post / parent comment:
// ordered lists keyed by post ID and parent comment ID, cached comment
// counts, pagination cursors and per-operation loading flags.
//
// Every state commit happens under one mutex, so cache mutations are
// serialized even while several API calls are in flight. A failed call never
// clears previously merged data; it only records the error for its key.
type CommentStore struct {
	api CommentAPI

	mu                sync.Mutex
	comments          map[int64][]*domain.Comment // by post ID
	replies           map[int64][]*domain.Comment // by parent comment ID
	counts            map[int64]int64             // by post ID
	pagination        map[int64]domain.Pagination // by post ID
	repliesPagination map[int64]domain.Pagination // by parent comment ID

	fetching  map[fetchKey]bool
	fetchErrs map[fetchKey]error

	createLoading bool
	updateLoading map[int64]bool
	deleteLoading map[int64]bool
	likeLoading   map[int64]bool
}

func NewCommentStore(api CommentAPI) *CommentStore {
	return &CommentStore{
		api:               api,
		comments:          make(map[int64][]*domain.Comment),
		replies:           make(map[int64][]*domain.Comment),
		counts:            make(map[int64]int64),
		pagination:        make(map[int64]domain.Pagination),
		repliesPagination: make(map[int64]domain.Pagination),
		fetching:          make(map[fetchKey]bool),
		fetchErrs:         make(map[fetchKey]error),
		updateLoading:     make(map[int64]bool),
		deleteLoading:     make(map[int64]bool),
		likeLoading:       make(map[int64]bool),
	}
}

// beginFetch flips the key into its loading state, rejecting overlap.
func (s *CommentStore) beginFetch(key fetchKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetching[key] {
		return ErrFetchInFlight
	}
	s.fetching[key] = true
	return nil
}

// endFetch leaves the loading state and records the call's outcome.
func (s *CommentStore) endFetch(key fetchKey, err error) {
	delete(s.fetching, key)
	if err != nil {
		s.fetchErrs[key] = err
	} else {
		delete(s.fetchErrs, key)
	}
}

// FetchComments loads page 1 for a post and replaces the cached list
// wholesale, guarding against stale appends when a view reloads.
func (s *CommentStore) FetchComments(ctx context.Context, postID int64) error {
	key := fetchKey{kindComments, postID}
	if err := s.beginFetch(key); err != nil {
		return err
	}

	page, err := s.api.FetchComments(ctx, postID, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch(key, err)
	if err != nil {
		return err
	}

	s.comments[postID] = append([]*domain.Comment(nil), page.Comments...)
	s.pagination[postID] = page.Pagination
	return nil
}

// LoadMoreComments appends the next page for a post. It is a no-op when the
// key has no next page or a fetch for it is already in flight.
func (s *CommentStore) LoadMoreComments(ctx context.Context, postID int64) error {
	key := fetchKey{kindComments, postID}

	s.mu.Lock()
	if s.fetching[key] {
		s.mu.Unlock()
		return nil
	}
	nextPage := int64(1)
	if p, ok := s.pagination[postID]; ok {
		if !p.HasNextPage {
			s.mu.Unlock()
			return nil
		}
		nextPage = p.CurrentPage + 1
	}
	s.fetching[key] = true
	s.mu.Unlock()

	page, err := s.api.FetchComments(ctx, postID, nextPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch(key, err)
	if err != nil {
		return err
	}

	s.comments[postID] = appendNew(s.comments[postID], page.Comments)
	s.pagination[postID] = page.Pagination
	return nil
}

// FetchReplies loads page 1 for a parent comment, replacing the cached list.
func (s *CommentStore) FetchReplies(ctx context.Context, parentID int64) error {
	key := fetchKey{kindReplies, parentID}
	if err := s.beginFetch(key); err != nil {
		return err
	}

	page, err := s.api.FetchReplies(ctx, parentID, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch(key, err)
	if err != nil {
		return err
	}

	s.replies[parentID] = append([]*domain.Comment(nil), page.Replies...)
	s.repliesPagination[parentID] = page.Pagination
	return nil
}

// LoadMoreReplies appends the next reply page for a parent comment.
func (s *CommentStore) LoadMoreReplies(ctx context.Context, parentID int64) error {
	key := fetchKey{kindReplies, parentID}

	s.mu.Lock()
	if s.fetching[key] {
		s.mu.Unlock()
		return nil
	}
	nextPage := int64(1)
	if p, ok := s.repliesPagination[parentID]; ok {
		if !p.HasNextPage {
			s.mu.Unlock()
			return nil
		}
		nextPage = p.CurrentPage + 1
	}
	s.fetching[key] = true
	s.mu.Unlock()

	page, err := s.api.FetchReplies(ctx, parentID, nextPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch(key, err)
	if err != nil {
		return err
	}

	s.replies[parentID] = appendNew(s.replies[parentID], page.Replies)
	s.repliesPagination[parentID] = page.Pagination
	return nil
}

// FetchCount refreshes the cached comment count of a post.
func (s *CommentStore) FetchCount(ctx context.Context, postID int64) (int64, error) {
	count, err := s.api.FetchCount(ctx, postID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[postID] = count
	return count, nil
}

// CreateComment posts a new comment or reply and merges the result. A new
// reply is inserted at the front of its parent's list so it is visible
// immediately, deliberately deviating from the server's ascending order
// until the next full refetch.
func (s *CommentStore) CreateComment(ctx context.Context, content string, postID, parentCommentID int64) (*domain.Comment, error) {
	s.mu.Lock()
	s.createLoading = true
	s.mu.Unlock()

	comment, err := s.api.CreateComment(ctx, content, postID, parentCommentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLoading = false
	if err != nil {
		return nil, err
	}

	if parentCommentID != 0 {
		s.replies[parentCommentID] = append([]*domain.Comment{comment}, s.replies[parentCommentID]...)

		// reflect the new reply ID on the cached parent object
		for _, list := range s.comments {
			for _, parent := range list {
				if parent.ID == parentCommentID && !containsID(parent.ReplyIDs, comment.ID) {
					parent.ReplyIDs = append(parent.ReplyIDs, comment.ID)
				}
			}
		}
	} else {
		s.comments[postID] = append([]*domain.Comment{comment}, s.comments[postID]...)
	}

	s.counts[postID]++
	return comment, nil
}

// UpdateComment edits a comment and replaces the cached record in place,
// wherever it lives, without moving it.
func (s *CommentStore) UpdateComment(ctx context.Context, commentID int64, content string) (*domain.Comment, error) {
	s.mu.Lock()
	s.updateLoading[commentID] = true
	s.mu.Unlock()

	updated, err := s.api.UpdateComment(ctx, commentID, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updateLoading, commentID)
	if err != nil {
		return nil, err
	}

	for _, list := range s.comments {
		for i, c := range list {
			if c.ID == updated.ID {
				list[i] = updated
			}
		}
	}
	for _, list := range s.replies {
		for i, c := range list {
			if c.ID == updated.ID {
				list[i] = updated
			}
		}
	}
	return updated, nil
}

// DeleteComment soft-deletes a comment server-side and scrubs it from the
// cache: the record leaves whichever list holds it, the post count drops
// only when a removal actually happened, and the ID disappears from any
// cached parent's reply list.
func (s *CommentStore) DeleteComment(ctx context.Context, commentID int64) error {
	s.mu.Lock()
	s.deleteLoading[commentID] = true
	s.mu.Unlock()

	err := s.api.DeleteComment(ctx, commentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleteLoading, commentID)
	if err != nil {
		return err
	}

	for postID, list := range s.comments {
		kept, removed := removeByID(list, commentID)
		if removed != nil {
			s.comments[postID] = kept
			s.decrCount(removed.PostID)
		}
	}
	for parentID, list := range s.replies {
		kept, removed := removeByID(list, commentID)
		if removed != nil {
			s.replies[parentID] = kept
			s.decrCount(removed.PostID)
		}
	}

	for _, list := range s.comments {
		for _, parent := range list {
			parent.ReplyIDs = withoutID(parent.ReplyIDs, commentID)
		}
	}
	return nil
}

// ToggleLike flips the actor's like and patches only the like state of the
// cached record, leaving position and all other fields untouched.
func (s *CommentStore) ToggleLike(ctx context.Context, commentID int64) (*domain.LikeResult, error) {
	s.mu.Lock()
	s.likeLoading[commentID] = true
	s.mu.Unlock()

	res, err := s.api.ToggleLike(ctx, commentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likeLoading, commentID)
	if err != nil {
		return nil, err
	}

	applyLike := func(list []*domain.Comment) {
		for _, c := range list {
			if c.ID == commentID {
				c.Likes = res.Likes
				c.LikedBy = res.LikedBy
			}
		}
	}
	for _, list := range s.comments {
		applyLike(list)
	}
	for _, list := range s.replies {
		applyLike(list)
	}
	return res, nil
}

// ClearComments drops the cached list and cursor of a post.
func (s *CommentStore) ClearComments(postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.comments, postID)
	delete(s.pagination, postID)
	delete(s.fetchErrs, fetchKey{kindComments, postID})
}

// ClearReplies drops the cached list and cursor of a parent comment.
func (s *CommentStore) ClearReplies(parentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.replies, parentID)
	delete(s.repliesPagination, parentID)
	delete(s.fetchErrs, fetchKey{kindReplies, parentID})
}

// Comments returns a snapshot of the cached top-level list of a post.
func (s *CommentStore) Comments(postID int64) []*domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Comment(nil), s.comments[postID]...)
}

// Replies returns a snapshot of the cached reply list of a parent comment.
func (s *CommentStore) Replies(parentID int64) []*domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Comment(nil), s.replies[parentID]...)
}

// Count returns the cached comment count of a post.
func (s *CommentStore) Count(postID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, ok := s.counts[postID]
	return count, ok
}

// CommentsPagination returns the pagination cursor of a post's list.
func (s *CommentStore) CommentsPagination(postID int64) (domain.Pagination, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pagination[postID]
	return p, ok
}

// RepliesPagination returns the pagination cursor of a parent's reply list.
func (s *CommentStore) RepliesPagination(parentID int64) (domain.Pagination, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.repliesPagination[parentID]
	return p, ok
}

// CommentsLoading reports whether a fetch for the post's list is in flight.
func (s *CommentStore) CommentsLoading(postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching[fetchKey{kindComments, postID}]
}

// RepliesLoading reports whether a fetch for the parent's replies is in flight.
func (s *CommentStore) RepliesLoading(parentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching[fetchKey{kindReplies, parentID}]
}

// CommentsErr returns the last fetch error of the post's list, if any.
func (s *CommentStore) CommentsErr(postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErrs[fetchKey{kindComments, postID}]
}

// RepliesErr returns the last fetch error of the parent's reply list, if any.
func (s *CommentStore) RepliesErr(parentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErrs[fetchKey{kindReplies, parentID}]
}

// CreateLoading reports whether a create call is in flight.
func (s *CommentStore) CreateLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLoading
}

// UpdateLoading reports whether an edit of the comment is in flight.
func (s *CommentStore) UpdateLoading(commentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLoading[commentID]
}

// DeleteLoading reports whether a delete of the comment is in flight.
func (s *CommentStore) DeleteLoading(commentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLoading[commentID]
}

// LikeLoading reports whether a like toggle of the comment is in flight.
func (s *CommentStore) LikeLoading(commentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likeLoading[commentID]
}

func (s *CommentStore) decrCount(postID int64) {
	if s.counts[postID] > 0 {
		s.counts[postID]--
	}
}

// appendNew appends items whose IDs aren't cached yet, so a page replayed by
// a racing load-more can't duplicate entries.
func appendNew(list, items []*domain.Comment) []*domain.Comment {
	seen := make(map[int64]struct{}, len(list))
	for _, c := range list {
		seen[c.ID] = struct{}{}
	}
	for _, c := range items {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		list = append(list, c)
	}
	return list
}

func removeByID(list []*domain.Comment, id int64) ([]*domain.Comment, *domain.Comment) {
	for i, c := range list {
		if c.ID == id {
			return append(list[:i:i], list[i+1:]...), c
		}
	}
	return list, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutID(ids []int64, id int64) []int64 {
	if !containsID(ids, id) {
		return ids
	}
	kept := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
