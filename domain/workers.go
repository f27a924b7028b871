package domain

import "context"

// CounterReconciler repairs drift between post.comment_count and the real
// number of non-deleted comments in the store. Creation and soft-delete write
// the comment row, the parent's reply list and the post counter as separate
// statements, so a crash between writes can leave the counter stale; the
// service enqueues the affected post whenever one of the side writes fails.
type CounterReconciler interface {
	Start(ctx context.Context)

	// Enqueue schedules a post for counter reconciliation. Never blocks;
	// drops the hint when the queue is full (the periodic sweep still
	// catches it later).
	Enqueue(postID int64)
}
