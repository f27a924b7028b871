package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/redis/go-redis/v9"
)

const (
	KeyCommentCount = "comment:count:%d"

	commentCountTTL = 10 * time.Minute
)

// commentCountCache keeps the per-post comment counter hot so the count
// endpoint doesn't hit MySQL on every read. Counters are best-effort: a lost
// increment only widens the drift the reconciler already repairs.
type commentCountCache struct {
	client *redis.Client
}

var _ domain.CommentCountCache = (*commentCountCache)(nil)

func NewCommentCountCache(client *redis.Client) *commentCountCache {
	return &commentCountCache{
		client: client,
	}
}

func (c *commentCountCache) GetCount(ctx context.Context, postID int64) (int64, error) {
	key := fmt.Sprintf(KeyCommentCount, postID)
	count, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrCacheMiss
	} else if err != nil {
		return 0, err
	}
	return count, nil
}

func (c *commentCountCache) SetCount(ctx context.Context, postID, count int64) error {
	key := fmt.Sprintf(KeyCommentCount, postID)
	return c.client.Set(ctx, key, count, commentCountTTL).Err()
}

func (c *commentCountCache) IncrCount(ctx context.Context, postID int64) error {
	key := fmt.Sprintf(KeyCommentCount, postID)
	// only bump an existing counter; a miss stays a miss until the next
	// read rebuilds it from the store
	ok, err := c.client.Expire(ctx, key, commentCountTTL).Result()
	if err != nil || !ok {
		return err
	}
	return c.client.Incr(ctx, key).Err()
}

func (c *commentCountCache) DecrCount(ctx context.Context, postID int64) error {
	key := fmt.Sprintf(KeyCommentCount, postID)
	ok, err := c.client.Expire(ctx, key, commentCountTTL).Result()
	if err != nil || !ok {
		return err
	}
	count, err := c.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count < 0 {
		return c.client.Set(ctx, key, 0, commentCountTTL).Err()
	}
	return nil
}

func (c *commentCountCache) DelCount(ctx context.Context, postID int64) error {
	key := fmt.Sprintf(KeyCommentCount, postID)
	return c.client.Del(ctx, key).Err()
}
