package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blogcms/cms-api/internal/core/ports"
)

const defaultLikeWindow = 24 * time.Hour

// LikeGuard remembers likes in Redis.
// Key format: like:<blog_id>:<fingerprint>
type LikeGuard struct {
	client redis.Cmdable
	window time.Duration
}

var _ ports.LikeGuard = (*LikeGuard)(nil)

// NewLikeGuard wraps client. A non-positive window falls back to 24h.
func NewLikeGuard(client redis.Cmdable, window time.Duration) *LikeGuard {
	if window <= 0 {
		window = defaultLikeWindow
	}
	return &LikeGuard{client: client, window: window}
}

// FirstLike sets the key only if absent, so concurrent likes from the same
// client are counted once.
func (g *LikeGuard) FirstLike(ctx context.Context, blogID, fingerprint string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(blogID, fingerprint), "1", g.window).Result()
	if err != nil {
		return false, fmt.Errorf("like guard: %w", err)
	}
	return ok, nil
}

// Forget removes the key written by FirstLike.
func (g *LikeGuard) Forget(ctx context.Context, blogID, fingerprint string) error {
	if err := g.client.Del(ctx, g.key(blogID, fingerprint)).Err(); err != nil {
		return fmt.Errorf("like guard: %w", err)
	}
	return nil
}

func (g *LikeGuard) key(blogID, fingerprint string) string {
	return fmt.Sprintf("like:%s:%s", blogID, fingerprint)
}
