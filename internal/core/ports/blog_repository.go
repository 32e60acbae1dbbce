package ports

import (
	"context"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// BlogFilter carries the query parameters for listing posts.
type BlogFilter struct {
	Category  string
	Tag       string
	Search    string // case-insensitive match on title or excerpt
	Published *bool  // nil = any
	AuthorID  string
	Page      int // 1-based
	Limit     int
}

// BlogRepository defines persistence operations for posts. Writes that would
// duplicate a slug fail with domain.ErrSlugTaken.
type BlogRepository interface {
	Insert(ctx context.Context, b *domain.Blog) error
	FindByID(ctx context.Context, id string) (*domain.Blog, error)
	// FindBySlugAndCountView increments the view counter and returns the post
	// after the increment. Drafts match only when includeDrafts is set.
	FindBySlugAndCountView(ctx context.Context, slug string, includeDrafts bool) (*domain.Blog, error)
	List(ctx context.Context, filter BlogFilter) ([]*domain.Blog, int64, error)
	Update(ctx context.Context, b *domain.Blog) error
	Delete(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) (int64, error)
	// ExistsSlug ignores the post identified by excludeID (may be empty).
	ExistsSlug(ctx context.Context, slug, excludeID string) (bool, error)
}
