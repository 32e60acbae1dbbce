package ports

import (
	"context"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Insert(ctx context.Context, c *domain.Comment) error
	ListByBlog(ctx context.Context, blogID string, approvedOnly bool) ([]*domain.Comment, error)
	ListPending(ctx context.Context, limit int) ([]*domain.Comment, error)
	CountPending(ctx context.Context) (int64, error)
	Approve(ctx context.Context, id string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByBlog(ctx context.Context, blogID string) (int64, error)
}
