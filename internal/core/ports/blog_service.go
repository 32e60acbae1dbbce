package ports

import (
	"context"
	"io"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// ImageInput is one uploaded file as received by the transport layer.
type ImageInput struct {
	OriginalName string
	Size         int64
	Content      io.Reader
}

type CreateBlogInput struct {
	Title     string
	Content   string
	Category  string
	Tags      []string
	Excerpt   string
	Published bool
	Images    []ImageInput
}

// UpdateBlogInput holds a partial update; nil fields are left unchanged.
type UpdateBlogInput struct {
	Title        *string
	Content      *string
	Category     *string
	Tags         []string
	TagsSet      bool
	Excerpt      *string
	Published    *bool
	Images       []ImageInput
	RemoveImages []string
}

type ListBlogsInput struct {
	Category  string
	Tag       string
	Search    string
	Published *bool
	Mine      bool
	Page      int
	Limit     int
}

type BlogPage struct {
	Items      []*domain.Blog
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type LikeResult struct {
	Likes   int64
	Counted bool
}

type BlogService interface {
	Create(ctx context.Context, actor domain.Principal, in CreateBlogInput) (*domain.Blog, error)
	List(ctx context.Context, viewer *domain.Principal, in ListBlogsInput) (*BlogPage, error)
	GetBySlug(ctx context.Context, viewer *domain.Principal, slug string) (*domain.Blog, error)
	Update(ctx context.Context, actor domain.Principal, id string, in UpdateBlogInput) (*domain.Blog, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
	// Like counts at most one like per fingerprint within the like window.
	Like(ctx context.Context, id, fingerprint string) (*LikeResult, error)
}

// LikeGuard remembers which clients already liked a post.
type LikeGuard interface {
	// FirstLike records the like and reports whether it is the first one
	// from fingerprint inside the window.
	FirstLike(ctx context.Context, blogID, fingerprint string) (bool, error)
	// Forget drops a recorded like so the client may like again.
	Forget(ctx context.Context, blogID, fingerprint string) error
}
