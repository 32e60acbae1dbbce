package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
	"github.com/blogcms/cms-api/internal/core/slug"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// slugWriteAttempts bounds allocate+write rounds when a concurrent writer
	// takes the allocated slug first.
	slugWriteAttempts = 3
)

type BlogService struct {
	blogs    ports.BlogRepository
	comments ports.CommentRepository
	images   ports.ImageService
	likes    ports.LikeGuard
	slugs    *slug.Allocator
	log      zerolog.Logger
	now      func() time.Time
}

var _ ports.BlogService = (*BlogService)(nil)

func NewBlogService(
	blogs ports.BlogRepository,
	comments ports.CommentRepository,
	images ports.ImageService,
	likes ports.LikeGuard,
	log zerolog.Logger,
) *BlogService {
	return &BlogService{
		blogs:    blogs,
		comments: comments,
		images:   images,
		likes:    likes,
		slugs:    slug.NewAllocator(blogs),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *BlogService) Create(ctx context.Context, actor domain.Principal, in ports.CreateBlogInput) (*domain.Blog, error) {
	if !actor.Role.Elevated() {
		return nil, &domain.ForbiddenError{Role: actor.Role, Allowed: []domain.Role{domain.RoleEditor, domain.RoleAdmin, domain.RoleSuperAdmin}}
	}

	blog := &domain.Blog{
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Category:   strings.TrimSpace(in.Category),
		Tags:       normalizeTags(in.Tags),
		Excerpt:    strings.TrimSpace(in.Excerpt),
		Published:  in.Published,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}

	var stored []domain.StoredImage
	if len(in.Images) > 0 {
		var err error
		if stored, err = s.images.Save(ctx, in.Images); err != nil {
			return nil, err
		}
	}
	blog.Images = storedKeys(stored)
	blog.CreatedAt = s.now()
	blog.UpdatedAt = blog.CreatedAt

	err := s.writeWithSlug(ctx, blog, func() error { return s.blogs.Insert(ctx, blog) })
	if err != nil {
		s.images.Discard(ctx, blog.Images)
		s.log.Error().Err(err).Str("title", blog.Title).Msg("failed to create blog")
		return nil, err
	}

	metrics.BlogsCreatedTotal.WithLabelValues(strconv.FormatBool(blog.Published)).Inc()
	s.log.Info().Str("blog_id", blog.ID).Str("slug", blog.Slug).Str("author_id", actor.ID).Msg("blog created")
	return blog, nil
}

// writeWithSlug allocates a slug from the title and runs write, retrying when
// the unique index reports that another writer took the slug in between.
func (s *BlogService) writeWithSlug(ctx context.Context, blog *domain.Blog, write func() error) error {
	for attempt := 1; attempt <= slugWriteAttempts; attempt++ {
		candidate, err := s.slugs.Allocate(ctx, blog.Title, blog.ID)
		if err != nil {
			return fmt.Errorf("allocate slug: %w", err)
		}
		blog.Slug = candidate

		err = write()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return err
		}
		metrics.SlugConflictsTotal.Inc()
		s.log.Warn().Str("slug", candidate).Int("attempt", attempt).Msg("slug taken concurrently, retrying")
	}
	return domain.ErrSlugCollisionExhausted
}

// List returns a page of posts. Drafts and the published/mine filters are
// only available to elevated viewers.
func (s *BlogService) List(ctx context.Context, viewer *domain.Principal, in ports.ListBlogsInput) (*ports.BlogPage, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := ports.BlogFilter{
		Category: strings.TrimSpace(in.Category),
		Tag:      strings.ToLower(strings.TrimSpace(in.Tag)),
		Search:   strings.TrimSpace(in.Search),
		Page:     page,
		Limit:    limit,
	}

	if viewer != nil && viewer.Role.Elevated() {
		filter.Published = in.Published
		if in.Mine {
			filter.AuthorID = viewer.ID
		}
	} else {
		filter.Published = lo.ToPtr(true)
	}

	items, total, err := s.blogs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.BlogPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetBySlug returns a post and counts the view.
func (s *BlogService) GetBySlug(ctx context.Context, viewer *domain.Principal, slugValue string) (*domain.Blog, error) {
	includeDrafts := viewer != nil && viewer.Role.Elevated()
	return s.blogs.FindBySlugAndCountView(ctx, slugValue, includeDrafts)
}

func (s *BlogService) Update(ctx context.Context, actor domain.Principal, id string, in ports.UpdateBlogInput) (*domain.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !blog.ModifiableBy(actor) {
		return nil, domain.ErrNotBlogAuthor
	}

	titleChanged := false
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title != blog.Title {
			blog.Title = title
			titleChanged = true
		}
	}
	if in.Content != nil {
		blog.Content = *in.Content
	}
	if in.Category != nil {
		blog.Category = strings.TrimSpace(*in.Category)
	}
	if in.TagsSet {
		blog.Tags = normalizeTags(in.Tags)
	}
	if in.Excerpt != nil {
		blog.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Published != nil {
		blog.Published = *in.Published
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}

	removed := lo.Intersect(blog.Images, in.RemoveImages)
	var added []string
	if len(in.Images) > 0 {
		stored, err := s.images.Save(ctx, in.Images)
		if err != nil {
			return nil, err
		}
		added = storedKeys(stored)
	}
	blog.Images = append(lo.Without(blog.Images, removed...), added...)
	blog.UpdatedAt = s.now()

	write := func() error { return s.blogs.Update(ctx, blog) }
	if titleChanged {
		err = s.writeWithSlug(ctx, blog, write)
	} else {
		err = write()
	}
	if err != nil {
		s.images.Discard(ctx, added)
		return nil, err
	}

	s.images.Discard(ctx, removed)
	s.log.Info().Str("blog_id", blog.ID).Str("actor_id", actor.ID).Msg("blog updated")
	return blog, nil
}

// Delete removes a post, its comments and its images. Comment and image
// cleanup failures are logged and do not fail the call.
func (s *BlogService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !blog.ModifiableBy(actor) {
		return domain.ErrNotBlogAuthor
	}

	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}

	n, err := s.comments.DeleteByBlog(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("blog_id", id).Msg("failed to delete comments of removed blog")
	}
	s.images.Discard(ctx, blog.Images)

	s.log.Info().Str("blog_id", id).Int64("comments_removed", n).Str("actor_id", actor.ID).Msg("blog deleted")
	return nil
}

// Like counts one like per fingerprint inside the guard window. When the
// guard is unavailable the like is counted anyway.
func (s *BlogService) Like(ctx context.Context, id, fingerprint string) (*ports.LikeResult, error) {
	// Resolve the post before touching the guard so unknown ids leave no key.
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	first, err := s.likes.FirstLike(ctx, blog.ID, fingerprint)
	if err != nil {
		metrics.LikesTotal.WithLabelValues("unguarded").Inc()
		s.log.Warn().Err(err).Str("blog_id", blog.ID).Msg("like guard failed, counting anyway")
		first = true
	}

	if !first {
		metrics.LikesTotal.WithLabelValues("duplicate").Inc()
		return &ports.LikeResult{Likes: blog.Likes, Counted: false}, nil
	}

	likes, err := s.blogs.IncrementLikes(ctx, blog.ID)
	if err != nil {
		if ferr := s.likes.Forget(ctx, blog.ID, fingerprint); ferr != nil {
			s.log.Warn().Err(ferr).Str("blog_id", blog.ID).Msg("failed to release like guard")
		}
		return nil, err
	}
	metrics.LikesTotal.WithLabelValues("counted").Inc()
	return &ports.LikeResult{Likes: likes, Counted: true}, nil
}

func validateBlog(b *domain.Blog) error {
	switch {
	case b.Title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidBlog)
	case strings.TrimSpace(b.Content) == "":
		return fmt.Errorf("%w: content is required", domain.ErrInvalidBlog)
	case b.Category == "":
		return fmt.Errorf("%w: category is required", domain.ErrInvalidBlog)
	}
	return nil
}

// normalizeTags trims, lowercases and de-duplicates tags, dropping blanks.
func normalizeTags(tags []string) []string {
	out := lo.Uniq(lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	if out == nil {
		return []string{}
	}
	return out
}
