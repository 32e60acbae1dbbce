package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const (
	pendingListLimit = 200
	maxCommentLength = 5000
)

type CommentService struct {
	comments ports.CommentRepository
	blogs    ports.BlogRepository
	queue    ports.NotificationQueue
	log      zerolog.Logger
	now      func() time.Time
}

var _ ports.CommentService = (*CommentService)(nil)

func NewCommentService(
	comments ports.CommentRepository,
	blogs ports.BlogRepository,
	queue ports.NotificationQueue,
	log zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		blogs:    blogs,
		queue:    queue,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add stores a comment for moderation and queues a notification for the
// site owner. Comments on drafts are refused as if the post did not exist.
func (s *CommentService) Add(ctx context.Context, in ports.AddCommentInput) (*domain.Comment, error) {
	c := &domain.Comment{
		BlogID: strings.TrimSpace(in.BlogID),
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.ToLower(strings.TrimSpace(in.Email)),
		Text:   strings.TrimSpace(in.Text),
	}
	switch {
	case c.BlogID == "" || c.Name == "" || c.Email == "" || c.Text == "":
		return nil, fmt.Errorf("%w: blogId, name, email and text are required", domain.ErrInvalidComment)
	case len([]rune(c.Text)) > maxCommentLength:
		return nil, fmt.Errorf("%w: text exceeds %d characters", domain.ErrInvalidComment, maxCommentLength)
	}

	blog, err := s.blogs.FindByID(ctx, c.BlogID)
	if err != nil {
		return nil, err
	}
	if !blog.Published {
		return nil, domain.ErrBlogNotFound
	}

	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	metrics.CommentsTotal.WithLabelValues("submitted").Inc()

	s.queue.Enqueue(domain.CommentNotification{
		BlogID:      blog.ID,
		BlogTitle:   blog.Title,
		BlogSlug:    blog.Slug,
		AuthorName:  c.Name,
		AuthorEmail: c.Email,
		Text:        c.Text,
		SubmittedAt: c.CreatedAt,
	})

	s.log.Info().Str("comment_id", c.ID).Str("blog_id", c.BlogID).Msg("comment submitted")
	return c, nil
}

func (s *CommentService) ListApproved(ctx context.Context, blogID string) ([]*domain.Comment, error) {
	return s.comments.ListByBlog(ctx, blogID, true)
}

func (s *CommentService) ListPending(ctx context.Context) ([]*domain.Comment, error) {
	return s.comments.ListPending(ctx, pendingListLimit)
}

func (s *CommentService) PendingCount(ctx context.Context) (int64, error) {
	return s.comments.CountPending(ctx)
}

func (s *CommentService) Approve(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := s.comments.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.CommentsTotal.WithLabelValues("approved").Inc()
	s.log.Info().Str("comment_id", id).Msg("comment approved")
	return c, nil
}

// Reject deletes the comment.
func (s *CommentService) Reject(ctx context.Context, id string) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	metrics.CommentsTotal.WithLabelValues("rejected").Inc()
	s.log.Info().Str("comment_id", id).Msg("comment rejected")
	return nil
}
