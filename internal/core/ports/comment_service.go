package ports

import (
	"context"

	"github.com/blogcms/cms-api/internal/core/domain"
)

type AddCommentInput struct {
	BlogID string
	Name   string
	Email  string
	Text   string
}

type CommentService interface {
	Add(ctx context.Context, in AddCommentInput) (*domain.Comment, error)
	ListApproved(ctx context.Context, blogID string) ([]*domain.Comment, error)
	ListPending(ctx context.Context) ([]*domain.Comment, error)
	PendingCount(ctx context.Context) (int64, error)
	Approve(ctx context.Context, id string) (*domain.Comment, error)
	Reject(ctx context.Context, id string) error
}

// CommentNotifier delivers a single notification.
type CommentNotifier interface {
	Notify(ctx context.Context, n domain.CommentNotification) error
}

// NotificationQueue accepts notifications for asynchronous delivery.
type NotificationQueue interface {
	// Enqueue never blocks; it reports false when the notification was dropped.
	Enqueue(n domain.CommentNotification) bool
}
