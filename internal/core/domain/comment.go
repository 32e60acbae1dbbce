package domain

import (
	"errors"
	"time"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidComment  = errors.New("invalid comment")
)

// Comment is a reader comment awaiting or past moderation.
type Comment struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blogId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Text      string    `json:"text"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentNotification is sent to the site owner when a comment is submitted.
type CommentNotification struct {
	BlogID      string
	BlogTitle   string
	BlogSlug    string
	AuthorName  string
	AuthorEmail string
	Text        string
	SubmittedAt time.Time
}
