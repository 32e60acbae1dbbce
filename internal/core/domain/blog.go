package domain

import (
	"errors"
	"time"
)

var (
	ErrBlogNotFound           = errors.New("blog not found")
	ErrNotBlogAuthor          = errors.New("not authorized to modify this blog")
	ErrInvalidBlog            = errors.New("invalid blog")
	ErrSlugTaken              = errors.New("slug already taken")
	ErrSlugCollisionExhausted = errors.New("could not allocate a unique slug")
)

// Blog is a post. Slug is unique across the collection.
type Blog struct {
	ID         string
	Title      string
	Content    string
	Slug       string
	Category   string
	Tags       []string
	Images     []string // storage keys
	AuthorID   string
	AuthorRole Role
	Excerpt    string
	Published  bool
	Views      int64
	Likes      int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ModifiableBy reports whether p may edit or delete the post.
func (b *Blog) ModifiableBy(p Principal) bool {
	return p.Role.Moderator() || (p.ID != "" && p.ID == b.AuthorID)
}

// VisibleTo reports whether the post can be read by viewer (nil = anonymous).
func (b *Blog) VisibleTo(viewer *Principal) bool {
	if b.Published {
		return true
	}
	return viewer != nil && viewer.Role.Elevated()
}
