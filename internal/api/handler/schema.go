package handler

import (
	"time"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// staffLoginRequest accepts either a username or an email in Login; the
// original front end sends "username".
type staffLoginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type createStaffRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"required,oneof=editor admin superadmin"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=editor admin superadmin"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *domain.Identity `json:"user"`
}

type userResponse struct {
	Message string           `json:"message,omitempty"`
	User    *domain.Identity `json:"user"`
}

type dashboardResponse struct {
	Message         string           `json:"message"`
	User            *domain.Identity `json:"user"`
	PendingComments int64            `json:"pendingComments"`
	Timestamp       time.Time        `json:"timestamp"`
}

// --- Blogs ---

// updateBlogJSON is the JSON form of a partial update; absent fields stay nil.
type updateBlogJSON struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	Category     *string   `json:"category"`
	Tags         *[]string `json:"tags"`
	Excerpt      *string   `json:"excerpt"`
	Published    *bool     `json:"published"`
	RemoveImages []string  `json:"removeImages"`
}

type imageResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type authorResponse struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

type blogResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Slug      string          `json:"slug"`
	Category  string          `json:"category"`
	Tags      []string        `json:"tags"`
	Images    []imageResponse `json:"images"`
	Author    authorResponse  `json:"author"`
	Excerpt   string          `json:"excerpt"`
	Published bool            `json:"published"`
	Views     int64           `json:"views"`
	Likes     int64           `json:"likes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type blogListResponse struct {
	Blogs []blogResponse `json:"blogs"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Pages int            `json:"pages"`
}

type likeResponse struct {
	Likes   int64 `json:"likes"`
	Counted bool  `json:"counted"`
}

// --- Comments ---

type addCommentRequest struct {
	BlogID string `json:"blogId" validate:"required,mongodb"`
	Name   string `json:"name"   validate:"required,max=100"`
	Email  string `json:"email"  validate:"required,email"`
	Text   string `json:"text"   validate:"required,max=5000"`
}

type commentResponse struct {
	Message string          `json:"message"`
	Comment *domain.Comment `json:"comment,omitempty"`
}

// --- Uploads ---

type uploadedFile struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

type uploadedFiles struct {
	Files []uploadedFile `json:"files"`
}
