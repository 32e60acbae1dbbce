package ports

import (
	"context"
	"time"

	"github.com/blogcms/cms-api/internal/core/domain"
)

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

type CreateStaffInput struct {
	DisplayName string
	Username    string
	Email       string
	Password    string
	Role        domain.Role
	// CreatedBy is nil for accounts created from the command line.
	CreatedBy *domain.Principal
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  *domain.Identity
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	StaffLogin(ctx context.Context, login, password string) (*AuthResult, error)
	CreateStaff(ctx context.Context, in CreateStaffInput) (*domain.Identity, error)
	ChangeStaffRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error)
	Profile(ctx context.Context, p domain.Principal) (*domain.Identity, error)
}
