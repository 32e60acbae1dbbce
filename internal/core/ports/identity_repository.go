package ports

import (
	"context"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// IdentityRepository is one account store. The application holds two of them:
// one for regular accounts and one for staff accounts.
type IdentityRepository interface {
	// FindByID returns domain.ErrIdentityNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	// FindByLogin matches the email, or the username where the store has one.
	FindByLogin(ctx context.Context, login string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error)
}
