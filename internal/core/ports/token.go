package ports

import (
	"time"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	SubjectID string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and verifies bearer tokens.
type TokenCodec interface {
	Issue(subjectID string, role domain.Role) (token string, expiresAt time.Time, err error)
	// Verify returns domain.ErrTokenExpired for an expired but otherwise valid
	// token and wraps domain.ErrTokenInvalid for everything else.
	Verify(token string) (*TokenClaims, error)
}
