package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const principalKey = "principal"

// AuthGate resolves the bearer token of a request into a Principal backed by
// a stored account.
type AuthGate struct {
	codec ports.TokenCodec
	users ports.IdentityRepository
	staff ports.IdentityRepository
	log   zerolog.Logger
}

func NewAuthGate(codec ports.TokenCodec, users, staff ports.IdentityRepository, log zerolog.Logger) *AuthGate {
	return &AuthGate{codec: codec, users: users, staff: staff, log: log}
}

// Authenticate rejects the request unless it carries a valid token for an
// existing account.
func (g *AuthGate) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := g.resolve(c)
			if err != nil {
				var ue *domain.UnauthenticatedError
				if errors.As(err, &ue) {
					metrics.AuthFailuresTotal.WithLabelValues(reasonLabel(ue.Reason)).Inc()
				}
				return err
			}
			setPrincipal(c, p)
			return next(c)
		}
	}
}

// Optional attaches a principal when the request carries a usable token and
// otherwise lets the request through anonymously.
func (g *AuthGate) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			p, err := g.resolve(c)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthenticated) {
					g.log.Warn().Err(err).Str("path", c.Path()).Msg("optional auth failed, continuing anonymously")
				}
				return next(c)
			}
			setPrincipal(c, p)
			return next(c)
		}
	}
}

func (g *AuthGate) resolve(c echo.Context) (domain.Principal, error) {
	raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return domain.Principal{}, domain.Unauthenticated(domain.ReasonNoToken)
	}

	claims, err := g.codec.Verify(raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return domain.Principal{}, domain.Unauthenticated(domain.ReasonTokenExpired)
		}
		return domain.Principal{}, domain.Unauthenticated(domain.ReasonInvalidToken)
	}

	// The claimed role selects exactly one store.
	repo := g.users
	if claims.Role.Elevated() {
		repo = g.staff
	}

	identity, err := repo.FindByID(c.Request().Context(), claims.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return domain.Principal{}, domain.Unauthenticated(domain.ReasonInvalidUser)
		}
		return domain.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}

	// The stored role is authoritative, but it must stay in the class the
	// token was issued for.
	if !identity.Role.Valid() || identity.Role.Elevated() != claims.Role.Elevated() {
		return domain.Principal{}, domain.Unauthenticated(domain.ReasonInvalidUser)
	}

	return identity.Principal(), nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
	req := c.Request()
	c.SetRequest(req.WithContext(domain.ContextWithPrincipal(req.Context(), p)))
}

// PrincipalFrom returns the principal attached by Authenticate or Optional.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

func reasonLabel(r domain.AuthReason) string {
	return strings.ReplaceAll(strings.ToLower(string(r)), " ", "_")
}
