package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
)

// Authorize enforces role-based access control. It must run after
// AuthGate.Authenticate; a request without a principal is treated as carrying
// no token.
func Authorize(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	list := append([]domain.Role(nil), allowedRoles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues(reasonLabel(domain.ReasonNoToken)).Inc()
				return domain.Unauthenticated(domain.ReasonNoToken)
			}
			if _, ok := allowed[p.Role]; !ok {
				metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				return &domain.ForbiddenError{Role: p.Role, Allowed: list}
			}
			return next(c)
		}
	}
}

// Role sets used by the router.
var (
	StaffRoles     = []domain.Role{domain.RoleEditor, domain.RoleAdmin, domain.RoleSuperAdmin}
	ModeratorRoles = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
)
