package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/api/middleware"
	"github.com/blogcms/cms-api/internal/core/domain"
)

// actor returns the authenticated principal. Routes using it sit behind
// AuthGate.Authenticate, so a missing principal means the route was wired
// without it; answer as if no token was sent.
func actor(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.Unauthenticated(domain.ReasonNoToken)
	}
	return p, nil
}

// viewer returns the optional principal of a public route, nil when anonymous.
func viewer(c echo.Context) *domain.Principal {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return &p
}

// bindAndValidate binds the request body and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
