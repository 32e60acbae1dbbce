package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// forbiddenResponse extends the envelope with the role information clients
// use to explain a 403.
type forbiddenResponse struct {
	Error        string        `json:"error"`
	UserRole     domain.Role   `json:"userRole"`
	AllowedRoles []domain.Role `json:"allowedRoles"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders {"error": "<message>"}; debug adds the cause of 500s as "message".
func NewHTTPErrorHandler(log zerolog.Logger, debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var fe *domain.ForbiddenError
		if errors.As(err, &fe) {
			_ = c.JSON(http.StatusForbidden, forbiddenResponse{
				Error:        "Access denied. Required roles: " + fe.AllowedList(),
				UserRole:     fe.Role,
				AllowedRoles: fe.Allowed,
			})
			return
		}

		code, msg := resolveError(err, log, c)
		resp := errorResponse{Error: msg}
		if debug && code == http.StatusInternalServerError {
			resp.Message = err.Error()
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ue *domain.UnauthenticatedError
	if errors.As(err, &ue) {
		return http.StatusUnauthorized, string(ue.Reason)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrNotBlogAuthor):
		return http.StatusForbidden, "not authorized to modify this blog"

	case errors.Is(err, domain.ErrBlogNotFound):
		return http.StatusNotFound, "blog not found"
	case errors.Is(err, domain.ErrCommentNotFound):
		return http.StatusNotFound, "comment not found"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return http.StatusNotFound, "user not found"

	case errors.Is(err, domain.ErrIdentityExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrSlugCollisionExhausted):
		return http.StatusConflict, "could not allocate a unique slug, try another title"

	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, domain.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType, err.Error()

	case errors.Is(err, domain.ErrInvalidBlog),
		errors.Is(err, domain.ErrInvalidComment),
		errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrNoImages),
		errors.Is(err, domain.ErrTooManyImages):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
