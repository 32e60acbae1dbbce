package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type indexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index handles GET /api and describes the available resource groups.
//
// @Summary      API index
// @Tags         meta
// @Produce      json
// @Success      200  {object}  indexResponse
// @Router       / [get]
func Index(c echo.Context) error {
	return c.JSON(http.StatusOK, indexResponse{
		Message: "Blog CMS API",
		Endpoints: map[string]string{
			"auth":     "/api/auth",
			"admin":    "/api/admin",
			"blogs":    "/api/blogs",
			"comments": "/api/comments",
			"upload":   "/api/upload",
			"docs":     "/swagger/index.html",
		},
	})
}
