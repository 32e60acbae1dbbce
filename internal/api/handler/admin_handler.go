package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

// AdminHandler serves staff management and the dashboard summary.
type AdminHandler struct {
	authService    ports.AuthService
	commentService ports.CommentService
	now            func() time.Time
}

func NewAdminHandler(authService ports.AuthService, commentService ports.CommentService) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		commentService: commentService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateStaff creates an editor, admin or superadmin account.
//
// @Summary      Create a staff account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createStaffRequest  true  "Staff account"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/staff [post]
func (h *AdminHandler) CreateStaff(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}

	var req createStaffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	user, err := h.authService.CreateStaff(c.Request().Context(), ports.CreateStaffInput{
		DisplayName: req.Name,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        role,
		CreatedBy:   &p,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{Message: "Staff account created", User: user})
}

// ChangeRole moves a staff account to another elevated role.
//
// @Summary      Change a staff role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Staff id"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/staff/{id}/role [patch]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	user, err := h.authService.ChangeStaffRole(c.Request().Context(), c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "Role updated", User: user})
}

// Dashboard returns the signed-in staff account and the moderation backlog.
//
// @Summary      Staff dashboard
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.authService.Profile(ctx, p)
	if err != nil {
		return err
	}
	pending, err := h.commentService.PendingCount(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		Message:         "Welcome to the admin dashboard",
		User:            user,
		PendingComments: pending,
		Timestamp:       h.now(),
	})
}
