package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/core/ports"
)

type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Add submits a reader comment for moderation.
//
// @Summary      Submit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        body  body      addCommentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /comments [post]
func (h *CommentHandler) Add(c echo.Context) error {
	var req addCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Add(c.Request().Context(), ports.AddCommentInput{
		BlogID: req.BlogID,
		Name:   req.Name,
		Email:  req.Email,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentResponse{Message: "Comment submitted for review", Comment: comment})
}

// ListByBlog returns the approved comments of a post.
//
// @Summary      List approved comments
// @Tags         comments
// @Produce      json
// @Param        blogId  path      string  true  "Post id"
// @Success      200     {array}   domain.Comment
// @Router       /comments/blog/{blogId} [get]
func (h *CommentHandler) ListByBlog(c echo.Context) error {
	comments, err := h.service.ListApproved(c.Request().Context(), c.Param("blogId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// Pending returns comments awaiting moderation, newest first.
//
// @Summary      List pending comments
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Comment
// @Failure      403  {object}  errorResponse
// @Router       /comments/pending [get]
func (h *CommentHandler) Pending(c echo.Context) error {
	comments, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// Approve publishes a pending comment.
//
// @Summary      Approve a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment id"
// @Success      200  {object}  commentResponse
// @Failure      404  {object}  errorResponse
// @Router       /comments/{id}/approve [put]
func (h *CommentHandler) Approve(c echo.Context) error {
	comment, err := h.service.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commentResponse{Message: "Comment approved", Comment: comment})
}

// Reject deletes a comment.
//
// @Summary      Reject a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /comments/{id}/reject [delete]
func (h *CommentHandler) Reject(c echo.Context) error {
	if err := h.service.Reject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Comment rejected and deleted"})
}
