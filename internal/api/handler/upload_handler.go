package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/core/ports"
)

// UploadHandler stores images outside of a post, e.g. for inline editor content.
type UploadHandler struct {
	images ports.ImageService
}

func NewUploadHandler(images ports.ImageService) *UploadHandler {
	return &UploadHandler{images: images}
}

// Single handles POST /api/upload/image.
//
// @Summary      Upload one image
// @Tags         uploads
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        image  formData  file  true  "Image"
// @Success      201    {object}  uploadedFile
// @Failure      400    {object}  errorResponse
// @Failure      413    {object}  errorResponse
// @Failure      415    {object}  errorResponse
// @Router       /upload/image [post]
func (h *UploadHandler) Single(c echo.Context) error {
	files, closeFiles, err := formImages(c, "image")
	if err != nil {
		return err
	}
	defer closeFiles()
	if len(files) > 1 {
		files = files[:1]
	}

	stored, err := h.images.Save(c.Request().Context(), files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUploadedFile(stored[0]))
}

// Multiple handles POST /api/upload/images.
//
// @Summary      Upload up to five images
// @Tags         uploads
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        images  formData  file  true  "Images"
// @Success      201     {object}  uploadedFiles
// @Failure      400     {object}  errorResponse
// @Failure      413     {object}  errorResponse
// @Failure      415     {object}  errorResponse
// @Router       /upload/images [post]
func (h *UploadHandler) Multiple(c echo.Context) error {
	files, closeFiles, err := formImages(c, "images")
	if err != nil {
		return err
	}
	defer closeFiles()

	stored, err := h.images.Save(c.Request().Context(), files)
	if err != nil {
		return err
	}

	out := uploadedFiles{Files: make([]uploadedFile, len(stored))}
	for i, img := range stored {
		out.Files[i] = toUploadedFile(img)
	}
	return c.JSON(http.StatusCreated, out)
}
