package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

// BlogHandler handles HTTP requests for posts. Writes accept multipart forms
// (with an "images" file field), urlencoded forms or JSON.
type BlogHandler struct {
	service ports.BlogService
	images  ports.ImageService
}

func NewBlogHandler(service ports.BlogService, images ports.ImageService) *BlogHandler {
	return &BlogHandler{service: service, images: images}
}

// Create handles POST /api/blogs/add.
//
// @Summary      Create a post
// @Tags         blogs
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title      formData  string  true   "Title"
// @Param        content    formData  string  true   "Content"
// @Param        category   formData  string  true   "Category"
// @Param        tags       formData  string  false  "Comma separated tags"
// @Param        excerpt    formData  string  false  "Excerpt"
// @Param        published  formData  bool    false  "Publish immediately"
// @Param        images     formData  file    false  "Up to 5 images"
// @Success      201        {object}  blogResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Router       /blogs/add [post]
func (h *BlogHandler) Create(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}

	in, err := h.createInput(c)
	if err != nil {
		return err
	}
	images, closeImages, err := formImages(c, "images")
	if err != nil {
		return err
	}
	defer closeImages()
	in.Images = images

	blog, err := h.service.Create(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBlogResponse(blog, h.images.URL))
}

func (h *BlogHandler) createInput(c echo.Context) (ports.CreateBlogInput, error) {
	if isJSON(c) {
		var req updateBlogJSON
		if err := c.Bind(&req); err != nil {
			return ports.CreateBlogInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		in := ports.CreateBlogInput{
			Title:     deref(req.Title),
			Content:   deref(req.Content),
			Category:  deref(req.Category),
			Excerpt:   deref(req.Excerpt),
			Published: req.Published != nil && *req.Published,
		}
		if req.Tags != nil {
			in.Tags = *req.Tags
		}
		return in, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return ports.CreateBlogInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	published, err := optionalBool(params, "published")
	if err != nil {
		return ports.CreateBlogInput{}, err
	}
	return ports.CreateBlogInput{
		Title:     params.Get("title"),
		Content:   params.Get("content"),
		Category:  params.Get("category"),
		Tags:      splitList(params["tags"]),
		Excerpt:   params.Get("excerpt"),
		Published: published != nil && *published,
	}, nil
}

// List handles GET /api/blogs/get.
//
// @Summary      List posts
// @Tags         blogs
// @Produce      json
// @Param        page       query     int     false  "Page (default 1)"
// @Param        limit      query     int     false  "Page size (default 10, max 100)"
// @Param        category   query     string  false  "Category"
// @Param        tag        query     string  false  "Tag"
// @Param        search     query     string  false  "Search in title and excerpt"
// @Param        published  query     bool    false  "Staff only: filter by state"
// @Param        mine       query     bool    false  "Staff only: own posts"
// @Success      200        {object}  blogListResponse
// @Router       /blogs/get [get]
func (h *BlogHandler) List(c echo.Context) error {
	q := c.QueryParams()

	page, err := optionalInt(q, "page")
	if err != nil {
		return err
	}
	limit, err := optionalInt(q, "limit")
	if err != nil {
		return err
	}
	published, err := optionalBool(q, "published")
	if err != nil {
		return err
	}
	mine, err := optionalBool(q, "mine")
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), viewer(c), ports.ListBlogsInput{
		Category:  q.Get("category"),
		Tag:       q.Get("tag"),
		Search:    q.Get("search"),
		Published: published,
		Mine:      mine != nil && *mine,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBlogListResponse(result, h.images.URL))
}

// GetBySlug handles GET /api/blogs/get/:slug and counts the view.
//
// @Summary      Get a post by slug
// @Tags         blogs
// @Produce      json
// @Param        slug  path      string  true  "Slug"
// @Success      200   {object}  blogResponse
// @Failure      404   {object}  errorResponse
// @Router       /blogs/get/{slug} [get]
func (h *BlogHandler) GetBySlug(c echo.Context) error {
	blog, err := h.service.GetBySlug(c.Request().Context(), viewer(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBlogResponse(blog, h.images.URL))
}

// Update handles PUT /api/blogs/update/:id. Only the fields present in the
// request change.
//
// @Summary      Update a post
// @Tags         blogs
// @Accept       mpfd
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true   "Post id"
// @Param        title         formData  string  false  "Title"
// @Param        content       formData  string  false  "Content"
// @Param        category      formData  string  false  "Category"
// @Param        tags          formData  string  false  "Comma separated tags"
// @Param        excerpt       formData  string  false  "Excerpt"
// @Param        published     formData  bool    false  "Published"
// @Param        removeImages  formData  string  false  "Comma separated image keys to drop"
// @Param        images        formData  file    false  "Images to append"
// @Success      200           {object}  blogResponse
// @Failure      403           {object}  errorResponse
// @Failure      404           {object}  errorResponse
// @Router       /blogs/update/{id} [put]
func (h *BlogHandler) Update(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}

	in, err := h.updateInput(c)
	if err != nil {
		return err
	}
	images, closeImages, err := formImages(c, "images")
	if err != nil {
		return err
	}
	defer closeImages()
	in.Images = images

	blog, err := h.service.Update(c.Request().Context(), p, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBlogResponse(blog, h.images.URL))
}

func (h *BlogHandler) updateInput(c echo.Context) (ports.UpdateBlogInput, error) {
	if isJSON(c) {
		var req updateBlogJSON
		if err := c.Bind(&req); err != nil {
			return ports.UpdateBlogInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		in := ports.UpdateBlogInput{
			Title:        req.Title,
			Content:      req.Content,
			Category:     req.Category,
			Excerpt:      req.Excerpt,
			Published:    req.Published,
			RemoveImages: req.RemoveImages,
		}
		if req.Tags != nil {
			in.Tags, in.TagsSet = *req.Tags, true
		}
		return in, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return ports.UpdateBlogInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	published, err := optionalBool(params, "published")
	if err != nil {
		return ports.UpdateBlogInput{}, err
	}

	in := ports.UpdateBlogInput{
		Title:        optionalString(params, "title"),
		Content:      optionalString(params, "content"),
		Category:     optionalString(params, "category"),
		Excerpt:      optionalString(params, "excerpt"),
		Published:    published,
		RemoveImages: splitList(params["removeImages"]),
	}
	if tags, ok := params["tags"]; ok {
		in.Tags, in.TagsSet = splitList(tags), true
	}
	return in, nil
}

// Delete handles DELETE /api/blogs/delete/:id.
//
// @Summary      Delete a post
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /blogs/delete/{id} [delete]
func (h *BlogHandler) Delete(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Blog deleted successfully"})
}

// Like handles POST /api/blogs/like/:id. Each client address counts once per
// like window.
//
// @Summary      Like a post
// @Tags         blogs
// @Produce      json
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  likeResponse
// @Failure      404  {object}  errorResponse
// @Router       /blogs/like/{id} [post]
func (h *BlogHandler) Like(c echo.Context) error {
	res, err := h.service.Like(c.Request().Context(), c.Param("id"), c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likeResponse{Likes: res.Likes, Counted: res.Counted})
}

// --- form helpers ---

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// formImages opens the files of a multipart field. The returned func closes
// them and is always safe to call.
func formImages(c echo.Context, field string) ([]ports.ImageInput, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	headers := form.File[field]
	if len(headers) > domain.MaxImagesPerCall {
		return nil, noop, fmt.Errorf("%w: at most %d per request", domain.ErrTooManyImages, domain.MaxImagesPerCall)
	}

	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	inputs := make([]ports.ImageInput, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		files = append(files, f)
		inputs = append(inputs, ports.ImageInput{OriginalName: fh.Filename, Size: fh.Size, Content: f})
	}
	return inputs, closeAll, nil
}

// splitList flattens repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalString(params url.Values, name string) *string {
	vals, ok := params[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func optionalBool(params url.Values, name string) (*bool, error) {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be true or false")
	}
	return &b, nil
}

func optionalInt(params url.Values, name string) (int, error) {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
