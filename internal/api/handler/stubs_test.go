package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

// --- service stubs ---

type stubAuthService struct {
	registerFn    func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error)
	loginFn       func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	staffLoginFn  func(ctx context.Context, login, password string) (*ports.AuthResult, error)
	createStaffFn func(ctx context.Context, in ports.CreateStaffInput) (*domain.Identity, error)
	changeRoleFn  func(ctx context.Context, id string, role domain.Role) (*domain.Identity, error)
	profileFn     func(ctx context.Context, p domain.Principal) (*domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) StaffLogin(ctx context.Context, login, password string) (*ports.AuthResult, error) {
	return s.staffLoginFn(ctx, login, password)
}

func (s *stubAuthService) CreateStaff(ctx context.Context, in ports.CreateStaffInput) (*domain.Identity, error) {
	return s.createStaffFn(ctx, in)
}

func (s *stubAuthService) ChangeStaffRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error) {
	return s.changeRoleFn(ctx, id, role)
}

func (s *stubAuthService) Profile(ctx context.Context, p domain.Principal) (*domain.Identity, error) {
	return s.profileFn(ctx, p)
}

type stubBlogService struct {
	createFn func(ctx context.Context, actor domain.Principal, in ports.CreateBlogInput) (*domain.Blog, error)
	listFn   func(ctx context.Context, viewer *domain.Principal, in ports.ListBlogsInput) (*ports.BlogPage, error)
	getFn    func(ctx context.Context, viewer *domain.Principal, slug string) (*domain.Blog, error)
	updateFn func(ctx context.Context, actor domain.Principal, id string, in ports.UpdateBlogInput) (*domain.Blog, error)
	deleteFn func(ctx context.Context, actor domain.Principal, id string) error
	likeFn   func(ctx context.Context, id, fingerprint string) (*ports.LikeResult, error)
}

func (s *stubBlogService) Create(ctx context.Context, actor domain.Principal, in ports.CreateBlogInput) (*domain.Blog, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubBlogService) List(ctx context.Context, viewer *domain.Principal, in ports.ListBlogsInput) (*ports.BlogPage, error) {
	return s.listFn(ctx, viewer, in)
}

func (s *stubBlogService) GetBySlug(ctx context.Context, viewer *domain.Principal, slug string) (*domain.Blog, error) {
	return s.getFn(ctx, viewer, slug)
}

func (s *stubBlogService) Update(ctx context.Context, actor domain.Principal, id string, in ports.UpdateBlogInput) (*domain.Blog, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubBlogService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubBlogService) Like(ctx context.Context, id, fingerprint string) (*ports.LikeResult, error) {
	return s.likeFn(ctx, id, fingerprint)
}

type stubCommentService struct {
	addFn          func(ctx context.Context, in ports.AddCommentInput) (*domain.Comment, error)
	listFn         func(ctx context.Context, blogID string) ([]*domain.Comment, error)
	pendingFn      func(ctx context.Context) ([]*domain.Comment, error)
	pendingCountFn func(ctx context.Context) (int64, error)
	approveFn      func(ctx context.Context, id string) (*domain.Comment, error)
	rejectFn       func(ctx context.Context, id string) error
}

func (s *stubCommentService) Add(ctx context.Context, in ports.AddCommentInput) (*domain.Comment, error) {
	return s.addFn(ctx, in)
}

func (s *stubCommentService) ListApproved(ctx context.Context, blogID string) ([]*domain.Comment, error) {
	return s.listFn(ctx, blogID)
}

func (s *stubCommentService) ListPending(ctx context.Context) ([]*domain.Comment, error) {
	return s.pendingFn(ctx)
}

func (s *stubCommentService) PendingCount(ctx context.Context) (int64, error) {
	return s.pendingCountFn(ctx)
}

func (s *stubCommentService) Approve(ctx context.Context, id string) (*domain.Comment, error) {
	return s.approveFn(ctx, id)
}

func (s *stubCommentService) Reject(ctx context.Context, id string) error {
	return s.rejectFn(ctx, id)
}

// stubImageService records what it was asked to save and returns one stored
// image per input.
type stubImageService struct {
	saveErr error
	saved   []string // original names
	bodies  []string
}

func (s *stubImageService) Save(_ context.Context, files []ports.ImageInput) ([]domain.StoredImage, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if len(files) == 0 {
		return nil, domain.ErrNoImages
	}
	out := make([]domain.StoredImage, len(files))
	for i, f := range files {
		b, _ := io.ReadAll(f.Content)
		s.saved = append(s.saved, f.OriginalName)
		s.bodies = append(s.bodies, string(b))
		key := "key-" + f.OriginalName
		out[i] = domain.StoredImage{Key: key, URL: s.URL(key), OriginalName: f.OriginalName, Size: f.Size}
	}
	return out, nil
}

func (s *stubImageService) Discard(context.Context, []string) {}

func (s *stubImageService) URL(key string) string { return "http://cdn.test/" + key }

// --- request helpers ---

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type formFile struct {
	field, name, body string
}

// multipartContext builds a multipart request with the given fields and files.
func multipartContext(t *testing.T, e *echo.Echo, method, target string, fields map[string]string, files ...formFile) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(f.body)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, id string, role domain.Role) echo.Context {
	c.Set("principal", domain.Principal{ID: id, Role: role})
	return c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}
