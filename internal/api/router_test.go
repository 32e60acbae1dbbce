package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
	"github.com/blogcms/cms-api/internal/core/service"
	"github.com/blogcms/cms-api/internal/infrastructure/http/handlers"
	"github.com/blogcms/cms-api/internal/infrastructure/token"
)

// memIdentityStore is an in-memory ports.IdentityRepository.
type memIdentityStore struct {
	mu      sync.Mutex
	prefix  string
	records map[string]*domain.Identity
}

func newMemIdentityStore(prefix string) *memIdentityStore {
	return &memIdentityStore{prefix: prefix, records: map[string]*domain.Identity{}}
}

func (s *memIdentityStore) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (s *memIdentityStore) FindByLogin(_ context.Context, login string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Email == login || (r.Username != "" && r.Username == login) {
			clone := *r
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (s *memIdentityStore) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Email == identity.Email {
			return nil, domain.ErrIdentityExists
		}
	}
	clone := *identity
	clone.ID = s.prefix + string(rune('a'+len(s.records)))
	s.records[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *memIdentityStore) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	r.Role = role
	clone := *r
	return &clone, nil
}

// cannedBlogs answers List with a fixed page and records the viewer.
type cannedBlogs struct {
	ports.BlogService
	lastViewer *domain.Principal
	created    int
}

func (b *cannedBlogs) List(_ context.Context, viewer *domain.Principal, in ports.ListBlogsInput) (*ports.BlogPage, error) {
	b.lastViewer = viewer
	return &ports.BlogPage{Page: 1, Limit: 10}, nil
}

func (b *cannedBlogs) Create(_ context.Context, actor domain.Principal, in ports.CreateBlogInput) (*domain.Blog, error) {
	b.created++
	return &domain.Blog{ID: "b1", Title: in.Title, Slug: "t", AuthorID: actor.ID, AuthorRole: actor.Role}, nil
}

type cannedComments struct {
	ports.CommentService
}

func (cannedComments) ListPending(context.Context) ([]*domain.Comment, error) {
	return []*domain.Comment{}, nil
}

type nopImages struct{}

func (nopImages) Save(context.Context, []ports.ImageInput) ([]domain.StoredImage, error) {
	return nil, domain.ErrNoImages
}
func (nopImages) Discard(context.Context, []string) {}
func (nopImages) URL(key string) string            { return "/uploads/" + key }

type routerFixture struct {
	e     *echo.Echo
	codec *token.Codec
	users *memIdentityStore
	staff *memIdentityStore
	blogs *cannedBlogs
}

func newRouterFixture(t *testing.T, checks ...handlers.Check) *routerFixture {
	t.Helper()
	codec, err := token.NewCodec(token.Config{Secret: "router-test-secret", Issuer: "test"})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	users := newMemIdentityStore("u")
	staff := newMemIdentityStore("s")
	blogs := &cannedBlogs{}
	reg := prometheus.NewRegistry()

	e := NewRouter(Dependencies{
		Log:          zerolog.Nop(),
		Codec:        codec,
		Users:        users,
		Staff:        staff,
		Auth:         service.NewAuthService(users, staff, codec, zerolog.Nop()),
		Blogs:        blogs,
		Comments:     cannedComments{},
		Images:       nopImages{},
		HealthChecks: checks,
		Registerer:   reg,
		Gatherer:     reg,
	})
	return &routerFixture{e: e, codec: codec, users: users, staff: staff, blogs: blogs}
}

func (f *routerFixture) do(method, target, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) staffToken(t *testing.T, role domain.Role) string {
	t.Helper()
	created, err := f.staff.Create(context.Background(), &domain.Identity{Email: string(role) + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	tok, _, err := f.codec.Issue(created.ID, role)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func bodyOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestRouter_Probes(t *testing.T) {
	f := newRouterFixture(t,
		handlers.Check{Name: "mongodb", Ping: func(context.Context) error { return nil }},
		handlers.Check{Name: "redis", Ping: func(context.Context) error { return errors.New("down") }},
	)

	if rec := f.do(http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	rec := f.do(http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable || bodyOf(t, rec)["status"] != "degraded" {
		t.Fatalf("readiness: expected 503 degraded, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/metrics", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("index: expected 200, got %d", rec.Code)
	}
}

func TestRouter_RegisterLoginVerify(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/register", `{"name":"Ann","email":"ann@example.com","password":"secret123"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/auth/register", `{"name":"Ann","email":"ann@example.com","password":"secret123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"wrong-pass"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"secret123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	tok, _ := bodyOf(t, rec)["token"].(string)
	if tok == "" {
		t.Fatalf("expected a token")
	}

	rec = f.do(http.MethodGet, "/api/auth/verify", "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if user := bodyOf(t, rec)["user"].(map[string]any); user["email"] != "ann@example.com" || user["role"] != "user" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestRouter_AuthGateResponses(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/auth/verify", "", "")
	if rec.Code != http.StatusUnauthorized || bodyOf(t, rec)["error"] != "No token" {
		t.Fatalf("expected 401 No token, got %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/api/auth/verify", "", "garbage")
	if rec.Code != http.StatusUnauthorized || bodyOf(t, rec)["error"] != "Invalid token" {
		t.Fatalf("expected 401 Invalid token, got %d %s", rec.Code, rec.Body.String())
	}

	// Well-formed token for an account that does not exist.
	ghost, _, err := f.codec.Issue("nobody", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec = f.do(http.MethodGet, "/api/auth/verify", "", ghost)
	if rec.Code != http.StatusUnauthorized || bodyOf(t, rec)["error"] != "Invalid user" {
		t.Fatalf("expected 401 Invalid user, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RoleChecks(t *testing.T) {
	f := newRouterFixture(t)
	editor := f.staffToken(t, domain.RoleEditor)

	// Editors may write posts.
	rec := f.do(http.MethodPost, "/api/blogs/add", `{"title":"T","content":"C","category":"news"}`, editor)
	if rec.Code != http.StatusCreated || f.blogs.created != 1 {
		t.Fatalf("editor create: expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	// ...but not moderate comments.
	rec = f.do(http.MethodGet, "/api/comments/pending", "", editor)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("editor moderation: expected 403, got %d", rec.Code)
	}
	body := bodyOf(t, rec)
	if body["error"] != "Access denied. Required roles: admin, superadmin" || body["userRole"] != "editor" {
		t.Fatalf("unexpected 403 body %+v", body)
	}

	admin := f.staffToken(t, domain.RoleAdmin)
	if rec := f.do(http.MethodGet, "/api/comments/pending", "", admin); rec.Code != http.StatusOK {
		t.Fatalf("admin moderation: expected 200, got %d", rec.Code)
	}

	// Only superadmins change roles.
	rec = f.do(http.MethodPatch, "/api/admin/staff/sa/role", `{"role":"admin"}`, admin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin role change: expected 403, got %d", rec.Code)
	}
}

func TestRouter_OptionalAuthOnPublicReads(t *testing.T) {
	f := newRouterFixture(t)

	if rec := f.do(http.MethodGet, "/api/blogs/get", "", ""); rec.Code != http.StatusOK || f.blogs.lastViewer != nil {
		t.Fatalf("anonymous list: got %d viewer %+v", rec.Code, f.blogs.lastViewer)
	}

	// A broken token degrades to an anonymous read instead of failing.
	if rec := f.do(http.MethodGet, "/api/blogs/get", "", "garbage"); rec.Code != http.StatusOK || f.blogs.lastViewer != nil {
		t.Fatalf("bad token list: got %d viewer %+v", rec.Code, f.blogs.lastViewer)
	}

	editor := f.staffToken(t, domain.RoleEditor)
	if rec := f.do(http.MethodGet, "/api/blogs/get", "", editor); rec.Code != http.StatusOK {
		t.Fatalf("editor list: expected 200, got %d", rec.Code)
	}
	if f.blogs.lastViewer == nil || f.blogs.lastViewer.Role != domain.RoleEditor {
		t.Fatalf("expected editor viewer, got %+v", f.blogs.lastViewer)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/nope", "", "")
	if rec.Code != http.StatusNotFound || bodyOf(t, rec)["error"] != "Not Found" {
		t.Fatalf("expected 404 envelope, got %d %s", rec.Code, rec.Body.String())
	}
}
