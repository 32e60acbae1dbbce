package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/blogcms/cms-api/docs"
	"github.com/blogcms/cms-api/internal/api/handler"
	"github.com/blogcms/cms-api/internal/api/middleware"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
	"github.com/blogcms/cms-api/internal/infrastructure/http/handlers"
	"github.com/blogcms/cms-api/pkg/logger"
)

const (
	// bodyLimit covers five 5MB images plus form fields.
	bodyLimit      = "30M"
	requestTimeout = 60 * time.Second
)

// Dependencies is everything the router needs; cmd/cms builds it.
type Dependencies struct {
	Log   zerolog.Logger
	Debug bool

	CORSOrigins []string

	Codec ports.TokenCodec
	Users ports.IdentityRepository
	Staff ports.IdentityRepository

	Auth     ports.AuthService
	Blogs    ports.BlogService
	Comments ports.CommentService
	Images   ports.ImageService

	// UploadDir is served under /uploads when images are kept on local disk.
	UploadDir string

	HealthChecks []handlers.Check

	// Registerer and Gatherer default to the prometheus globals when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.Debug)
	// Like dedup keys on the client address; only trust X-Forwarded-For from
	// private and loopback proxies.
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.EchoMiddleware(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "blog_cms",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || p == "/health" || p == "/health/ready"
		},
	}))

	// --- Probes, metrics, docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks...)

	e.GET("/health", healthHandler.Liveness)            // liveness:  is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if deps.UploadDir != "" {
		e.Static("/uploads", deps.UploadDir)
	}

	// --- Dependencies ---
	gate := middleware.NewAuthGate(deps.Codec, deps.Users, deps.Staff, deps.Log)
	authenticated := gate.Authenticate()
	optional := gate.Optional()
	staffOnly := middleware.Authorize(middleware.StaffRoles...)
	moderators := middleware.Authorize(middleware.ModeratorRoles...)

	authHandler := handler.NewAuthHandler(deps.Auth)
	adminHandler := handler.NewAdminHandler(deps.Auth, deps.Comments)
	blogHandler := handler.NewBlogHandler(deps.Blogs, deps.Images)
	commentHandler := handler.NewCommentHandler(deps.Comments)
	uploadHandler := handler.NewUploadHandler(deps.Images)

	api := e.Group("/api", echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
		Timeout: requestTimeout,
	}))
	api.GET("", handler.Index)

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/admin-login", authHandler.StaffLogin)
	auth.GET("/verify", authHandler.Verify, authenticated)

	// --- Administration ---
	admin := api.Group("/admin", authenticated)
	admin.POST("/staff", adminHandler.CreateStaff, moderators)
	admin.PATCH("/staff/:id/role", adminHandler.ChangeRole, middleware.Authorize(domain.RoleSuperAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard, staffOnly)

	// --- Blogs ---
	blogs := api.Group("/blogs")
	blogs.GET("/get", blogHandler.List, optional)
	blogs.GET("/get/:slug", blogHandler.GetBySlug, optional)
	blogs.POST("/like/:id", blogHandler.Like)
	blogs.POST("/add", blogHandler.Create, authenticated, staffOnly)
	blogs.PUT("/update/:id", blogHandler.Update, authenticated, staffOnly)
	blogs.DELETE("/delete/:id", blogHandler.Delete, authenticated, staffOnly)

	// --- Comments ---
	comments := api.Group("/comments")
	comments.POST("", commentHandler.Add)
	comments.GET("/blog/:blogId", commentHandler.ListByBlog)
	comments.GET("/pending", commentHandler.Pending, authenticated, moderators)
	comments.PUT("/:id/approve", commentHandler.Approve, authenticated, moderators)
	comments.DELETE("/:id/reject", commentHandler.Reject, authenticated, moderators)

	// --- Uploads ---
	upload := api.Group("/upload", authenticated, moderators)
	upload.POST("/image", uploadHandler.Single)
	upload.POST("/images", uploadHandler.Multiple)

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/api")
	})

	return e
}
