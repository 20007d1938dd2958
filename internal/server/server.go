// Package server contains the HTTP handlers exposing the portal's feed,
// post, profile, and auth operations.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"newsdesk/internal/cache"
	"newsdesk/internal/config"
	"newsdesk/internal/gateway"
	"newsdesk/internal/middleware"
	"newsdesk/internal/session"
	"newsdesk/internal/store"
	"newsdesk/internal/workflow"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// pinger is implemented by gateways that can verify connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	docs           gateway.DocumentGateway
	files          gateway.FileGateway
	session        session.Provider
	promMiddleware *fiberprometheus.FiberPrometheus
	posts          *store.PostStore
	auth           *store.AuthStore
	postEditor     *workflow.PostEditor
	profileEditor  *workflow.ProfileEditor
	registrar      *workflow.Registrar
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	docs, err := gateway.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("document gateway: %w", err)
	}

	var files gateway.FileGateway
	if cfg.CloudinaryURL != "" {
		files, err = gateway.NewCloudinaryFiles(cfg.CloudinaryURL, cfg.UploadFolder)
		if err != nil {
			return nil, fmt.Errorf("file gateway: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, docs, files), nil
}

// NewServerWithDeps creates a Server using already-initialized gateways.
// Use this in tests or when a bootstrap layer establishes connections.
func NewServerWithDeps(cfg *config.Config, docs gateway.DocumentGateway, files gateway.FileGateway) *Server {
	provider := session.NewCredentialProvider(docs, cfg.JWTSecret)
	posts := store.NewPostStore(docs)
	auth := store.NewAuthStore(provider)

	server := &Server{
		config:         cfg,
		docs:           docs,
		files:          files,
		session:        provider,
		promMiddleware: fiberprometheus.New("newsdesk-api"),
		posts:          posts,
		auth:           auth,
		postEditor:     workflow.NewPostEditor(posts, auth, docs, files),
		profileEditor:  workflow.NewProfileEditor(docs, files),
		registrar:      workflow.NewRegistrar(provider, docs, files),
	}

	middleware.Init(provider)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	api.Get("/categories", s.ListCategories)

	// Post routes
	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Get("/search", s.SearchPosts)
	posts.Post("/", middleware.AuthRequired, s.CreatePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)

	// User routes. /me must be registered before /:id.
	users := api.Group("/users")
	users.Put("/me", middleware.AuthRequired, s.UpdateMyProfile)
	users.Get("/:id", s.GetProfile)
}

// Run starts the HTTP server.
func (s *Server) Run(app *fiber.App) error {
	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if d, ok := s.docs.(interface{ Disconnect(context.Context) error }); ok {
		return d.Disconnect(ctx)
	}
	return nil
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the document gateway is reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	if p, ok := s.docs.(pinger); ok {
		if err := p.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
