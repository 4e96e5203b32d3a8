package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facegate/internal/ws"
)

// BodyLimit fits a registration with several base64 photos.
const BodyLimit = 32 * 1024 * 1024

type Dependencies struct {
	Accounts handler.AccountService
	// Ready is nil in in-memory mode.
	Ready handler.ReadinessCheck
	// LoginRateLimit is the per-IP budget for /login and /register per minute.
	LoginRateLimit int
	// RequestTimeout bounds the face endpoints; zero disables it.
	RequestTimeout time.Duration
	// Live streams access events to admin dashboards; optional.
	Live *ws.Hub
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facegate API",
		BodyLimit:    BodyLimit,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var ready handler.ReadinessCheck
	if r.deps != nil {
		ready = r.deps.Ready
	}
	healthHandler := handler.NewHealthHandler(ready, r.logger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil || r.deps.Accounts == nil {
		return
	}

	// Login and register are throttled per client IP
	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max:    r.deps.LoginRateLimit,
		Window: time.Minute,
	})
	limited := r.rateLimiter.Handler()

	accountHandler := handler.NewAccountHandler(r.deps.Accounts, r.logger)
	r.app.Post("/register", limited, r.withTimeout(accountHandler.Register))
	r.app.Post("/login", limited, r.withTimeout(accountHandler.Login))
	r.app.Post("/logout", accountHandler.Logout)
	r.app.Get("/admin/data", accountHandler.AdminData)

	if r.deps.Live != nil {
		r.app.Get("/admin/live", ws.UpgradeMiddleware(), ws.Handler(r.deps.Live))
	}
}

// withTimeout cancels the request context after RequestTimeout and answers 408.
func (r *Router) withTimeout(h fiber.Handler) fiber.Handler {
	if r.deps.RequestTimeout <= 0 {
		return h
	}
	return timeout.NewWithContext(h, r.deps.RequestTimeout)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
