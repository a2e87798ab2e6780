package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/metamind/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/metamind/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/metamind/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/metamind/internal/database"
	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
	"github.com/saturnino-fabrica-de-software/metamind/internal/service"
	"github.com/saturnino-fabrica-de-software/metamind/internal/ws"
)

type Dependencies struct {
	Service *service.AnalysisService
	// Hub enables the live feed at /v1/ws when set
	Hub *ws.Hub
	// DB is pinged by /ready when history is enabled
	DB database.Pinger
	// Stats serves /v1/stats when set
	Stats handler.StatsReader
	// ProviderCheck makes /ready probe a remote classifier
	ProviderCheck provider.HealthChecker
	ProviderName  string
	APIKey        string
	RateLimitMax  int
	// AnalyzeRateLimitMax gives the analyze routes their own, usually tighter, bucket
	AnalyzeRateLimitMax int
	BodyLimit           int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	cfg := fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "MetaMind Emotion API",
	}
	// base64 inflates the image by a third, leave room for the JSON envelope
	if deps != nil && deps.BodyLimit > 0 {
		cfg.BodyLimit = deps.BodyLimit*4/3 + 64*1024
	}

	return &Router{
		app:    fiber.New(cfg),
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
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var db database.Pinger
	providerName := ""
	var providerCheck provider.HealthChecker
	if r.deps != nil {
		db = r.deps.DB
		providerName = r.deps.ProviderName
		providerCheck = r.deps.ProviderCheck
	}

	healthHandler := handler.NewHealthHandler(db, providerName)
	if providerCheck != nil {
		healthHandler.WithProviderCheck(providerCheck)
	}
	r.app.Get("/", healthHandler.Home)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps != nil && r.deps.Service != nil {
		r.setupAPI()
	}

	// Unmatched routes
	r.app.Use(func(c *fiber.Ctx) error {
		return domain.ErrNotFound
	})
}

func (r *Router) setupAPI() {
	limits := middleware.RateLimiterConfig{Max: r.deps.RateLimitMax}
	if n := r.deps.AnalyzeRateLimitMax; n > 0 {
		limits.PerEndpoint = map[string]middleware.EndpointRateLimit{
			"/analyze":    {Requests: n, Window: time.Minute},
			"/v1/analyze": {Requests: n, Window: time.Minute},
		}
	}
	r.rateLimiter = middleware.NewRateLimiter(limits)
	auth := middleware.Auth(r.deps.APIKey)

	analyzeHandler := handler.NewAnalyzeHandler(r.deps.Service, r.logger)

	// Unversioned path kept for existing clients
	r.app.Post("/analyze", r.rateLimiter.Handler(), auth, analyzeHandler.Analyze)

	v1 := r.app.Group("/v1", r.rateLimiter.Handler(), auth)
	v1.Post("/analyze", analyzeHandler.Analyze)
	v1.Post("/score", analyzeHandler.Score)

	if r.deps.Service.HistoryEnabled() {
		historyHandler := handler.NewHistoryHandler(r.deps.Service)
		v1.Get("/analyses", historyHandler.List)
		v1.Get("/analyses/:id", historyHandler.Get)
		v1.Get("/analyses/:id/similar", historyHandler.Similar)
	}

	if r.deps.Stats != nil {
		v1.Get("/stats", handler.NewStatsHandler(r.deps.Stats).Summary)
	}

	if r.deps.Hub != nil {
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
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
