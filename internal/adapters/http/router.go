package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/ecobin/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return errTooManyRequests(c, "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1
	v1 := app.Group("/v1")
	v1.Get("/bins", timeout.NewWithContext(ListBinsHandler(deps), requestTimeout))
	v1.Get("/bins/nearby", timeout.NewWithContext(NearbyBinsHandler(deps), requestTimeout))
	v1.Get("/bins/:id", timeout.NewWithContext(GetBinHandler(deps), requestTimeout))
	v1.Get("/bins/:id/card", timeout.NewWithContext(BinCardHandler(deps), requestTimeout))
	v1.Get("/bins/:id/directions", timeout.NewWithContext(DirectionsHandler(deps), requestTimeout))
	v1.Get("/cities", timeout.NewWithContext(CitiesHandler(deps), requestTimeout))
	v1.Get("/categories", CategoriesHandler(deps))
	v1.Get("/map/viewport", timeout.NewWithContext(MapViewportHandler(deps), requestTimeout))
	v1.Get("/geolocate", timeout.NewWithContext(GeolocateHandler(deps), requestTimeout))

	// Public forms: stricter per-IP limit, longer timeout for the submit delay
	forms := v1.Group("/submissions", deps.SubmitLimiter.Middleware())
	forms.Post("/bins", timeout.NewWithContext(SubmitBinHandler(deps), 2*requestTimeout))
	forms.Post("/contact", timeout.NewWithContext(SubmitContactHandler(deps), 2*requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultSpecPath)

	// WebSocket map sessions
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("ip", c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/map", websocket.New(MapSessionHandler(deps)))
}
