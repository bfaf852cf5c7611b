package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/trigo/internal/pkg/metrics"
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

	// Rate limiting: 120 requests per minute per IP. Gateway webhooks are exempt.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/v1/webhooks/paymongo"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
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

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	with := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1.Get("/zones", with(ListZonesHandler(deps)))
	v1.Get("/zones/locate", with(LocateZoneHandler(deps)))
	v1.Get("/zones/boundaries", with(ZoneBoundariesHandler(deps)))
	v1.Get("/zones/:id", with(GetZoneHandler(deps)))
	v1.Put("/zones/:id", with(PutZoneHandler(deps)))
	v1.Get("/zones/:id/boundary", with(ZoneBoundaryHandler(deps)))

	v1.Get("/triders", with(ListTridersHandler(deps)))
	v1.Post("/triders", with(RegisterTriderHandler(deps)))
	v1.Get("/triders/:id", with(GetTriderHandler(deps)))
	v1.Post("/triders/:id/location", with(UpdateTriderLocationHandler(deps)))
	v1.Post("/triders/:id/status", with(SetTriderStatusHandler(deps)))

	v1.Post("/rides", with(RequestRideHandler(deps)))
	v1.Get("/rides", with(ListRidesHandler(deps)))
	v1.Get("/rides/:id", with(GetRideHandler(deps)))
	v1.Get("/rides/:id/candidates", with(RideCandidatesHandler(deps)))
	v1.Post("/rides/:id/dispatch", with(DispatchRideHandler(deps)))
	v1.Post("/rides/:id/start", with(StartRideHandler(deps)))
	v1.Post("/rides/:id/complete", with(CompleteRideHandler(deps)))
	v1.Post("/rides/:id/cancel", with(CancelRideHandler(deps)))
	v1.Post("/rides/:id/share", with(ShareRideHandler(deps)))
	v1.Post("/rides/:id/messages", with(SendMessageHandler(deps)))
	v1.Get("/share/:token", with(ResolveShareHandler(deps)))

	v1.Get("/wallets/:user_id", with(GetWalletHandler(deps)))
	v1.Get("/wallets/:user_id/transactions", with(WalletTransactionsHandler(deps)))
	v1.Post("/webhooks/paymongo", with(PaymentWebhookHandler(deps)))

	v1.Get("/fares/quote", with(FareQuoteHandler(deps)))
	v1.Get("/geo/distance", DistanceHandler())
	v1.Get("/geo/circle", CircleHandler())

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, OpenAPIPath)

	// WebSocket relay needs a broker connection
	if deps.NATS == nil {
		return
	}
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
