package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10" // Very short for system checks

	case path == "/metrics":
		return "no-cache" // Metrics are real-time

	case strings.HasPrefix(path, "/v1/geo/"):
		return "public, max-age=86400" // Pure functions of the query

	case strings.HasSuffix(path, "/boundary") || path == "/v1/zones/boundaries":
		return "public, max-age=3600"

	case strings.HasPrefix(path, "/v1/zones"):
		return "public, max-age=300"

	case strings.HasPrefix(path, "/v1/fares/"):
		return "public, max-age=300"

	case strings.HasPrefix(path, "/v1/triders"),
		strings.HasPrefix(path, "/v1/rides"),
		strings.HasPrefix(path, "/v1/share/"),
		strings.HasPrefix(path, "/v1/wallets/"):
		return "no-store" // Live or personal data

	case strings.HasPrefix(path, "/v1/"):
		return "private, max-age=0"
	}
	return ""
}
