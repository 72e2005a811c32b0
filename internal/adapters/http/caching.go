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

		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/v1/geolocate":
			ttl = "private, no-store" // per-client

		case path == "/v1/categories":
			ttl = "public, max-age=3600" // fixed table

		case path == "/v1/cities":
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/v1/bins/nearby"):
			ttl = "public, max-age=300"

		case strings.HasSuffix(path, "/directions"):
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/v1/bins/"):
			ttl = "public, max-age=600" // single bin or card

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
