package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/ecobin/internal/adapters/geoip"
	"github.com/samirrijal/ecobin/internal/adapters/postgres"
	"github.com/samirrijal/ecobin/internal/adapters/valkey"
	"github.com/samirrijal/ecobin/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Bins        *usecases.BinService
	Submissions *usecases.SubmissionService
	Map         usecases.MapOptions
	// SubmitLimiter throttles the public forms per client IP. Nil disables it.
	SubmitLimiter *IPRateLimiter
	Locator       *geoip.Locator
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
