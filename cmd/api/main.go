package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/ecobin/internal/adapters/geoip"
	"github.com/samirrijal/ecobin/internal/adapters/http"
	"github.com/samirrijal/ecobin/internal/adapters/mail"
	"github.com/samirrijal/ecobin/internal/adapters/memory"
	natsadapter "github.com/samirrijal/ecobin/internal/adapters/nats"
	"github.com/samirrijal/ecobin/internal/adapters/postgres"
	"github.com/samirrijal/ecobin/internal/adapters/valkey"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/core/usecases"
	"github.com/samirrijal/ecobin/internal/pkg/config"
	"github.com/samirrijal/ecobin/internal/pkg/logging"
	"github.com/samirrijal/ecobin/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("ecobin-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.SetupFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		Map:           mapOptions(cfg),
		SubmitLimiter: http.NewIPRateLimiter(cfg.Submissions.RatePerMinute, cfg.Submissions.Burst),
	}

	// Bin catalog and submission storage
	var (
		binRepo ports.BinRepository
		subRepo ports.SubmissionRepository
	)
	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		binRepo = postgres.NewBinRepo(db)
		subRepo = postgres.NewSubmissionRepo(db)
		go recordPoolMetrics(ctx, db)
	case "file":
		store, err := memory.NewCatalogStore(cfg.Store.CatalogFile)
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
		binRepo = store
		subRepo = memory.NewSubmissionStore()
	default:
		binRepo = memory.NewFixtureStore()
		subRepo = memory.NewSubmissionStore()
	}
	slog.Info("bin store ready", "driver", cfg.Store.Driver)

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		deps.Cache = cache
		cacheSvc = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, submissions will not be queued for review", "error", err)
	} else {
		defer pub.Close()
		deps.NATS = pub.Conn()
		publisher = pub
	}

	// IP geolocation
	if cfg.GeoIP.DBPath != "" {
		locator, err := geoip.Open(cfg.GeoIP.DBPath)
		if err != nil {
			slog.Warn("geoip database unavailable", "error", err)
		} else {
			defer locator.Close()
			deps.Locator = locator
		}
	}

	// Use cases
	deps.Bins = usecases.NewBinService(binRepo, cacheSvc)
	deps.Submissions = usecases.NewSubmissionService(
		subRepo,
		publisher,
		mail.NewNotifier(cfg.Mail),
		time.Duration(cfg.Submissions.SimulatedDelayMS)*time.Millisecond,
	)

	// Catalog changes published by the seeder drop the cached catalog
	if cacheSvc != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("catalog change subscription unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeCatalogChanged(ctx, func(ctx context.Context) error {
				slog.Info("catalog changed, invalidating cache")
				return deps.Bins.Invalidate(ctx)
			})
			if err != nil {
				slog.Warn("subscribe catalog changes", "error", err)
			}
		}
	}

	go sweepLimiter(ctx, deps.SubmitLimiter)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "EcoBin API",
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func mapOptions(cfg *config.Config) usecases.MapOptions {
	opts := usecases.DefaultMapOptions()
	opts.TileURL = cfg.Map.TileURL
	opts.Attribution = cfg.Map.Attribution
	opts.Default = domain.Viewport{
		Center: domain.GeoPoint{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLon},
		Zoom:   cfg.Map.DefaultZoom,
	}
	opts.DetailZoom = cfg.Map.DetailZoom
	opts.WalkingRadius = cfg.Map.WalkingRadius
	opts.DrivingRadius = cfg.Map.DrivingRadius
	opts.Badge = usecases.BadgeMode(cfg.Display.StatusBadge)
	return opts
}

func recordPoolMetrics(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			db.RecordPoolMetrics()
		case <-ctx.Done():
			return
		}
	}
}

func sweepLimiter(ctx context.Context, l *http.IPRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
