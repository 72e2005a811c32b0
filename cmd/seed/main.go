package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/ecobin/internal/adapters/memory"
	natsadapter "github.com/samirrijal/ecobin/internal/adapters/nats"
	"github.com/samirrijal/ecobin/internal/adapters/postgres"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/pkg/config"
	"github.com/samirrijal/ecobin/internal/pkg/logging"
)

// seed loads the bin catalog into Postgres. With no argument the built-in
// fixture is loaded; otherwise the argument names a YAML catalog file.
func main() {
	cfg, err := config.Load("ecobin-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.SetupFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		bins   []domain.Bin
		source = "fixture"
	)
	if len(os.Args) > 1 {
		source = os.Args[1]
		bins, err = memory.LoadCatalog(source)
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
	} else {
		bins = memory.Fixture()
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	start := time.Now()
	if err := postgres.NewBinRepo(db).UpsertBatch(ctx, bins); err != nil {
		log.Fatalf("upsert bins: %v", err)
	}
	slog.Info("catalog loaded", "source", source, "bins", len(bins), "took", time.Since(start).String())

	// Tell running API instances to drop their cached catalog
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, API caches expire on their own", "error", err)
		return
	}
	defer pub.Close()
	if err := pub.PublishCatalogChanged(ctx); err != nil {
		slog.Warn("publish catalog change", "error", err)
	}
}
