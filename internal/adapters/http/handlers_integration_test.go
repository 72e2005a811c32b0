//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/samirrijal/ecobin/internal/adapters/http"
	"github.com/samirrijal/ecobin/internal/adapters/memory"
	"github.com/samirrijal/ecobin/internal/adapters/postgres"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
	"github.com/samirrijal/ecobin/internal/pkg/config"
	"github.com/samirrijal/ecobin/migrations"
)

// setupTestDB connects to the test database, applies migrations and loads
// the fixture catalog.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	cfg, err := config.Load("ecobin-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()
	provider, err := migrations.NewProvider(sqlDB)
	if err != nil {
		t.Fatalf("goose provider: %v", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.Pool.Exec(ctx, "TRUNCATE bins"); err != nil {
		t.Fatalf("truncate bins: %v", err)
	}
	if err := postgres.NewBinRepo(db).UpsertBatch(ctx, memory.Fixture()); err != nil {
		t.Fatalf("seed bins: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	return &http.Dependencies{
		Bins:        usecases.NewBinService(postgres.NewBinRepo(db), nil),
		Submissions: usecases.NewSubmissionService(postgres.NewSubmissionRepo(db), nil, nil, 0),
		Map:         usecases.DefaultMapOptions(),
		DB:          db,
	}
}

func TestListBins_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	app := setupApp(setupTestDeps(t, setupTestDB(t)))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/bins?city=Bangalore", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page binPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !equalIDs(page.ids(), []string{"1", "2"}) {
		t.Errorf("expected [1 2] in catalog order, got %v", page.ids())
	}
}

// TestNearbyBins_Integration tests the PostGIS radius query.
func TestNearbyBins_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	app := setupApp(setupTestDeps(t, setupTestDB(t)))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/bins/nearby?lat=19.1362&lon=72.8296&radius=20000", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var bins []domain.Bin
	if err := json.NewDecoder(resp.Body).Decode(&bins); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(bins) != 2 || bins[0].ID != "3" {
		t.Errorf("expected Mumbai bins nearest first, got %+v", bins)
	}
}

func TestSubmitBin_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	req := httptest.NewRequest("POST", "/v1/submissions/bins", strings.NewReader(validBinJSON))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var receipt domain.SubmissionReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	stored, err := postgres.NewSubmissionRepo(db).GetBinSubmission(context.Background(), receipt.ID)
	if err != nil {
		t.Fatalf("submission not persisted: %v", err)
	}
	if stored.Status != domain.SubmissionPendingReview || stored.Submission.Contact != "+919876543210" {
		t.Errorf("unexpected stored submission %+v", stored)
	}
}
