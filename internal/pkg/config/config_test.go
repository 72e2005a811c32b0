package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/ecobin/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("ecobin-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Map.DetailZoom != 14 {
		t.Errorf("expected detail zoom 14, got %v", cfg.Map.DetailZoom)
	}
	if cfg.Map.WalkingRadius != 1000 || cfg.Map.DrivingRadius != 5000 {
		t.Errorf("unexpected ring radii %v/%v", cfg.Map.WalkingRadius, cfg.Map.DrivingRadius)
	}
	if cfg.Telemetry.ServiceName != "ecobin-test" {
		t.Errorf("expected service name ecobin-test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ECOBIN_SERVER_PORT", "9090")
	t.Setenv("ECOBIN_DISPLAY_STATUS_BADGE", "status")

	cfg, err := config.Load("ecobin-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Display.StatusBadge != "status" {
		t.Errorf("expected status badge mode, got %s", cfg.Display.StatusBadge)
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Store:   config.StoreConfig{Driver: "file"},
		Map:     config.MapConfig{DefaultZoom: 5, DetailZoom: 14, WalkingRadius: 1000, DrivingRadius: 500},
		Display: config.DisplayConfig{StatusBadge: "fancy"},
		Submissions: config.SubmissionsConfig{
			RatePerMinute: 5,
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "store.catalog_file", "map.driving_radius", "display.status_badge"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s: %v", want, err)
		}
	}
}
