package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Store       StoreConfig       `mapstructure:"store"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Map         MapConfig         `mapstructure:"map"`
	GeoIP       GeoIPConfig       `mapstructure:"geoip"`
	Submissions SubmissionsConfig `mapstructure:"submissions"`
	Mail        MailConfig        `mapstructure:"mail"`
	Temporal    TemporalConfig    `mapstructure:"temporal"`
	Display     DisplayConfig     `mapstructure:"display"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

// StoreConfig selects the bin catalog source.
// Driver is "memory" (compiled-in fixture), "file" (YAML catalog) or "postgres".
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	CatalogFile string `mapstructure:"catalog_file"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// MapConfig carries the viewport defaults and overlay geometry.
type MapConfig struct {
	TileURL       string  `mapstructure:"tile_url"`
	Attribution   string  `mapstructure:"attribution"`
	DefaultLat    float64 `mapstructure:"default_lat"`
	DefaultLon    float64 `mapstructure:"default_lon"`
	DefaultZoom   float64 `mapstructure:"default_zoom"`
	DetailZoom    float64 `mapstructure:"detail_zoom"`
	WalkingRadius float64 `mapstructure:"walking_radius"`
	DrivingRadius float64 `mapstructure:"driving_radius"`
}

type GeoIPConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type SubmissionsConfig struct {
	SimulatedDelayMS int `mapstructure:"simulated_delay_ms"`
	RatePerMinute    int `mapstructure:"rate_per_minute"`
	Burst            int `mapstructure:"burst"`
}

type MailConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	FromName  string `mapstructure:"from_name"`
	Moderator string `mapstructure:"moderator"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool { return m.Host != "" }

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// DisplayConfig controls presentation choices.
// StatusBadge is "legacy" (every bin shows Active) or "status".
type DisplayConfig struct {
	StatusBadge string `mapstructure:"status_badge"`
}

// Load reads configuration from .env, an optional config file and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173, http://localhost:8080")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.catalog_file", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ecobin")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ecobin")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("map.default_lat", 20.5937)
	v.SetDefault("map.default_lon", 78.9629)
	v.SetDefault("map.default_zoom", 5)
	v.SetDefault("map.detail_zoom", 14)
	v.SetDefault("map.walking_radius", 1000)
	v.SetDefault("map.driving_radius", 5000)
	v.SetDefault("geoip.db_path", "")
	v.SetDefault("submissions.simulated_delay_ms", 1500)
	v.SetDefault("submissions.rate_per_minute", 5)
	v.SetDefault("submissions.burst", 5)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "noreply@ecobin.local")
	v.SetDefault("mail.from_name", "EcoBin")
	v.SetDefault("mail.moderator", "moderators@ecobin.local")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "bin-review")
	v.SetDefault("display.status_badge", "legacy")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ECOBIN_DATABASE_HOST → database.host
	v.SetEnvPrefix("ECOBIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Store.Driver {
	case "memory":
	case "file":
		if c.Store.CatalogFile == "" {
			errs = append(errs, "store.catalog_file is required for the file driver")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be memory, file or postgres, got %q", c.Store.Driver))
	}

	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 || c.Map.DefaultLon < -180 || c.Map.DefaultLon > 180 {
		errs = append(errs, "map.default_lat/default_lon out of range")
	}
	if c.Map.DetailZoom <= 0 || c.Map.DefaultZoom <= 0 {
		errs = append(errs, "map zoom levels must be positive")
	}
	if c.Map.WalkingRadius <= 0 || c.Map.DrivingRadius <= c.Map.WalkingRadius {
		errs = append(errs, "map.driving_radius must exceed a positive map.walking_radius")
	}
	if c.Submissions.SimulatedDelayMS < 0 {
		errs = append(errs, "submissions.simulated_delay_ms must not be negative")
	}
	if c.Submissions.RatePerMinute <= 0 {
		errs = append(errs, "submissions.rate_per_minute must be positive")
	}
	if c.Display.StatusBadge != "legacy" && c.Display.StatusBadge != "status" {
		errs = append(errs, fmt.Sprintf("display.status_badge must be legacy or status, got %q", c.Display.StatusBadge))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
