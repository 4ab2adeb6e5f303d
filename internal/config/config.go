package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Warehouse connection configuration
	Warehouse WarehouseConfig

	// Dashboard tuning (cache TTL, window sizes, thresholds)
	Dashboard DashboardConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// WarehouseConfig holds the warehouse connection settings. URL is the
// explicit credential block; when it is empty the pgx driver falls back to
// the ambient PG* environment credentials.
type WarehouseConfig struct {
	URL             string
	MaxOpenConns    int
	MinIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// DashboardConfig holds cache and view-model tuning. Defaults mirror the
// production dashboard: 5-minute cache, 90-day trend, 30-day heatmap.
type DashboardConfig struct {
	CacheTTL          time.Duration
	TrendDays         int
	HeatmapDays       int
	TopTags           int
	ChartTags         int
	LeaderboardSize   int
	CSATBoardSize     int
	CSATBoardMinLoad  int64
	CSATTargetPct     float64
	CSATGoodThreshold float64
	BacklogThreshold  int64
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getStringSliceOrDefault("ALLOWED_ORIGINS", []string{"*"}),
		},
		Warehouse: WarehouseConfig{
			URL:             os.Getenv("WAREHOUSE_URL"),
			MaxOpenConns:    getIntOrDefault("WAREHOUSE_MAX_OPEN_CONNS", 10),
			MinIdleConns:    getIntOrDefault("WAREHOUSE_MIN_IDLE_CONNS", 2),
			ConnMaxLifetime: getDurationOrDefault("WAREHOUSE_CONN_MAX_LIFETIME", 30*time.Minute),
			QueryTimeout:    getDurationOrDefault("WAREHOUSE_QUERY_TIMEOUT", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			CacheTTL:          getDurationOrDefault("DASHBOARD_CACHE_TTL", 5*time.Minute),
			TrendDays:         getIntOrDefault("DASHBOARD_TREND_DAYS", 90),
			HeatmapDays:       getIntOrDefault("DASHBOARD_HEATMAP_DAYS", 30),
			TopTags:           getIntOrDefault("DASHBOARD_TOP_TAGS", 15),
			ChartTags:         getIntOrDefault("DASHBOARD_CHART_TAGS", 8),
			LeaderboardSize:   getIntOrDefault("DASHBOARD_LEADERBOARD_SIZE", 10),
			CSATBoardSize:     getIntOrDefault("DASHBOARD_CSAT_BOARD_SIZE", 5),
			CSATBoardMinLoad:  int64(getIntOrDefault("DASHBOARD_CSAT_BOARD_MIN_LOAD", 10)),
			CSATTargetPct:     getFloatOrDefault("DASHBOARD_CSAT_TARGET_PCT", 70),
			CSATGoodThreshold: getFloatOrDefault("DASHBOARD_CSAT_GOOD_THRESHOLD", 65),
			BacklogThreshold:  int64(getIntOrDefault("DASHBOARD_BACKLOG_THRESHOLD", 150)),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "support-analytics"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.Dashboard.CacheTTL <= 0 {
		errs = append(errs, "DASHBOARD_CACHE_TTL must be positive")
	}
	if c.Dashboard.TrendDays <= 0 {
		errs = append(errs, "DASHBOARD_TREND_DAYS must be positive")
	}
	if c.Dashboard.HeatmapDays <= 0 {
		errs = append(errs, "DASHBOARD_HEATMAP_DAYS must be positive")
	}
	if c.Dashboard.ChartTags > c.Dashboard.TopTags {
		errs = append(errs, "DASHBOARD_CHART_TAGS cannot exceed DASHBOARD_TOP_TAGS")
	}
	if c.Warehouse.MinIdleConns > c.Warehouse.MaxOpenConns {
		errs = append(errs, "WAREHOUSE_MIN_IDLE_CONNS cannot be greater than WAREHOUSE_MAX_OPEN_CONNS")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Warehouse: %s, CacheTTL: %s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		redactURL(c.Warehouse.URL),
		c.Dashboard.CacheTTL,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL redacts sensitive parts of a connection URL
func redactURL(url string) string {
	if url == "" {
		return "[ambient credentials]"
	}
	if idx := strings.Index(url, "@"); idx > 0 {
		return "[REDACTED]" + url[idx:]
	}
	return "[REDACTED]"
}
