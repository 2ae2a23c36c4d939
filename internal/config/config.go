// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir  string // Base directory for the sqlite databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	RiskFreeRate      float64       // annual, e.g. 0.02
	MaxConcentration  float64       // single-position weight ceiling, (0, 1]
	MonteCarloWorkers int           // worker pool size for simulations
	CacheTTL          time.Duration // stress-test result cache lifetime

	Snapshot *SnapshotConfig
}

// SnapshotConfig holds the object-storage settings for nightly archive
// snapshots. Disabled when no bucket is configured.
type SnapshotConfig struct {
	Enabled         bool
	Endpoint        string // custom S3-compatible endpoint, empty for AWS
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	KeepCount       int // how many snapshots to retain
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VIGIL_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("VIGIL_PORT", 8010),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0.02),
		MaxConcentration:  getEnvAsFloat("MAX_CONCENTRATION", 0.25),
		MonteCarloWorkers: getEnvAsInt("MONTECARLO_WORKERS", 4),
		CacheTTL:          time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		Snapshot:          loadSnapshotConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxConcentration <= 0 || c.MaxConcentration > 1 {
		return fmt.Errorf("max concentration must be in (0, 1], got %g", c.MaxConcentration)
	}
	if c.MonteCarloWorkers < 1 {
		return fmt.Errorf("monte carlo workers must be at least 1, got %d", c.MonteCarloWorkers)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.Snapshot.Enabled && c.Snapshot.Bucket == "" {
		return fmt.Errorf("snapshot enabled but no bucket configured")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func loadSnapshotConfig() *SnapshotConfig {
	return &SnapshotConfig{
		Enabled:         getEnvAsBool("SNAPSHOT_ENABLED", false),
		Endpoint:        getEnv("SNAPSHOT_S3_ENDPOINT", ""),
		Region:          getEnv("SNAPSHOT_S3_REGION", "auto"),
		Bucket:          getEnv("SNAPSHOT_S3_BUCKET", ""),
		AccessKeyID:     getEnv("SNAPSHOT_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("SNAPSHOT_S3_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("SNAPSHOT_S3_PREFIX", "vigil-snapshots"),
		KeepCount:       getEnvAsInt("SNAPSHOT_KEEP_COUNT", 14),
	}
}
