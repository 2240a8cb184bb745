package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Database configuration
	DatabaseDSN string

	// Redis configuration (alert event stream)
	RedisAddr       string
	RedisDB         int
	RedisStream     string
	RedisStreamMax  int

	// Memcache configuration (scrape block windows)
	MemcacheAddr string

	// HTTP API
	ListenAddr string

	// Browser configuration
	ChromeEnabled      bool
	NavigationTimeout  time.Duration
	ElementWaitTimeout time.Duration
	MaxConcurrentPages int
	SnapshotDir        string

	// Scheduling
	PriceInterval      time.Duration
	ComparisonMultiple int
	RetentionDays      int
	SweepInterval      time.Duration
	LivenessInterval   time.Duration
	JobTimeout         time.Duration
	BlockWindow        time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMax, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_CONCURRENT_PAGES", "4"))
	priceInterval, _ := strconv.Atoi(getEnv("PRICE_INTERVAL_SECONDS", "3600"))
	comparisonMultiple, _ := strconv.Atoi(getEnv("COMPARISON_MULTIPLE", "6"))
	retentionDays, _ := strconv.Atoi(getEnv("RETENTION_DAYS", "30"))
	navTimeout, _ := strconv.Atoi(getEnv("NAVIGATION_TIMEOUT_SECONDS", "60"))
	waitTimeout, _ := strconv.Atoi(getEnv("ELEMENT_WAIT_TIMEOUT_SECONDS", "30"))
	jobTimeout, _ := strconv.Atoi(getEnv("JOB_TIMEOUT_SECONDS", "300"))
	blockWindow, _ := strconv.Atoi(getEnv("BLOCK_WINDOW_SECONDS", "500"))

	return Config{
		DatabaseDSN:        getEnv("DATABASE_DSN", "host=localhost user=pricepulse password=pricepulse dbname=pricepulse port=5432 sslmode=disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            redisDB,
		RedisStream:        getEnv("REDIS_STREAM", "price_alerts"),
		RedisStreamMax:     redisStreamMax,
		MemcacheAddr:       getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		ChromeEnabled:      getEnv("CHROME_ENABLED", "true") == "true",
		NavigationTimeout:  time.Duration(navTimeout) * time.Second,
		ElementWaitTimeout: time.Duration(waitTimeout) * time.Second,
		MaxConcurrentPages: maxPages,
		SnapshotDir:        getEnv("SNAPSHOT_DIR", "snapshots"),
		PriceInterval:      time.Duration(priceInterval) * time.Second,
		ComparisonMultiple: comparisonMultiple,
		RetentionDays:      retentionDays,
		SweepInterval:      24 * time.Hour,
		LivenessInterval:   30 * time.Minute,
		JobTimeout:         time.Duration(jobTimeout) * time.Second,
		BlockWindow:        time.Duration(blockWindow) * time.Second,
		Environment:        getEnv("PRICEPULSE_ENVIRONMENT", "development"),
	}
}

// ComparisonInterval returns the comparison re-check cadence, a multiple of the price cadence
func (c Config) ComparisonInterval() time.Duration {
	return c.PriceInterval * time.Duration(c.ComparisonMultiple)
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN must not be empty")
	}
	if c.PriceInterval <= 0 {
		return fmt.Errorf("price interval must be positive, got %v", c.PriceInterval)
	}
	if c.ComparisonMultiple < 1 {
		return fmt.Errorf("comparison multiple must be at least 1, got %d", c.ComparisonMultiple)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("retention days must be at least 1, got %d", c.RetentionDays)
	}
	if c.MaxConcurrentPages < 1 {
		return fmt.Errorf("max concurrent pages must be at least 1, got %d", c.MaxConcurrentPages)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
