package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds application settings loaded from environment variables.
type Config struct {
	Port            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Query sizing defaults, overridable per request.
	DefaultCellSizeDeg float64
	MaxScatterPoints   int
	HistogramBuckets   int

	// Upload and concurrency bounds.
	MaxUploadBytes     int64
	QueryConcurrency   int
	AggregationWorkers int
}

// Load reads configuration from environment variables and returns it,
// or an error if required values are missing or invalid.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cellSize, err := envFloat("DEFAULT_CELL_SIZE_DEG", 0.25)
	if err != nil {
		return nil, err
	}
	maxPoints, err := envInt("MAX_SCATTER_POINTS", 5000)
	if err != nil {
		return nil, err
	}
	histBuckets, err := envInt("HISTOGRAM_BUCKETS", 20)
	if err != nil {
		return nil, err
	}
	maxUpload, err := envInt("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	queryConcurrency, err := envInt("QUERY_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	workers, err := envInt("AGGREGATION_WORKERS", 1)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:            sharedcfg.EnvOrDefault("PORT", "8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DefaultCellSizeDeg: cellSize,
		MaxScatterPoints:   maxPoints,
		HistogramBuckets:   histBuckets,

		MaxUploadBytes:     int64(maxUpload) << 20,
		QueryConcurrency:   queryConcurrency,
		AggregationWorkers: workers,
	}, nil
}

func envInt(name string, fallback int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return n, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, s)
	}
	return v, nil
}
