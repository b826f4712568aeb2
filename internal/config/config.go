package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Extraction
	ExtractTimeout  time.Duration
	MinCharsPerPage int
	OCRLanguage     string

	// Mapping
	AliasMaxDistance int

	// Trends
	TrendWindow    int
	TrendStableEps float64

	// Risk model
	ModelPath     string
	FeatureMaxAge time.Duration

	// Reference data
	RefdataPath string

	// History store
	HistoryDSN string

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("LABSIGHT_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25MB

		ExtractTimeout:  envDuration("EXTRACT_TIMEOUT", 2*time.Minute),
		MinCharsPerPage: envInt("MIN_CHARS_PER_PAGE", 200),
		OCRLanguage:     envOr("OCR_LANGUAGE", "eng"),

		AliasMaxDistance: envInt("ALIAS_MAX_DISTANCE", 2),

		TrendWindow:    envInt("TREND_WINDOW", 0), // 0 = all history
		TrendStableEps: envFloat("TREND_STABLE_EPS", 0.05),

		ModelPath:     os.Getenv("MODEL_PATH"),
		FeatureMaxAge: envDuration("FEATURE_MAX_AGE", 2160*time.Hour), // 90 days

		RefdataPath: os.Getenv("REFDATA_PATH"),

		HistoryDSN: envOr("HISTORY_DSN", "labsight.db"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 2 * time.Minute
	}
	if cfg.MinCharsPerPage <= 0 {
		cfg.MinCharsPerPage = 200
	}
	if cfg.AliasMaxDistance <= 0 {
		cfg.AliasMaxDistance = 2
	}
	if cfg.TrendStableEps <= 0 {
		cfg.TrendStableEps = 0.05
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LABSIGHT_API_KEY is required")
	}
	if c.HistoryDSN == "" {
		return fmt.Errorf("HISTORY_DSN is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
