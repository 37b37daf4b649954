package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Ingest      IngestConfig  `toml:"ingest"`
	OCR         OCRConfig     `toml:"ocr"`
	Export      ExportConfig  `toml:"export"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
	Badger BadgerConfig `toml:"badger"`
	Blobs  BlobConfig   `toml:"blobs"`
}

// SQLiteConfig configures the relational document store.
type SQLiteConfig struct {
	Path          string `toml:"path" validate:"required"`
	CacheSizeMB   int    `toml:"cache_size_mb"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
	WALMode       bool   `toml:"wal_mode"`
}

// BadgerConfig configures the settings (preference) store.
type BadgerConfig struct {
	Path string `toml:"path" validate:"required"`
}

// BlobConfig configures the page image blob store.
type BlobConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

// IngestConfig controls the ingestion pipeline.
type IngestConfig struct {
	Concurrency int    `toml:"concurrency" validate:"gte=1"` // parallel page blob copies per scan
	RateLimit   string `toml:"rate_limit"`                   // min interval between accepted scans, e.g. "500ms" ("" = unlimited)
	RateBurst   int    `toml:"rate_burst"`                   // burst size for the scan rate limiter
}

// OCRConfig controls the Tesseract text extractor.
type OCRConfig struct {
	Enabled  bool   `toml:"enabled"`
	Language string `toml:"language"` // Tesseract language code, e.g. "eng"
}

// ExportConfig controls PDF artifact rendering and cache cleanup.
type ExportConfig struct {
	CacheDir       string `toml:"cache_dir" validate:"required"`
	SweepSchedule  string `toml:"sweep_schedule"`   // cron expression (with seconds field)
	MaxArtifactAge string `toml:"max_artifact_age"` // artifacts older than this are swept, e.g. "24h"
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability; only
// user-facing settings should be exposed in scandex.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          "./data/scandex.db",
				CacheSizeMB:   50,
				BusyTimeoutMS: 5000,
				WALMode:       true,
			},
			Badger: BadgerConfig{
				Path: "./data/settings",
			},
			Blobs: BlobConfig{
				Dir: "./data/pages",
			},
		},
		Ingest: IngestConfig{
			Concurrency: 4,
			RateLimit:   "", // unlimited by default
			RateBurst:   1,
		},
		OCR: OCRConfig{
			Enabled:  true,
			Language: "eng",
		},
		Export: ExportConfig{
			CacheDir:       "./data/cache",
			SweepSchedule:  "0 */30 * * * *", // every 30 minutes
			MaxArtifactAge: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
	}
}

// MaxArtifactAgeDuration parses the configured artifact age, falling back to
// 24 hours on a bad value.
func (e *ExportConfig) MaxArtifactAgeDuration() time.Duration {
	if d, err := time.ParseDuration(e.MaxArtifactAge); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

// IngestInterval parses the configured scan rate limit. Zero means unlimited.
func (i *IngestConfig) IngestInterval() time.Duration {
	if i.RateLimit == "" {
		return 0
	}
	d, err := time.ParseDuration(i.RateLimit)
	if err != nil {
		return 0
	}
	return d
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2
// -> ... -> env. Later files override earlier ones; env overrides files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies SCANDEX_* environment variables on top of the
// file-based configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SCANDEX_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("SCANDEX_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("SCANDEX_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("SCANDEX_OCR_LANGUAGE"); v != "" {
		config.OCR.Language = v
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
