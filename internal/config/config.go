package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
)

type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ImageFetchTimeout  time.Duration `yaml:"image_fetch_timeout"`
	AnalysisTimeout    time.Duration `yaml:"analysis_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
	MaxImagePixels     int64         `yaml:"max_image_pixels"`

	// Scoring
	PatchSize        int     `yaml:"patch_size"`
	MinBlurriness    float64 `yaml:"min_blurriness"`
	BorderMode       string  `yaml:"border_mode"`
	AnalysisWorkers  int     `yaml:"analysis_workers"`
	BatchConcurrency int     `yaml:"batch_concurrency"`
	MaxBatchSize     int     `yaml:"max_batch_size"`

	// Sources
	AllowFileURLs       bool   `yaml:"allow_file_urls"`
	FileRoot            string `yaml:"file_root"`
	AzureStorageAccount string `yaml:"azure_storage_account"`
	AzureStorageKey     string `yaml:"azure_storage_key"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		ImageFetchTimeout:  15 * time.Second,
		AnalysisTimeout:    20 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		MaxImagePixels:     40_000_000,
		PatchSize:          analyzer.DefaultPatchSize,
		MinBlurriness:      analyzer.DefaultMinBlurriness,
		BorderMode:         string(analyzer.BorderReplicate),
		AnalysisWorkers:    0,
		BatchConcurrency:   4,
		MaxBatchSize:       32,
		LogLevel:           "info",
	}
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AnalysisOptions converts the scoring settings into analyzer options
func (c *Config) AnalysisOptions() (analyzer.AnalysisOptions, error) {
	border, err := analyzer.ParseBorderMode(strings.TrimSpace(c.BorderMode))
	if err != nil {
		return analyzer.AnalysisOptions{}, fmt.Errorf("%w: %v", ErrInvalidBorderMode, err)
	}
	return analyzer.AnalysisOptions{
		PatchSize:     c.PatchSize,
		MinBlurriness: c.MinBlurriness,
		Border:        border,
	}, nil
}

// AzureEnabled reports whether blob credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidBodySize, c.MaxRequestBodySize)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPixelLimit, c.MaxImagePixels)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("%w (got request=%s, fetch=%s, analysis=%s)",
			ErrInvalidTimeout, c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.PatchSize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPatchSize, c.PatchSize)
	}
	if c.MinBlurriness < 0 {
		return fmt.Errorf("%w (got %g)", ErrInvalidThreshold, c.MinBlurriness)
	}
	if _, err := c.AnalysisOptions(); err != nil {
		return err
	}
	if c.AnalysisWorkers < 0 || c.BatchConcurrency <= 0 || c.MaxBatchSize <= 0 {
		return fmt.Errorf("%w (got workers=%d, batch=%d, max batch=%d)",
			ErrInvalidConcurrency, c.AnalysisWorkers, c.BatchConcurrency, c.MaxBatchSize)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return ErrIncompleteAzureCredentials
	}
	return nil
}

// LoadFromEnv builds the configuration from defaults and environment variables
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields whose environment variable is set
func (c *Config) applyEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.ImageFetchTimeout = parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", c.ImageFetchTimeout)
	c.AnalysisTimeout = parseDurationOrDefault("ANALYSIS_TIMEOUT", c.AnalysisTimeout)
	c.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", c.MaxRequestBodySize)
	c.MaxImagePixels = parseIntOrDefault("MAX_IMAGE_PIXELS", c.MaxImagePixels)

	c.PatchSize = int(parseIntOrDefault("PATCH_SIZE", int64(c.PatchSize)))
	c.MinBlurriness = parseFloatOrDefault("MIN_BLURRINESS", c.MinBlurriness)
	c.BorderMode = getEnvOrDefault("BORDER_MODE", c.BorderMode)
	c.AnalysisWorkers = int(parseIntOrDefault("ANALYSIS_WORKERS", int64(c.AnalysisWorkers)))
	c.BatchConcurrency = int(parseIntOrDefault("BATCH_CONCURRENCY", int64(c.BatchConcurrency)))
	c.MaxBatchSize = int(parseIntOrDefault("MAX_BATCH_SIZE", int64(c.MaxBatchSize)))

	c.AllowFileURLs = parseBoolOrDefault("ALLOW_FILE_URLS", c.AllowFileURLs)
	c.FileRoot = getEnvOrDefault("FILE_ROOT", c.FileRoot)
	c.AzureStorageAccount = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", c.AzureStorageAccount)
	c.AzureStorageKey = getEnvOrDefault("AZURE_STORAGE_KEY", c.AzureStorageKey)

	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
