package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the carousel extractor
type Config struct {
	// Instagram session/credentials
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Carousel selection heuristics
	Selection SelectionConfig `yaml:"selection" json:"selection"`

	// Navigation loop settings
	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`

	// Deduplication settings
	Dedup DedupConfig `yaml:"dedup" json:"dedup"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// SelectionConfig names the empirically tuned thresholds used by the
// main-post selector. Values were tuned against labeled example posts;
// change them only with equivalent validation data.
type SelectionConfig struct {
	// PositionalWindow is how many positions past the first date group's
	// last member a no-date candidate may sit and still be treated as
	// part of the same carousel.
	PositionalWindow int `yaml:"positional_window" json:"positional_window"`
	// MaxCarouselSize caps the final selection regardless of input size.
	MaxCarouselSize int `yaml:"max_carousel_size" json:"max_carousel_size"`
	// FallbackCap bounds the "first N candidates" last-resort path when
	// no alt-text dates are present at all.
	FallbackCap int `yaml:"fallback_cap" json:"fallback_cap"`
}

// NavigationConfig holds carousel navigation loop settings
type NavigationConfig struct {
	// AttemptMargin is added to the expected image count to form the
	// navigation attempt safety cap.
	AttemptMargin int `yaml:"attempt_margin" json:"attempt_margin"`
	// SettleTimeout bounds how long the driver waits for new content
	// after a successful navigation step.
	SettleTimeout time.Duration `yaml:"settle_timeout" json:"settle_timeout"`
	// StepDelay is a fixed pause between navigation attempts.
	StepDelay time.Duration `yaml:"step_delay" json:"step_delay"`
}

// DedupConfig holds deduplication settings
type DedupConfig struct {
	// ContentHash enables the expensive fetch-and-hash pass on top of
	// the default URL-pattern dedup.
	ContentHash bool `yaml:"content_hash" json:"content_hash"`
	// FetchTimeout bounds each content-hash fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	CreatePostFolders bool   `yaml:"create_post_folders" json:"create_post_folders"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Selection: SelectionConfig{
			PositionalWindow: 3,
			MaxCarouselSize:  10,
			FallbackCap:      5,
		},
		Navigation: NavigationConfig{
			AttemptMargin: 3,
			SettleTimeout: 5 * time.Second,
			StepDelay:     500 * time.Millisecond,
		},
		Dedup: DedupConfig{
			ContentHash:  false,
			FetchTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			MaxRetries:        3,
			RetryDelay:        5 * time.Second,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 3,
			DownloadTimeout:     30 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory:     "./downloads",
			CreatePostFolders: true,
			OverwriteExisting: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. A local
// .env file is honored if present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if sessionID := os.Getenv("IGCAROUSEL_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken := os.Getenv("IGCAROUSEL_CSRF_TOKEN"); csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if userAgent := os.Getenv("IGCAROUSEL_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}

	if rpm := os.Getenv("IGCAROUSEL_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if maxSize := os.Getenv("IGCAROUSEL_MAX_CAROUSEL_SIZE"); maxSize != "" {
		var val int
		fmt.Sscanf(maxSize, "%d", &val)
		if val > 0 {
			c.Selection.MaxCarouselSize = val
		}
	}

	if outputDir := os.Getenv("IGCAROUSEL_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if contentHash := os.Getenv("IGCAROUSEL_CONTENT_HASH_DEDUP"); contentHash != "" {
		c.Dedup.ContentHash = strings.ToLower(contentHash) == "true"
	}

	if logLevel := os.Getenv("IGCAROUSEL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igcarousel.yaml",
		".igcarousel.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igcarousel", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igcarousel", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igcarousel.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Selection.PositionalWindow < 0 {
		errs = append(errs, errors.New("positional window cannot be negative"))
	}
	if c.Selection.MaxCarouselSize <= 0 {
		errs = append(errs, errors.New("max carousel size must be positive"))
	}
	if c.Selection.FallbackCap <= 0 {
		errs = append(errs, errors.New("fallback cap must be positive"))
	}
	if c.Selection.FallbackCap > c.Selection.MaxCarouselSize {
		errs = append(errs, errors.New("fallback cap cannot exceed max carousel size"))
	}

	if c.Navigation.AttemptMargin < 0 {
		errs = append(errs, errors.New("attempt margin cannot be negative"))
	}
	if c.Navigation.SettleTimeout <= 0 {
		errs = append(errs, errors.New("settle timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
