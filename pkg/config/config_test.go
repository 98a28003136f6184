package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Selection.PositionalWindow)
	assert.Equal(t, 10, cfg.Selection.MaxCarouselSize)
	assert.Equal(t, 5, cfg.Selection.FallbackCap)
	assert.Equal(t, 3, cfg.Navigation.AttemptMargin)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.False(t, cfg.Dedup.ContentHash)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero carousel cap",
			mutate:  func(c *Config) { c.Selection.MaxCarouselSize = 0 },
			wantErr: "max carousel size must be positive",
		},
		{
			name:    "negative positional window",
			mutate:  func(c *Config) { c.Selection.PositionalWindow = -1 },
			wantErr: "positional window cannot be negative",
		},
		{
			name: "fallback cap above carousel cap",
			mutate: func(c *Config) {
				c.Selection.FallbackCap = 20
				c.Selection.MaxCarouselSize = 10
			},
			wantErr: "fallback cap cannot exceed max carousel size",
		},
		{
			name:    "missing output directory",
			mutate:  func(c *Config) { c.Output.BaseDirectory = "" },
			wantErr: "output directory is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "too many concurrent downloads",
			mutate:  func(c *Config) { c.Download.ConcurrentDownloads = 50 },
			wantErr: "concurrent downloads should not exceed 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGCAROUSEL_SESSION_ID", "test-session")
	t.Setenv("IGCAROUSEL_MAX_CAROUSEL_SIZE", "12")
	t.Setenv("IGCAROUSEL_CONTENT_HASH_DEDUP", "true")
	t.Setenv("IGCAROUSEL_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "test-session", cfg.Instagram.SessionID)
	assert.Equal(t, 12, cfg.Selection.MaxCarouselSize)
	assert.True(t, cfg.Dedup.ContentHash)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("IGCAROUSEL_REQUESTS_PER_MINUTE", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Selection.MaxCarouselSize = 8
	cfg.Navigation.SettleTimeout = 2 * time.Second
	cfg.Output.BaseDirectory = "/tmp/carousels"
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))

	assert.Equal(t, 8, loaded.Selection.MaxCarouselSize)
	assert.Equal(t, 2*time.Second, loaded.Navigation.SettleTimeout)
	assert.Equal(t, "/tmp/carousels", loaded.Output.BaseDirectory)
}

func TestLoadFromFileMissingPath(t *testing.T) {
	cfg := DefaultConfig()

	// An explicit path that does not exist is an error
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileDefaultLocationsAbsent(t *testing.T) {
	// With no config file anywhere, loading with an empty path is a no-op
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(t.TempDir()))

	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
}
