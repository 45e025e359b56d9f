// Package config loads client settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	archive "github.com/jason-riddle/archive-go"
)

// Environment variable names.
const (
	EnvBackendURL = "ARCHIVE_BACKEND_URL"
	EnvTimeout    = "ARCHIVE_TIMEOUT"
	EnvRetries    = "ARCHIVE_RETRIES"
	EnvSnapshotDB = "ARCHIVE_SNAPSHOT_DB"
	EnvLogLevel   = "ARCHIVE_LOG_LEVEL"

	EnvSnapshotMaxAge = "ARCHIVE_SNAPSHOT_MAX_AGE"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultLogLevel       = "warn"
	DefaultSnapshotMaxAge = 7 * 24 * time.Hour

	appDir = "archive-go"
)

// Config holds client settings.
type Config struct {
	BackendURL string
	Timeout    time.Duration
	Retries    int
	SnapshotDB string
	LogLevel   string

	// SnapshotMaxAge is how old a cached list may be and still be shown on
	// start. Zero means no limit.
	SnapshotMaxAge time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		BackendURL: archive.DefaultBaseURL,
		Timeout:    DefaultTimeout,
		LogLevel:   DefaultLogLevel,

		SnapshotMaxAge: DefaultSnapshotMaxAge,
	}
}

// Load reads the given .env files, skipping missing ones, then overlays the
// process environment on the defaults. Variables already set in the
// environment take precedence over .env values. All problems found are
// returned together.
func Load(files ...string) (*Config, error) {
	var result *multierror.Error

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			result = multierror.Append(result, fmt.Errorf("load %s: %w", f, err))
		}
	}

	cfg := Default()

	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvTimeout, err))
		} else {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv(EnvRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvRetries, err))
		} else {
			cfg.Retries = n
		}
	}
	if v := os.Getenv(EnvSnapshotDB); v != "" {
		cfg.SnapshotDB = v
	}
	if v := os.Getenv(EnvSnapshotMaxAge); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvSnapshotMaxAge, err))
		} else {
			cfg.SnapshotMaxAge = d
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return cfg, result.ErrorOrNil()
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	u, err := url.Parse(c.BackendURL)
	switch {
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("backend url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		result = multierror.Append(result, fmt.Errorf("backend url: unsupported scheme %q", u.Scheme))
	case u.Host == "":
		result = multierror.Append(result, errors.New("backend url: missing host"))
	}

	if c.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Retries < 0 {
		result = multierror.Append(result, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.SnapshotMaxAge < 0 {
		result = multierror.Append(result, fmt.Errorf("snapshot max age must not be negative, got %s", c.SnapshotMaxAge))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return result.ErrorOrNil()
}

// Level returns the configured log level, or warn if it is not recognized.
func (c *Config) Level() hclog.Level {
	if l := hclog.LevelFromString(c.LogLevel); l != hclog.NoLevel {
		return l
	}
	return hclog.Warn
}

// ClientOptions returns the archive client options for these settings.
func (c *Config) ClientOptions(logger hclog.Logger) []archive.Option {
	opts := []archive.Option{archive.WithTimeout(c.Timeout)}
	if c.Retries > 0 {
		opts = append(opts, archive.WithRetries(c.Retries, 500*time.Millisecond))
	}
	if logger != nil {
		opts = append(opts, archive.WithLogger(logger))
	}
	return opts
}

// CacheDir returns the cache directory, preferring XDG_CACHE_HOME.
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".cache", appDir), nil
}

// DefaultSnapshotPath returns where the snapshot cache lives when enabled
// without an explicit path.
func DefaultSnapshotPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshot.db"), nil
}
