// Package config loads tool defaults from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dev-shimada/regscan/internal/source"
	"github.com/dev-shimada/regscan/internal/view"
	"github.com/joho/godotenv"
)

const (
	EnvPreviewRows  = "REGSCAN_PREVIEW_ROWS"
	EnvFormat       = "REGSCAN_FORMAT"
	EnvParallel     = "REGSCAN_PARALLEL"
	EnvRate         = "REGSCAN_RATE"
	EnvTimeout      = "REGSCAN_TIMEOUT"
	EnvMaxBytes     = "REGSCAN_MAX_BYTES"
	EnvAnyExtension = "REGSCAN_ANY_EXTENSION"
	EnvLogLevel     = "REGSCAN_LOG_LEVEL"
)

// DefaultEnvFile is read when present. A missing default file is not an error.
const DefaultEnvFile = ".env"

type Config struct {
	PreviewRows  int
	Format       string
	Parallel     int
	Rate         int
	Timeout      time.Duration
	MaxBytes     int64
	AnyExtension bool
	LogLevel     slog.Level
}

func Default() Config {
	return Config{
		PreviewRows: view.DefaultRows,
		Format:      string(view.FormatTable),
		Parallel:    1,
		Rate:        0,
		Timeout:     30 * time.Second,
		MaxBytes:    source.DefaultMaxBytes,
		LogLevel:    slog.LevelInfo,
	}
}

// Load applies envFile (or DefaultEnvFile when empty) to the process
// environment without overriding variables already set, then reads the
// REGSCAN_* variables over the defaults.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	var errs []error

	if v, ok := lookup(EnvPreviewRows); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvPreviewRows, err))
		}
		c.PreviewRows = n
	}
	if v, ok := lookup(EnvFormat); ok {
		c.Format = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvParallel); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvParallel, err))
		}
		c.Parallel = n
	}
	if v, ok := lookup(EnvRate); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRate, err))
		}
		c.Rate = n
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimeout, err))
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvMaxBytes); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMaxBytes, err))
		}
		c.MaxBytes = n
	}
	if v, ok := lookup(EnvAnyExtension); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvAnyExtension, err))
		}
		c.AnyExtension = b
	}
	if v, ok := lookup(EnvLogLevel); ok {
		if err := c.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := view.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.PreviewRows < 0 {
		errs = append(errs, fmt.Errorf("preview rows must not be negative, got %d", c.PreviewRows))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be at least 1, got %d", c.Parallel))
	}
	if c.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must not be negative, got %d", c.Rate))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("max bytes must not be negative, got %d", c.MaxBytes))
	}
	return errors.Join(errs...)
}

// SourceOptions returns the fetcher settings carried by c.
func (c Config) SourceOptions() source.Options {
	return source.Options{
		MaxBytes:     c.MaxBytes,
		AnyExtension: c.AnyExtension,
		Timeout:      c.Timeout,
	}
}
