// Package config loads skuquery settings from an optional YAML file and
// SKUQUERY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/skuquery/internal/query"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// SKUQUERY_MAX_LIMIT or SKUQUERY_LOG_LEVEL.
const EnvPrefix = "SKUQUERY"

// Config holds every tunable setting.
type Config struct {
	// Database is the saved-query SQLite file.
	Database string `mapstructure:"database"`

	// SchemaDir holds the CUE attribute schema. Empty disables schema checks.
	SchemaDir string `mapstructure:"schema_dir"`

	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
	Parallelism  int `mapstructure:"parallelism"`
	ChunkSize    int `mapstructure:"chunk_size"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `mapstructure:"format"` // text, json
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Database:     "skuquery.db",
		DefaultLimit: query.DefaultLimit,
		MaxLimit:     1000,
		Parallelism:  1,
		ChunkSize:    4096,
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

var (
	validLevels  = []string{"DEBUG", "INFO", "WARN", "ERROR"}
	validFormats = []string{"text", "json"}
)

// Validate checks ranges and enumerations. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, errors.New("database must not be empty"))
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("default_limit must be > 0, got %d", c.DefaultLimit))
	}
	if c.MaxLimit <= 0 {
		errs = append(errs, fmt.Errorf("max_limit must be > 0, got %d", c.MaxLimit))
	}
	if c.DefaultLimit > 0 && c.MaxLimit > 0 && c.DefaultLimit > c.MaxLimit {
		errs = append(errs, fmt.Errorf("default_limit %d exceeds max_limit %d", c.DefaultLimit, c.MaxLimit))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be >= 1, got %d", c.Parallelism))
	}
	if c.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk_size must be >= 1, got %d", c.ChunkSize))
	}
	if !slices.Contains(validLevels, strings.ToUpper(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %v", c.Log.Level, validLevels))
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format %q must be one of %v", c.Log.Format, validFormats))
	}
	return errors.Join(errs...)
}

// Load reads defaults, then the YAML file at path (skipped when path is
// empty), then SKUQUERY_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newViper registers every key with its default so AutomaticEnv can bind
// environment variables during Unmarshal.
func newViper() *viper.Viper {
	d := DefaultConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database", d.Database)
	v.SetDefault("schema_dir", d.SchemaDir)
	v.SetDefault("default_limit", d.DefaultLimit)
	v.SetDefault("max_limit", d.MaxLimit)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("chunk_size", d.ChunkSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	return v
}

