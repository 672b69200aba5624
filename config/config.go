// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads the settings of a concept matching run from a YAML
// file, with CONCEPTMATCH_* environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "CONCEPTMATCH_"

var (
	// ErrDictionaryPathRequired is returned when no dictionary path is set.
	ErrDictionaryPathRequired = errors.New("config: dictionary.path is required")

	// ErrInvalidPoolSize is returned for a negative pool size.
	ErrInvalidPoolSize = errors.New("config: pipeline.poolSize must not be negative")

	// ErrInvalidBatchSize is returned for a batch size below one.
	ErrInvalidBatchSize = errors.New("config: pipeline.batchSize must be greater than 0")

	// ErrInvalidLogLevel is returned for an unknown logging level.
	ErrInvalidLogLevel = errors.New("config: logging.level must be one of debug, info, warn, error")

	// ErrInvalidLogFormat is returned for an unknown logging format.
	ErrInvalidLogFormat = errors.New("config: logging.format must be text or json")

	// ErrMetricsAddrRequired is returned when metrics are enabled without an address.
	ErrMetricsAddrRequired = errors.New("config: metrics.addr is required when metrics are enabled")
)

// Config is the top-level configuration.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// DictionaryConfig locates the dictionary store.
type DictionaryConfig struct {
	// Path is the BadgerDB directory holding the dictionary.
	Path string `yaml:"path"`
}

// MatcherConfig tunes concept matching.
type MatcherConfig struct {
	// LowercaseSingleTokens lets single-token candidates fall back to the
	// lowercase index. Default: false
	LowercaseSingleTokens bool `yaml:"lowercaseSingleTokens"`
}

// PipelineConfig controls document concurrency.
type PipelineConfig struct {
	// PoolSize is the number of documents matched at once.
	// Zero means runtime.NumCPU() / 2.
	PoolSize int `yaml:"poolSize"`

	// BatchSize is the number of input documents handed to the pool at a time.
	// Default: 256
	BatchSize int `yaml:"batchSize"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithDictionaryPath sets the dictionary directory.
func WithDictionaryPath(path string) Option {
	return func(c *Config) {
		c.Dictionary.Path = path
	}
}

// WithLowercaseSingleTokens sets the single-token lowercase fallback.
func WithLowercaseSingleTokens(enabled bool) Option {
	return func(c *Config) {
		c.Matcher.LowercaseSingleTokens = enabled
	}
}

// WithPoolSize sets the pipeline pool size.
func WithPoolSize(size int) Option {
	return func(c *Config) {
		c.Pipeline.PoolSize = size
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.Logging.Level = level
	}
}

// WithMetricsAddr enables metrics served on addr.
func WithMetricsAddr(addr string) Option {
	return func(c *Config) {
		c.Metrics.Enabled = true
		c.Metrics.Addr = addr
	}
}

// Default returns a Config with the default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			BatchSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// New returns the default Config with opts applied.
func New(opts ...Option) *Config {
	cfg := Default()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML file over the defaults, if path is not empty, and then
// applies environment overrides. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads CONCEPTMATCH_* variables into cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(envPrefix + "DICTIONARY_PATH"); v != "" {
		cfg.Dictionary.Path = v
	}
	if v := os.Getenv(envPrefix + "MATCHER_LOWERCASE_SINGLE_TOKENS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMATCHER_LOWERCASE_SINGLE_TOKENS: %w", envPrefix, err)
		}
		cfg.Matcher.LowercaseSingleTokens = enabled
	}
	if v := os.Getenv(envPrefix + "PIPELINE_POOL_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPIPELINE_POOL_SIZE: %w", envPrefix, err)
		}
		cfg.Pipeline.PoolSize = size
	}
	if v := os.Getenv(envPrefix + "PIPELINE_BATCH_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPIPELINE_BATCH_SIZE: %w", envPrefix, err)
		}
		cfg.Pipeline.BatchSize = size
	}
	if v := os.Getenv(envPrefix + "LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(envPrefix + "METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS_ENABLED: %w", envPrefix, err)
		}
		cfg.Metrics.Enabled = enabled
	}
	if v := os.Getenv(envPrefix + "METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	return nil
}

// Normalize lower-cases the logging settings.
func (c *Config) Normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate checks that the configuration is complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Dictionary.Path == "" {
		return ErrDictionaryPathRequired
	}
	if c.Pipeline.PoolSize < 0 {
		return ErrInvalidPoolSize
	}
	if c.Pipeline.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return ErrMetricsAddrRequired
	}
	return nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: got %q", ErrInvalidLogLevel, level)
	}
}
