package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Hermes  HermesConfig  `yaml:"hermes"`
	Engine  EngineConfig  `yaml:"engine"`
	Limits  LimitsConfig  `yaml:"limits"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type EngineConfig struct {
	V           float64 `yaml:"v"`
	Degenerate  string  `yaml:"degenerate"`
	Trace       bool    `yaml:"trace"`
	MaxParallel int     `yaml:"max_parallel"`
}

type LimitsConfig struct {
	MaxAlternatives    int   `yaml:"max_alternatives"`
	MaxCriteria        int   `yaml:"max_criteria"`
	RateLimitPerMinute int   `yaml:"rate_limit_per_minute"`
	MaxUploadBytes     int64 `yaml:"max_upload_bytes"`
	MaxBatchSize       int   `yaml:"max_batch_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewLogger builds the process logger writing to w.
func (l LoggingConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("logging.format must be json or text, got %q", l.Format)
	}
}

// EngineOptions converts the engine section into vikor options.
func (c *Config) EngineOptions() (vikor.Options, error) {
	policy, err := vikor.ParseDegeneratePolicy(c.Engine.Degenerate)
	if err != nil {
		return vikor.Options{}, err
	}
	return vikor.Options{V: c.Engine.V, Degenerate: policy, Trace: c.Engine.Trace}, nil
}

// Load builds the config from defaults, then the YAML file at path (if any),
// then a .env file in the working directory (if present), then VIKOR_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Engine: EngineConfig{
			V:           0.5,
			Degenerate:  string(vikor.DegenerateZero),
			MaxParallel: 4,
		},
		Limits: LimitsConfig{
			MaxAlternatives:    1000,
			MaxCriteria:        100,
			RateLimitPerMinute: 120,
			MaxUploadBytes:     10 << 20,
			MaxBatchSize:       50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if math.IsNaN(c.Engine.V) || c.Engine.V < 0 || c.Engine.V > 1 {
		return fmt.Errorf("engine.v must be within [0, 1], got %g", c.Engine.V)
	}
	if _, err := vikor.ParseDegeneratePolicy(c.Engine.Degenerate); err != nil {
		return fmt.Errorf("engine.degenerate: %w", err)
	}
	if c.Engine.MaxParallel < 1 {
		return fmt.Errorf("engine.max_parallel must be >= 1, got %d", c.Engine.MaxParallel)
	}
	if c.Limits.MaxAlternatives < 1 || c.Limits.MaxCriteria < 1 {
		return fmt.Errorf("limits.max_alternatives and limits.max_criteria must be >= 1")
	}
	if c.Limits.RateLimitPerMinute < 1 {
		return fmt.Errorf("limits.rate_limit_per_minute must be >= 1, got %d", c.Limits.RateLimitPerMinute)
	}
	if c.Limits.MaxBatchSize < 1 {
		return fmt.Errorf("limits.max_batch_size must be >= 1, got %d", c.Limits.MaxBatchSize)
	}
	if c.Limits.MaxUploadBytes < 1 {
		return fmt.Errorf("limits.max_upload_bytes must be >= 1, got %d", c.Limits.MaxUploadBytes)
	}
	if _, err := c.Logging.NewLogger(io.Discard); err != nil {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VIKOR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("VIKOR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("VIKOR_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("VIKOR_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("VIKOR_V"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.V = f
		}
	}
	if v := os.Getenv("VIKOR_DEGENERATE"); v != "" {
		cfg.Engine.Degenerate = v
	}
	if v := os.Getenv("VIKOR_TRACE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.Trace = b
		}
	}
	if v := os.Getenv("VIKOR_MAX_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxParallel = n
		}
	}
	if v := os.Getenv("VIKOR_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("VIKOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VIKOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
