package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ciphera-lobby/internal/relay"
)

// ConfigEnv names the environment variable consulted when no --config flag
// is given.
const ConfigEnv = "CIPHERA_RELAY_CONFIG"

// Config holds the relay server's settings.
type Config struct {
	// Listen is the TCP address of the HTTP server, e.g. ":8080".
	Listen string `yaml:"listen"`

	// MaxMembers caps fresh joins. Zero means unlimited.
	MaxMembers int `yaml:"max_members"`

	// OutboundQueue is the per-connection outbound frame buffer.
	OutboundQueue int `yaml:"outbound_queue"`

	// AuthTimeout bounds the wait for the first frame.
	AuthTimeout time.Duration `yaml:"auth_timeout"`

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// PingInterval between keepalive pings. Zero disables them.
	PingInterval time.Duration `yaml:"ping_interval"`

	// MaxFrameBytes is the largest inbound frame accepted.
	MaxFrameBytes int64 `yaml:"max_frame_bytes"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// RateLimitConfig limits inbound frames per connection after auth.
type RateLimitConfig struct {
	// PerSecond of zero disables limiting.
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns the settings used for anything a file leaves out.
func DefaultConfig() Config {
	return Config{
		Listen:        ":8080",
		MaxMembers:    1024,
		OutboundQueue: relay.DefaultOutboundQueue,
		AuthTimeout:   relay.DefaultAuthTimeout,
		WriteTimeout:  relay.DefaultWriteTimeout,
		PingInterval:  relay.DefaultPingInterval,
		MaxFrameBytes: relay.DefaultMaxFrameBytes,
		RateLimit:     RateLimitConfig{PerSecond: 20, Burst: 40},
		Log:           LogConfig{Level: "info", Format: "json"},
		Metrics:       MetricsConfig{Enabled: true, Path: relay.DefaultMetricsPath},
	}
}

// ConfigPath returns flag if set, else the value of ConfigEnv.
func ConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(ConfigEnv)
}

// LoadConfig reads path over DefaultConfig. An empty path yields the
// defaults. The result is not validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.MaxMembers < 0 {
		return fmt.Errorf("max_members must not be negative")
	}
	if c.OutboundQueue <= 0 {
		return fmt.Errorf("outbound_queue must be positive")
	}
	if c.AuthTimeout <= 0 {
		return fmt.Errorf("auth_timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}
	if c.PingInterval < 0 {
		return fmt.Errorf("ping_interval must not be negative")
	}
	if c.MaxFrameBytes < 256 {
		return fmt.Errorf("max_frame_bytes must be at least 256")
	}
	if c.RateLimit.PerSecond < 0 {
		return fmt.Errorf("rate_limit.per_second must not be negative")
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit.burst must be at least 1 when rate limiting is on")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q (supported: json, console)", c.Log.Format)
	}
	if c.Metrics.Enabled {
		switch {
		case !strings.HasPrefix(c.Metrics.Path, "/"):
			return fmt.Errorf("metrics.path must start with /")
		case c.Metrics.Path == "/ws" || c.Metrics.Path == "/healthz":
			return fmt.Errorf("metrics.path %q collides with a built-in route", c.Metrics.Path)
		}
	}
	return nil
}

// RelayOptions converts the config to per-connection relay options.
func (c *Config) RelayOptions() relay.Options {
	return relay.Options{
		AuthTimeout:   c.AuthTimeout,
		MaxFrameBytes: c.MaxFrameBytes,
		OutboundQueue: c.OutboundQueue,
		WriteTimeout:  c.WriteTimeout,
		PingInterval:  c.PingInterval,
		RatePerSecond: c.RateLimit.PerSecond,
		RateBurst:     c.RateLimit.Burst,
		MetricsPath:   c.Metrics.Path,
	}
}
