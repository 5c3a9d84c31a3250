package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ciphera-lobby/internal/app"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := app.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_OverridesOnlyWhatIsSet(t *testing.T) {
	path := writeConfig(t, `
listen: 127.0.0.1:9999
max_members: 2
auth_timeout: 3s
rate_limit:
  per_second: 5
  burst: 10
log:
  level: debug
  format: console
`)
	cfg, err := app.LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.Equal(t, 2, cfg.MaxMembers)
	assert.Equal(t, 3*time.Second, cfg.AuthTimeout)
	assert.Equal(t, app.RateLimitConfig{PerSecond: 5, Burst: 10}, cfg.RateLimit)
	assert.Equal(t, "console", cfg.Log.Format)

	def := app.DefaultConfig()
	assert.Equal(t, def.OutboundQueue, cfg.OutboundQueue)
	assert.Equal(t, def.Metrics, cfg.Metrics)

	opts := cfg.RelayOptions()
	assert.Equal(t, 3*time.Second, opts.AuthTimeout)
	assert.Equal(t, 5.0, opts.RatePerSecond)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := app.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = app.LoadConfig(writeConfig(t, "listen: [unclosed"))
	assert.Error(t, err)

	_, err = app.LoadConfig(writeConfig(t, "lissten: :8080\n"))
	assert.Error(t, err, "unknown keys are rejected")

	cfg, err := app.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*app.Config){
		"no listen":          func(c *app.Config) { c.Listen = "" },
		"negative members":   func(c *app.Config) { c.MaxMembers = -1 },
		"zero queue":         func(c *app.Config) { c.OutboundQueue = 0 },
		"zero auth timeout":  func(c *app.Config) { c.AuthTimeout = 0 },
		"tiny frames":        func(c *app.Config) { c.MaxFrameBytes = 10 },
		"burst missing":      func(c *app.Config) { c.RateLimit = app.RateLimitConfig{PerSecond: 1} },
		"bad level":          func(c *app.Config) { c.Log.Level = "loud" },
		"bad format":         func(c *app.Config) { c.Log.Format = "xml" },
		"relative metrics":   func(c *app.Config) { c.Metrics.Path = "metrics" },
		"metrics on healthz": func(c *app.Config) { c.Metrics.Path = "/healthz" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := app.DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := app.DefaultConfig()
	cfg.MaxMembers = 0
	cfg.RateLimit = app.RateLimitConfig{}
	cfg.Metrics = app.MetricsConfig{Enabled: false, Path: "ignored"}
	assert.NoError(t, cfg.Validate())
}

func TestConfigPath(t *testing.T) {
	t.Setenv(app.ConfigEnv, "/etc/ciphera/relay.yaml")
	assert.Equal(t, "/tmp/x.yaml", app.ConfigPath("/tmp/x.yaml"))
	assert.Equal(t, "/etc/ciphera/relay.yaml", app.ConfigPath(""))
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := app.NewLogger(app.LogConfig{Level: "warn", Format: format})
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug must be filtered at warn")
	}
	_, err := app.NewLogger(app.LogConfig{Level: "nope"})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.MaxMembers = 1
	srv := app.NewServer(cfg, nil)
	require.NotNil(t, srv.Relay)
	require.NotNil(t, srv.Metrics)
	assert.Equal(t, 1, srv.Directory.Capacity())

	cfg.Metrics.Enabled = false
	assert.Nil(t, app.NewServer(cfg, nil).Metrics)
}
