package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/rules"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultAddr, cfg.Server.GetAddr())
	assert.Equal(t, 30*time.Second, cfg.Server.GetReadTimeout())
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.Server.GetMaxBodyBytes())
	assert.True(t, cfg.Cache.IsEnabled())
	assert.Equal(t, 10*time.Minute, cfg.Cache.GetTTL())
	assert.Equal(t, 1024, cfg.Cache.GetSize())
	assert.Equal(t, "regexpoutline:", cfg.Cache.GetPrefix())
	assert.False(t, cfg.RateLimit.IsEnabled())
	assert.Equal(t, time.Minute, cfg.RateLimit.GetWindow())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  addr: ":9090"
  write_timeout: 5s
  max_body_bytes: 1024
cache:
  backend: none
rate_limit:
  requests: 10
  window: 30s
presets: [markdown]
rules:
  - ext: .txt
    showEOF: false
    bullets: ['■', '□']
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.GetAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.GetWriteTimeout())
	assert.Equal(t, int64(1024), cfg.Server.GetMaxBodyBytes())
	assert.False(t, cfg.Cache.IsEnabled())
	assert.True(t, cfg.RateLimit.IsEnabled())
	assert.Equal(t, 30*time.Second, cfg.RateLimit.GetWindow())
	assert.Equal(t, "debug", cfg.LogLevel)

	sets := cfg.LoadRules(logger.Noop())
	require.Len(t, sets, 2)
	assert.Equal(t, ".txt", sets[0].Ext)
	assert.False(t, sets[0].ShowEOF)
	assert.Len(t, sets[0].Rules, 2)
	assert.Equal(t, ".md", sets[1].Ext)

	again := cfg.LoadRules(nil)
	assert.Len(t, again, 2, "loading twice does not accumulate presets")
	assert.Len(t, cfg.Rules, 1)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeFile(t, dir, "bad.yaml", "server: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeFile(t, dir, "invalid.yaml", "cache:\n  backend: disk\n"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestRulesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.json", `[{"ext": ".txt", "rules": [{"level": 1, "format": "^■(.+)$", "detail": "H1"}]}]`)
	path := writeFile(t, dir, "config.yaml", "rules_file: rules.json\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	sets := cfg.LoadRules(nil)
	require.Len(t, sets, 1)
	assert.Equal(t, "H1", sets[0].Rules[0].Detail)
}

func TestRulesFileUnreadable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `[{"ext": `)

	cfg := New()
	cfg.RulesFile = filepath.Join(dir, "broken.json")
	cfg.Presets = []string{"org"}
	sets := cfg.LoadRules(nil)
	require.Len(t, sets, 1)
	assert.Equal(t, ".org", sets[0].Ext)

	cfg.RulesFile = filepath.Join(dir, "missing.json")
	cfg.Presets = nil
	assert.Empty(t, cfg.LoadRules(nil))
}

func TestValidate(t *testing.T) {
	level0 := []rules.RawRuleSet{{Ext: rules.Ptr(".txt"), Rules: []rules.RawRule{{Level: 0, Format: "^(.+)$"}}}}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "timeouts"},
		{"negative body limit", func(c *Config) { c.Server.MaxBodyBytes = -1 }, "max_body_bytes"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "disk" }, "backend"},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheBackendRedis }, "redis_url"},
		{"redis with url", func(c *Config) {
			c.Cache.Backend = CacheBackendRedis
			c.Cache.RedisURL = "redis://localhost:6379/0"
		}, ""},
		{"negative size", func(c *Config) { c.Cache.Size = -1 }, "size"},
		{"negative requests", func(c *Config) { c.RateLimit.Requests = -5 }, "requests"},
		{"rules and rules_file", func(c *Config) {
			c.Rules = []rules.RawRuleSet{{Ext: rules.Ptr(".txt")}}
			c.RulesFile = "rules.json"
		}, "rules_file"},
		{"unknown preset", func(c *Config) { c.Presets = []string{"rst"} }, "presets"},
		{"invalid rule level", func(c *Config) { c.Rules = level0 }, "level"},
		{"rule set without ext", func(c *Config) { c.Rules = []rules.RawRuleSet{{Bullets: []string{"#"}}} }, "'ext' is required"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
