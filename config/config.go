package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.yaml.in/yaml/v2"

	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/rules"
)

const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 8 << 20
)

// Config represents the top-level configuration of the outline service.
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Cache     CacheConfig        `yaml:"cache"`
	RateLimit RateLimitConfig    `yaml:"rate_limit"`
	Presets   []string           `yaml:"presets,omitempty"`
	Rules     []rules.RawRuleSet `yaml:"rules,omitempty"`
	RulesFile string             `yaml:"rules_file,omitempty"`
	LogLevel  string             `yaml:"log_level,omitempty"`

	// dir is the directory of the loaded file; relative rules_file paths resolve against it.
	dir string
}

// New returns a new Config with sensible defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
		},
	}
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
	IdleTimeout  time.Duration `yaml:"idle_timeout,omitempty"`
	MaxBodyBytes int64         `yaml:"max_body_bytes,omitempty"`
	APIKey       string        `yaml:"api_key,omitempty"`
}

// GetAddr returns the listen address with a default of :8080
func (s *ServerConfig) GetAddr() string {
	if s.Addr != "" {
		return s.Addr
	}
	return DefaultAddr
}

// GetReadTimeout returns the read timeout with a default of 30 seconds
func (s *ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout > 0 {
		return s.ReadTimeout
	}
	return 30 * time.Second
}

// GetWriteTimeout returns the write timeout with a default of 60 seconds
func (s *ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout > 0 {
		return s.WriteTimeout
	}
	return 60 * time.Second
}

// GetIdleTimeout returns the idle timeout with a default of 60 seconds
func (s *ServerConfig) GetIdleTimeout() time.Duration {
	if s.IdleTimeout > 0 {
		return s.IdleTimeout
	}
	return 60 * time.Second
}

// GetMaxBodyBytes returns the request body limit with a default of 8 MiB
func (s *ServerConfig) GetMaxBodyBytes() int64 {
	if s.MaxBodyBytes > 0 {
		return s.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig defines caching of built outlines.
type CacheConfig struct {
	Backend  string        `yaml:"backend,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
	Size     int           `yaml:"size,omitempty"`
	RedisURL string        `yaml:"redis_url,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
}

// IsEnabled returns true if a cache backend is selected
func (c *CacheConfig) IsEnabled() bool {
	return c.Backend != "" && c.Backend != CacheBackendNone
}

// GetTTL returns the entry lifetime with a default of 10 minutes
func (c *CacheConfig) GetTTL() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return 10 * time.Minute
}

// GetSize returns the in-memory entry limit with a default of 1024
func (c *CacheConfig) GetSize() int {
	if c.Size > 0 {
		return c.Size
	}
	return 1024
}

// GetPrefix returns the Redis key prefix with a default of "regexpoutline:"
func (c *CacheConfig) GetPrefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return "regexpoutline:"
}

// RateLimitConfig defines per-client request limits on the HTTP API.
type RateLimitConfig struct {
	Requests int           `yaml:"requests,omitempty"`
	Window   time.Duration `yaml:"window,omitempty"`
	RedisURL string        `yaml:"redis_url,omitempty"`
}

// IsEnabled returns true if rate limiting is configured
func (r *RateLimitConfig) IsEnabled() bool {
	return r.Requests > 0
}

// GetWindow returns the limit window with a default of 1 minute
func (r *RateLimitConfig) GetWindow() time.Duration {
	if r.Window > 0 {
		return r.Window
	}
	return time.Minute
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Validate checks the configuration for errors and conflicts
func (c *Config) Validate() error {
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server: timeouts must be >= 0")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server: 'max_body_bytes' must be >= 0")
	}

	switch c.Cache.Backend {
	case "", CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache: 'redis_url' is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache: 'backend' must be 'none', 'memory' or 'redis' (got %q)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache: 'ttl' must be >= 0")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache: 'size' must be >= 0")
	}

	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit: 'requests' must be >= 0")
	}
	if c.RateLimit.Window < 0 {
		return fmt.Errorf("rate_limit: 'window' must be >= 0")
	}

	if len(c.Rules) > 0 && c.RulesFile != "" {
		return fmt.Errorf("cannot specify both 'rules' and 'rules_file'")
	}
	for _, name := range c.Presets {
		if _, err := rules.Preset(name); err != nil {
			return fmt.Errorf("presets: %w", err)
		}
	}
	if err := rules.Validate(c.Rules); err != nil {
		return fmt.Errorf("rules%w", err)
	}

	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}

	return nil
}

// LoadRules resolves the configured rule sets: inline rules or the rules
// file first, then presets in the order listed. A rules file that cannot
// be read or parsed is logged and contributes no rule sets.
func (c *Config) LoadRules(log logger.Logger) []rules.RuleSet {
	if log == nil {
		log = logger.Noop()
	}

	raw := slices.Clone(c.Rules)
	if c.RulesFile != "" {
		path := c.RulesFile
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("failed to read rules file", "path", path, "error", err)
		} else if raw, err = rules.Decode(data); err != nil {
			log.Error("failed to parse rule specification", "path", path, "error", err)
			raw = nil
		}
	}

	for _, name := range c.Presets {
		preset, err := rules.Preset(name)
		if err != nil {
			log.Warn("skipping unknown rule preset", "preset", name)
			continue
		}
		raw = append(raw, preset...)
	}

	return rules.Resolve(raw, log)
}
