package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeychilson/regexpoutline/config"
	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/outliner"
	"github.com/joeychilson/regexpoutline/server"
)

const (
	defaultConfigFile = "./config.yaml"
	defaultLogLevel   = "info"
)

func main() {
	configFile := getEnv("CONFIG_FILE", defaultConfigFile)

	cfg := config.New()
	if _, statErr := os.Stat(configFile); statErr == nil {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			logger.NewJSON(os.Stderr, logger.LevelInfo).Error("failed to load config from file", "file", configFile, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Cache.Backend = config.CacheBackendRedis
		cfg.Cache.RedisURL = redisURL
		if cfg.RateLimit.IsEnabled() && cfg.RateLimit.RedisURL == "" {
			cfg.RateLimit.RedisURL = redisURL
		}
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Server.APIKey = apiKey
	}

	logLevel := getEnv("LOG_LEVEL", cfg.LogLevel)
	if logLevel == "" {
		logLevel = defaultLogLevel
	}
	level, err := logger.ParseLevel(logLevel)
	log := logger.NewJSON(os.Stderr, level)
	if err != nil {
		log.Warn("unknown log level, using info", "level", logLevel)
	}

	log.Info("starting outline API server", "log_level", level.String(), "config_file", configFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	o, err := outliner.NewFromConfig(cfg, log)
	if err != nil {
		log.Error("failed to create outliner", "error", err)
		os.Exit(1)
	}
	defer o.Close()

	log.Info("rules loaded", "rule_sets", len(o.RuleSets()), "cache", cfg.Cache.Backend)

	srv, err := server.New(o, log, cfg)
	if err != nil {
		log.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	if err := srv.StartWithShutdown(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
