// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPath is the dotenv file loaded into the process environment before
// the env layer is read. A missing file is not an error.
var DotEnvPath = ".env"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/marquee.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			MaxOpenConns: 0,
			QueryTimeout: 5 * time.Second,
			SeedDemoData: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			CandidateLimit:      100,
			AttendanceHistory:   50,
			PersonalizedK:       20,
			SimilarK:            20,
			CollaborativeK:      10,
			TrendingK:           10,
			MaxK:                100,
			ProfileTopGenres:    5,
			FallbackSpend:       100,
			FallbackSellThrough: 0.6,
			TrendingWindow:      7 * 24 * time.Hour,
			ForecastHorizon:     30 * 24 * time.Hour,
			ForecastSampleSize:  10,
			ForecastConcurrency: 10,
			RequestTimeout:      10 * time.Second,
			LogImpressions:      true,
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Interactions: InteractionsConfig{
			Enabled:       true,
			Transport:     "gochannel",
			Topic:         "marquee.interactions",
			QueueSize:     1024,
			RatePerSecond: 500,
			Burst:         100,
			ChannelBuffer: 256,
			NATS: InteractionsNATSConfig{
				URL:              "nats://127.0.0.1:4222",
				QueueGroupPrefix: "marquee",
				SubscribersCount: 2,
				MaxReconnects:    -1, // Unlimited
				ReconnectWait:    2 * time.Second,
				AckWaitTimeout:   30 * time.Second,
				CloseTimeout:     30 * time.Second,
			},
			Store: InteractionsStoreConfig{
				Path:      "/data/interactions",
				InMemory:  false,
				Retention: 90 * 24 * time.Hour,
			},
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration in layers:
//
//  1. Struct defaults
//  2. Config file (CONFIG_PATH or DefaultConfigPaths), if present
//  3. Environment variables, after merging an optional .env file
//
// Later layers override earlier ones. The result is validated before it
// is returned.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(DotEnvPath); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv merges path into the process environment without overriding
// variables that are already set.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are keys whose env values are comma-separated lists.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated string values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf keys.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"duckdb_max_open_conns": "database.max_open_conns",
	"duckdb_query_timeout":  "database.query_timeout",
	"seed_demo_data":        "database.seed_demo_data",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"recommend_candidate_limit":       "recommend.candidate_limit",
	"recommend_attendance_history":    "recommend.attendance_history",
	"recommend_personalized_k":        "recommend.personalized_k",
	"recommend_similar_k":             "recommend.similar_k",
	"recommend_collaborative_k":       "recommend.collaborative_k",
	"recommend_trending_k":            "recommend.trending_k",
	"recommend_max_k":                 "recommend.max_k",
	"recommend_profile_top_genres":    "recommend.profile_top_genres",
	"recommend_fallback_spend":        "recommend.fallback_spend",
	"recommend_fallback_sell_through": "recommend.fallback_sell_through",
	"recommend_trending_window":       "recommend.trending_window",
	"recommend_forecast_horizon":      "recommend.forecast_horizon",
	"recommend_forecast_sample_size":  "recommend.forecast_sample_size",
	"recommend_forecast_concurrency":  "recommend.forecast_concurrency",
	"recommend_timeout":               "recommend.request_timeout",
	"recommend_log_impressions":       "recommend.log_impressions",

	"breaker_enabled":       "recommend.breaker.enabled",
	"breaker_max_requests":  "recommend.breaker.max_requests",
	"breaker_interval":      "recommend.breaker.interval",
	"breaker_timeout":       "recommend.breaker.timeout",
	"breaker_min_requests":  "recommend.breaker.min_requests",
	"breaker_failure_ratio": "recommend.breaker.failure_ratio",

	"interactions_enabled":        "interactions.enabled",
	"interactions_transport":      "interactions.transport",
	"interactions_topic":          "interactions.topic",
	"interactions_queue_size":     "interactions.queue_size",
	"interactions_rate":           "interactions.rate_per_second",
	"interactions_burst":          "interactions.burst",
	"interactions_channel_buffer": "interactions.channel_buffer",
	"interactions_store_path":     "interactions.store.path",
	"interactions_store_memory":   "interactions.store.in_memory",
	"interactions_retention":      "interactions.store.retention",

	"nats_url":              "interactions.nats.url",
	"nats_queue_group":      "interactions.nats.queue_group_prefix",
	"nats_subscribers":      "interactions.nats.subscribers_count",
	"nats_max_reconnects":   "interactions.nats.max_reconnects",
	"nats_reconnect_wait":   "interactions.nats.reconnect_wait",
	"nats_ack_wait_timeout": "interactions.nats.ack_wait_timeout",
	"nats_close_timeout":    "interactions.nats.close_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps environment variable names to koanf keys.
// Returning "" tells koanf to skip the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
