// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Logging      LoggingConfig      `koanf:"logging"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Interactions InteractionsConfig `koanf:"interactions"`
	Security     SecurityConfig     `koanf:"security"`
	Supervisor   SupervisorConfig   `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path         string        `koanf:"path"`
	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads"`        // 0 = use NumCPU
	MaxOpenConns int           `koanf:"max_open_conns"` // 0 = use NumCPU
	QueryTimeout time.Duration `koanf:"query_timeout"`
	SeedDemoData bool          `koanf:"seed_demo_data"` // Load the demo catalog into an empty database
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds the engine's operational settings. Scoring
// weights are fixed and not configurable.
type RecommendConfig struct {
	CandidateLimit    int `koanf:"candidate_limit"`
	AttendanceHistory int `koanf:"attendance_history"`
	PersonalizedK     int `koanf:"personalized_k"`
	SimilarK          int `koanf:"similar_k"`
	CollaborativeK    int `koanf:"collaborative_k"`
	TrendingK         int `koanf:"trending_k"`
	MaxK              int `koanf:"max_k"`
	ProfileTopGenres  int `koanf:"profile_top_genres"`

	// FallbackSpend is the average spend of a user without completed purchases.
	FallbackSpend float64 `koanf:"fallback_spend"`

	// FallbackSellThrough is used when a forecast has no historical sample.
	FallbackSellThrough float64 `koanf:"fallback_sell_through"`

	TrendingWindow      time.Duration `koanf:"trending_window"`
	ForecastHorizon     time.Duration `koanf:"forecast_horizon"`
	ForecastSampleSize  int           `koanf:"forecast_sample_size"`
	ForecastConcurrency int           `koanf:"forecast_concurrency"`

	// RequestTimeout bounds one recommendation request end to end.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// LogImpressions emits a viewed interaction per returned result.
	LogImpressions bool `koanf:"log_impressions"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds circuit breaker settings shared by every store.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the closed-state window after which counts reset.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`

	// MinRequests and FailureRatio decide when the breaker opens.
	MinRequests  uint32  `koanf:"min_requests"`
	FailureRatio float64 `koanf:"failure_ratio"`
}

// InteractionsConfig holds the interaction pipeline settings
type InteractionsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Transport selects the message bus: gochannel (in-process) or nats.
	Transport string `koanf:"transport"`

	Topic string `koanf:"topic"`

	// QueueSize bounds the publisher's in-memory queue. Interactions
	// arriving on a full queue are dropped.
	QueueSize int `koanf:"queue_size"`

	// RatePerSecond and Burst throttle publishing. 0 disables throttling.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	// ChannelBuffer is the gochannel output buffer per subscriber.
	ChannelBuffer int64 `koanf:"channel_buffer"`

	NATS  InteractionsNATSConfig  `koanf:"nats"`
	Store InteractionsStoreConfig `koanf:"store"`
}

// InteractionsNATSConfig holds the core NATS transport settings.
type InteractionsNATSConfig struct {
	URL              string        `koanf:"url"`
	QueueGroupPrefix string        `koanf:"queue_group_prefix"`
	SubscribersCount int           `koanf:"subscribers_count"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`
}

// InteractionsStoreConfig holds the BadgerDB sink settings.
type InteractionsStoreConfig struct {
	Path string `koanf:"path"`

	// InMemory keeps the sink in RAM. Path is ignored.
	InMemory bool `koanf:"in_memory"`

	// Retention is the TTL applied to each stored interaction. 0 keeps forever.
	Retention time.Duration `koanf:"retention"`
}

// SecurityConfig holds request admission settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SupervisorConfig mirrors supervisor.TreeConfig.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, an optional config file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Address returns the host:port the HTTP server listens on.
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// ToEngineConfig converts the recommend section into engine settings.
func (r *RecommendConfig) ToEngineConfig() *recommend.Config {
	return &recommend.Config{
		Limits: recommend.LimitsConfig{
			CandidateLimit:    r.CandidateLimit,
			AttendanceHistory: r.AttendanceHistory,
			PersonalizedK:     r.PersonalizedK,
			SimilarK:          r.SimilarK,
			CollaborativeK:    r.CollaborativeK,
			TrendingK:         r.TrendingK,
			MaxK:              r.MaxK,
			ProfileTopGenres:  r.ProfileTopGenres,
		},
		Fallbacks: recommend.FallbackConfig{
			AverageSpend: r.FallbackSpend,
			SellThrough:  r.FallbackSellThrough,
		},
		Trending: recommend.TrendingConfig{
			Window: r.TrendingWindow,
		},
		Forecast: recommend.ForecastConfig{
			Horizon:     r.ForecastHorizon,
			SampleSize:  r.ForecastSampleSize,
			Concurrency: r.ForecastConcurrency,
		},
		RequestTimeout: r.RequestTimeout,
		LogImpressions: r.LogImpressions,
	}
}
