// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateInteractions(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be non-negative, got %v", c.Database.QueryTimeout)
	}
	return nil
}

// validateRecommend delegates to the engine's own checks so the rules live
// in one place.
func (c *Config) validateRecommend() error {
	if err := c.Recommend.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	b := c.Recommend.Breaker
	if !b.Enabled {
		return nil
	}
	if b.MaxRequests == 0 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be positive")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got %v", b.Timeout)
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %f", b.FailureRatio)
	}
	return nil
}

func (c *Config) validateInteractions() error {
	ic := c.Interactions
	if !ic.Enabled {
		return nil
	}

	switch ic.Transport {
	case "gochannel":
	case "nats":
		if ic.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when INTERACTIONS_TRANSPORT=nats")
		}
		if ic.NATS.SubscribersCount < 1 {
			return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1, got %d", ic.NATS.SubscribersCount)
		}
	default:
		return fmt.Errorf("INTERACTIONS_TRANSPORT must be gochannel or nats, got %q", ic.Transport)
	}

	if ic.Topic == "" {
		return fmt.Errorf("INTERACTIONS_TOPIC is required")
	}
	if ic.QueueSize < 1 {
		return fmt.Errorf("INTERACTIONS_QUEUE_SIZE must be positive, got %d", ic.QueueSize)
	}
	if ic.RatePerSecond < 0 {
		return fmt.Errorf("INTERACTIONS_RATE must be non-negative, got %f", ic.RatePerSecond)
	}
	if ic.RatePerSecond > 0 && ic.Burst < 1 {
		return fmt.Errorf("INTERACTIONS_BURST must be positive when throttling, got %d", ic.Burst)
	}
	if !ic.Store.InMemory && ic.Store.Path == "" {
		return fmt.Errorf("INTERACTIONS_STORE_PATH is required unless INTERACTIONS_STORE_MEMORY=true")
	}
	if ic.Store.Retention < 0 {
		return fmt.Errorf("INTERACTIONS_RETENTION must be non-negative, got %v", ic.Store.Retention)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	if c.Server.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
