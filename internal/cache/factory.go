// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited)
	MaxSize int

	CleanupInterval time.Duration
}

// New creates a Redis cache when a URL is configured and reachable, and an
// in-memory cache otherwise. The returned string names the backend.
func New(cfg Config) (Cacher, string) {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(RedisOptions{
			URL:         cfg.RedisURL,
			Prefix:      cfg.Prefix,
			DefaultTTL:  cfg.DefaultTTL,
			DialTimeout: 3 * time.Second,
		})
		if err == nil {
			return rc, "redis"
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err, "category", "cache")
	}

	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	}), "memory"
}
