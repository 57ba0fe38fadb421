// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares the portfolio snapshot between several site instances.
// All keys live under one prefix so Clear never touches foreign data.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	closed     atomic.Bool

	hits, misses, sets atomic.Int64
}

// RedisOptions configures NewRedisCache. Zero timeouts keep the go-redis
// defaults.
type RedisOptions struct {
	URL         string // redis://[:password@]host:port/db
	Prefix      string
	DefaultTTL  time.Duration
	DialTimeout time.Duration
}

// NewRedisCache connects and PINGs the server so a bad URL fails at
// startup rather than on the first page view.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.DialTimeout > 0 {
		ro.DialTimeout = opts.DialTimeout
	}

	client := redis.NewClient(ro)
	ctx, cancel := context.WithTimeout(context.Background(), ro.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisCache{client: client, prefix: opts.Prefix, defaultTTL: opts.DefaultTTL}, nil
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

func (c *RedisCache) open() error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return nil
}

// Get returns ErrCacheMiss for absent keys.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}
	c.hits.Add(1)
	return val, nil
}

// Set stores value; a zero ttl uses the default.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.open(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return err
	}
	c.sets.Add(1)
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.client.Del(ctx, c.key(key)).Err()
}

// Clear unlinks every key under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.open(); err != nil {
		return err
	}
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Unlink(ctx, batch...).Err()
	}
	return nil
}

func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	if err := c.open(); err != nil {
		return false, err
	}
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	return n > 0, err
}

// Close is idempotent.
func (c *RedisCache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.client.Close()
}

// Stats reports this instance's counters; Items is unknown for Redis.
func (c *RedisCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{Hits: hits, Misses: misses, Sets: c.sets.Load(), HitRate: hitRate(hits, misses)}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.client.Ping(ctx).Err()
}

var (
	_ Cacher        = (*RedisCache)(nil)
	_ StatsProvider = (*RedisCache)(nil)
)
