// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TypedCache keeps values of one type as JSON in a Cacher. An entry that
// no longer decodes into T counts as a miss.
type TypedCache[T any] struct {
	backend Cacher
	ttl     time.Duration
	loads   singleflight.Group

	// gens counts Deletes per key. A load stores its result only if no
	// Delete happened while it ran.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewTypedCache[T any](backend Cacher, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{backend: backend, ttl: ttl, gens: make(map[string]uint64)}
}

func (c *TypedCache[T]) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	v := new(T)
	if json.Unmarshal(raw, v) != nil {
		return nil, false
	}
	return v, true
}

func (c *TypedCache[T]) Set(ctx context.Context, key string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return c.backend.Set(ctx, key, raw, c.ttl)
}

// Delete drops key. A load of key already in flight is forgotten so the
// next miss starts a fresh one, and its result is not stored.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	c.loads.Forget(key)
	return c.backend.Delete(ctx, key)
}

// GetOrSet returns the cached value, or runs load and caches its result.
// Concurrent misses on one key share a single load, which runs detached
// from the cancellation of whichever caller started it. A failed store is
// ignored since the loaded value is still good to return.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, load func(context.Context) (*T, error)) (*T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	ch := c.loads.DoChan(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := c.generation(key)
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[key] == gen {
			_ = c.Set(loadCtx, key, v)
		}
		c.mu.Unlock()
		return v, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
