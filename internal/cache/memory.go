// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is an in-process Cacher with per-entry TTLs. When MaxSize is
// set it evicts the least recently used entry.
type MemoryCache struct {
	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element

	ttl     time.Duration
	maxSize int

	closed atomic.Bool
	done   chan struct{}

	hits, misses, sets atomic.Int64
}

type memoryEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// MemoryCacheOptions configures NewMemoryCache. Zero MaxSize means no
// bound; zero CleanupInterval disables the background sweep, expired
// entries are then dropped on access.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		order:   list.New(),
		entries: make(map[string]*list.Element),
		ttl:     opts.DefaultTTL,
		maxSize: opts.MaxSize,
		done:    make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.sweep(opts.CleanupInterval)
	}
	return c
}

// NewSimpleMemoryCache returns an unbounded cache swept once a minute.
func NewSimpleMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{DefaultTTL: ttl, CleanupInterval: time.Minute})
}

// lookup returns the live entry for key and marks it used. Caller holds c.mu.
func (c *MemoryCache) lookup(key string, now time.Time) (*memoryEntry, bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*memoryEntry)
	if now.After(e.expires) {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e, true
}

func (c *MemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*memoryEntry).key)
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.Lock()
	e, ok := c.lookup(key, time.Now())
	var out []byte
	if ok {
		out = append([]byte(nil), e.value...)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	e := &memoryEntry{key: key, value: append([]byte(nil), value...), expires: time.Now().Add(ttl)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(e)
		for c.maxSize > 0 && c.order.Len() > c.maxSize {
			c.remove(c.order.Back())
		}
	}
	c.sets.Add(1)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	c.order.Init()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// Has reports whether key holds a live entry. It counts as a use.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}
	c.mu.Lock()
	_, ok := c.lookup(key, time.Now())
	c.mu.Unlock()
	return ok, nil
}

// Close stops the sweeper. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.done)
	}
	return nil
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	items := c.order.Len()
	c.mu.Unlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
	}
}

func (c *MemoryCache) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-t.C:
			c.mu.Lock()
			for el := c.order.Back(); el != nil; {
				prev := el.Prev()
				if now.After(el.Value.(*memoryEntry).expires) {
					c.remove(el)
				}
				el = prev
			}
			c.mu.Unlock()
		}
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
