// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 100})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	// Returned slices are copies.
	val[0] = 'X'
	again, _ := cache.Get(ctx, "key1")
	if string(again) != "value1" {
		t.Errorf("cached value was mutated through Get result: %s", again)
	}

	if has, _ := cache.Has(ctx, "key1"); !has {
		t.Error("expected key1 to exist")
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: 30 * time.Millisecond})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), 0)
	time.Sleep(60 * time.Millisecond)

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if has, _ := cache.Has(ctx, "k"); has {
		t.Error("expired entry reported by Has")
	}
}

func TestMemoryCache_MaxSizeEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 2})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	if _, err := cache.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a): %v", err)
	}
	_ = cache.Set(ctx, "c", []byte("3"), 0)

	if got := cache.Stats().Items; got != 2 {
		t.Fatalf("Items = %d, want 2", got)
	}
	if has, _ := cache.Has(ctx, "b"); has {
		t.Error("least recently used entry should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if has, _ := cache.Has(ctx, k); !has {
			t.Errorf("entry %q missing", k)
		}
	}

	// Overwriting an existing key does not evict.
	_ = cache.Set(ctx, "a", []byte("4"), 0)
	if got := cache.Stats().Items; got != 2 {
		t.Errorf("Items after overwrite = %d, want 2", got)
	}
}

func TestMemoryCache_ClearAndClose(t *testing.T) {
	cache := NewSimpleMemoryCache(time.Hour)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cache.Stats().Items != 0 {
		t.Error("Clear left entries behind")
	}

	_ = cache.Close()
	_ = cache.Close()
	if _, err := cache.Get(ctx, "a"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 || s.HitRate != 50 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 50})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			for j := 0; j < 100; j++ {
				_ = cache.Set(ctx, key, []byte{byte(j)}, 0)
				_, _ = cache.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_SweepDropsExpired(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: 10 * time.Millisecond, CleanupInterval: 5 * time.Millisecond})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "gone", []byte("1"), 0)
	_ = cache.Set(ctx, "kept", []byte("2"), time.Hour)

	deadline := time.Now().Add(time.Second)
	for cache.Stats().Items != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Items = %d after sweep, want 1", cache.Stats().Items)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
