// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testItem struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

func TestTypedCache_SetGet(t *testing.T) {
	mem := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = mem.Close() }()

	c := NewTypedCache[testItem](mem, time.Hour)
	ctx := context.Background()

	if err := c.Set(ctx, "item", &testItem{ID: "a", Tags: []string{"x"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "item")
	if !ok || got.ID != "a" || len(got.Tags) != 1 {
		t.Fatalf("Get = %+v, %v", got, ok)
	}

	_ = c.Delete(ctx, "item")
	if _, ok := c.Get(ctx, "item"); ok {
		t.Error("item still present after Delete")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mem := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = mem.Close() }()

	c := NewTypedCache[testItem](mem, time.Hour)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) (*testItem, error) {
		calls++
		return &testItem{ID: "computed"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet(ctx, "k", fn)
		if err != nil || v.ID != "computed" {
			t.Fatalf("GetOrSet = %+v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrSet(ctx, "other", func(context.Context) (*testItem, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrSet error = %v, want boom", err)
	}
}

func TestTypedCache_CorruptEntryIsMiss(t *testing.T) {
	mem := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = mem.Close() }()

	_ = mem.Set(context.Background(), "bad", []byte("{not json"), 0)
	c := NewTypedCache[testItem](mem, time.Hour)
	if _, ok := c.Get(context.Background(), "bad"); ok {
		t.Error("corrupt entry should be treated as a miss")
	}
}

func TestTypedCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	mem := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = mem.Close() }()

	c := NewTypedCache[testItem](mem, time.Hour)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (*testItem, error) {
		calls.Add(1)
		<-release
		return &testItem{ID: "slow"}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			if v, err := c.GetOrSet(ctx, "k", load); err != nil || v.ID != "slow" {
				t.Errorf("GetOrSet = %+v, %v", v, err)
			}
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestTypedCache_DeleteDuringLoadDiscardsResult(t *testing.T) {
	mem := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = mem.Close() }()

	c := NewTypedCache[testItem](mem, time.Hour)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := c.GetOrSet(ctx, "k", func(context.Context) (*testItem, error) {
			close(started)
			<-release
			return &testItem{ID: "old"}, nil
		})
		if err != nil || v.ID != "old" {
			t.Errorf("GetOrSet = %+v, %v", v, err)
		}
	}()

	<-started
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	close(release)
	<-done

	v, err := c.GetOrSet(ctx, "k", func(context.Context) (*testItem, error) {
		return &testItem{ID: "new"}, nil
	})
	if err != nil || v.ID != "new" {
		t.Fatalf("GetOrSet after Delete = %+v, %v; want new", v, err)
	}
}

func TestTypedCache_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	mem := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = mem.Close() }()

	c := NewTypedCache[testItem](mem, time.Hour)

	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (*testItem, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &testItem{ID: "loaded"}, nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrSet(first, "k", load)
		firstErr <- err
	}()
	<-started

	waiter := make(chan *testItem, 1)
	go func() {
		v, err := c.GetOrSet(context.Background(), "k", load)
		if err != nil {
			t.Errorf("waiter GetOrSet: %v", err)
		}
		waiter <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller error = %v, want context.Canceled", err)
	}
	close(release)

	if v := <-waiter; v == nil || v.ID != "loaded" {
		t.Errorf("waiter got %+v, want loaded", v)
	}
	if got, ok := c.Get(context.Background(), "k"); !ok || got.ID != "loaded" {
		t.Errorf("cached = %+v, %v", got, ok)
	}
}
