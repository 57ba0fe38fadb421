// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorIdle is how long an unseen client keeps its limiter.
const visitorIdle = time.Hour

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// visitors keeps one token bucket per key.
type visitors[K comparable] struct {
	mu    sync.Mutex
	byKey map[K]*visitor
	rate  rate.Limit
	burst int
	now   func() time.Time
}

func newVisitors[K comparable](rps float64, burst int) *visitors[K] {
	return &visitors[K]{
		byKey: make(map[K]*visitor),
		rate:  rate.Limit(rps),
		burst: burst,
		now:   time.Now,
	}
}

// allow takes a token from key's bucket.
func (v *visitors[K]) allow(key K) bool {
	now := v.now()

	v.mu.Lock()
	vis, ok := v.byKey[key]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.rate, v.burst)}
		v.byKey[key] = vis
	}
	vis.seen = now
	v.mu.Unlock()

	return vis.limiter.AllowN(now, 1)
}

// prune forgets keys idle for longer than idle and returns how many went.
func (v *visitors[K]) prune(idle time.Duration) int {
	cutoff := v.now().Add(-idle)

	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for k, vis := range v.byKey {
		if vis.seen.Before(cutoff) {
			delete(v.byKey, k)
			n++
		}
	}
	return n
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	clients   *visitors[string]
	lastPrune time.Time
	pruneMu   sync.Mutex
}

// NewRateLimiter allows rps requests per second per IP with the given
// burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{clients: newVisitors[string](rps, burst)}
}

// allow also prunes idle clients at most once a minute.
func (rl *RateLimiter) allow(ip string) bool {
	rl.pruneMu.Lock()
	if now := rl.clients.now(); now.Sub(rl.lastPrune) > time.Minute {
		rl.lastPrune = now
		rl.pruneMu.Unlock()
		rl.clients.prune(visitorIdle)
	} else {
		rl.pruneMu.Unlock()
	}
	return rl.clients.allow(ip)
}

// apiError mirrors the error body of the JSON API.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIMiddleware answers over-limit clients with a JSON 429.
func (rl *RateLimiter) APIMiddleware() func(http.Handler) http.Handler {
	return rl.middleware(func(w http.ResponseWriter, _ *http.Request) {
		var body apiError
		body.Error.Code = "rate_limit_exceeded"
		body.Error.Message = "Rate limit exceeded. Please slow down."
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(body)
	})
}

// HTMLMiddleware answers over-limit visitors with a plain text 429.
func (rl *RateLimiter) HTMLMiddleware() func(http.Handler) http.Handler {
	return rl.middleware(func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("public rate limit exceeded", "ip", getClientIP(r), "path", r.URL.Path)
		http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
	})
}

func (rl *RateLimiter) middleware(reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(getClientIP(r)) {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the client address. chi's RealIP middleware has
// already copied proxy headers into RemoteAddr when enabled.
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
