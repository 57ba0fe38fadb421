// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/dustin/go-humanize"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/version"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

const (
	probeTimeout  = 2 * time.Second
	minFreeUpload = 100 << 20
)

// HealthHandler serves GET /health for load balancers and the admin.
type HealthHandler struct {
	db           *sql.DB
	sm           *scs.SessionManager
	uploadsDir   string
	cache        cache.Cacher
	cacheBackend string
	started      time.Time
}

// NewHealthHandler returns a health handler. sm and c may be nil.
func NewHealthHandler(db *sql.DB, sm *scs.SessionManager, uploadsDir string, c cache.Cacher, cacheBackend string) *HealthHandler {
	return &HealthHandler{
		db:           db,
		sm:           sm,
		uploadsDir:   uploadsDir,
		cache:        c,
		cacheBackend: cacheBackend,
		started:      time.Now(),
	}
}

// HealthStatus is what a logged-in admin sees. Anonymous callers get only
// {"status": ...}.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   version.Info     `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Cache     *CacheInfo       `json:"cache,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type CacheInfo struct {
	Backend string       `json:"backend"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}

type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// probes lists the checks of this instance. Only the database is
// critical: without it no page renders.
func (h *HealthHandler) probes() map[string]func(context.Context) Check {
	p := map[string]func(context.Context) Check{
		"database": func(ctx context.Context) Check { return checkPing(ctx, h.db.PingContext, statusUnhealthy) },
		"disk":     func(context.Context) Check { return checkDisk(h.uploadsDir) },
	}
	if pinger, ok := h.cache.(interface{ Ping(context.Context) error }); ok {
		p["cache"] = func(ctx context.Context) Check { return checkPing(ctx, pinger.Ping, statusDegraded) }
	}
	return p
}

// runProbes runs every probe concurrently.
func (h *HealthHandler) runProbes(ctx context.Context) map[string]Check {
	probes := h.probes()
	results := make(map[string]Check, len(probes))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, probe := range probes {
		wg.Go(func() {
			c := probe(ctx)
			mu.Lock()
			results[name] = c
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}

func overall(checks map[string]Check) string {
	status := statusHealthy
	for _, c := range checks {
		switch c.Status {
		case statusUnhealthy:
			return statusUnhealthy
		case statusDegraded:
			status = statusDegraded
		}
	}
	return status
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := h.runProbes(r.Context())
	status := overall(checks)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	code := http.StatusOK
	if status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)

	if !h.isAdmin(r) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
		return
	}

	body := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   version.Get(),
		Checks:    checks,
	}
	if h.cache != nil {
		body.Cache = &CacheInfo{Backend: h.cacheBackend}
		if sp, ok := h.cache.(cache.StatsProvider); ok {
			stats := sp.Stats()
			body.Cache.Stats = &stats
		}
	}
	if r.URL.Query().Get("verbose") == "true" {
		body.System = systemInfo()
	}
	_ = json.NewEncoder(w).Encode(body)
}

// isAdmin reports whether the request carries an admin session. Requests
// served without the session middleware count as anonymous.
func (h *HealthHandler) isAdmin(r *http.Request) (ok bool) {
	if h.sm == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return h.sm.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0
}

// checkPing times ping under a short deadline, reporting failures with
// the given status.
func checkPing(ctx context.Context, ping func(context.Context) error, failed string) Check {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: failed, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Message: "Connected", Latency: latency}
}

func checkDisk(dir string) Check {
	var st syscall.Statfs_t
	if err := syscall.Statfs(dir, &st); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Check{Status: statusHealthy, Message: "Uploads directory does not exist yet"}
		}
		return Check{Status: statusDegraded, Message: "Failed to check disk space: " + err.Error()}
	}

	free := st.Bavail * uint64(st.Bsize)
	msg := formatBytes(free) + " available"
	if free < minFreeUpload {
		return Check{Status: statusDegraded, Message: "Low disk space: " + msg}
	}
	return Check{Status: statusHealthy, Message: msg}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

func formatBytes(n uint64) string { return humanize.IBytes(n) }
