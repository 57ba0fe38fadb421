// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLoginProtection(t *testing.T) *LoginProtection {
	t.Helper()
	return NewLoginProtection(t.Context(), LoginProtectionConfig{
		IPRateLimit:       0.001,
		IPBurst:           2,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Hour,
	})
}

func TestLoginProtection_LocksAfterMaxAttempts(t *testing.T) {
	lp := newTestLoginProtection(t)

	locked, _ := lp.RecordFailedAttempt("Admin@Example.com")
	assert.False(t, locked)
	assert.Equal(t, 2, lp.GetRemainingAttempts("admin@example.com"))

	locked, _ = lp.RecordFailedAttempt("admin@example.com ")
	assert.False(t, locked)

	locked, d := lp.RecordFailedAttempt("admin@example.com")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, d)

	isLocked, remaining := lp.IsAccountLocked("ADMIN@example.com")
	assert.True(t, isLocked)
	assert.Greater(t, remaining, time.Duration(0))
}

func TestLoginProtection_LockoutDoubles(t *testing.T) {
	lp := newTestLoginProtection(t)
	email := "admin@example.com"

	for range 3 {
		lp.RecordFailedAttempt(email)
	}
	// The counter restarts after a lockout.
	var d time.Duration
	for range 3 {
		_, d = lp.RecordFailedAttempt(email)
	}
	assert.Equal(t, 2*time.Minute, d)
}

func TestLoginProtection_SuccessClears(t *testing.T) {
	lp := newTestLoginProtection(t)
	lp.RecordFailedAttempt("a@b.c")
	lp.RecordFailedAttempt("a@b.c")

	lp.RecordSuccessfulLogin("A@B.C")

	assert.Equal(t, 3, lp.GetRemainingAttempts("a@b.c"))
	locked, _ := lp.IsAccountLocked("a@b.c")
	assert.False(t, locked)
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := newTestLoginProtection(t)
	h := lp.Middleware()(http.HandlerFunc(okHandler))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	// GET is never limited.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginProtection_CleanupStaleEntries(t *testing.T) {
	lp := newTestLoginProtection(t)
	lp.RecordFailedAttempt("old@example.com")

	lp.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	lp.cleanupStaleEntries()

	lp.mu.Lock()
	defer lp.mu.Unlock()
	assert.NotContains(t, lp.accounts, "old@example.com")
}

func TestLoginProtection_WindowExpiry(t *testing.T) {
	lp := newTestLoginProtection(t)
	lp.RecordFailedAttempt("a@b.c")
	lp.RecordFailedAttempt("a@b.c")

	later := time.Now().Add(2 * time.Hour)
	lp.now = func() time.Time { return later }

	assert.Equal(t, 3, lp.GetRemainingAttempts("a@b.c"))
	locked, _ := lp.RecordFailedAttempt("a@b.c")
	assert.False(t, locked, "old failures no longer count")
}

func TestLockoutFor(t *testing.T) {
	assert.Equal(t, 15*time.Minute, lockoutFor(15*time.Minute, 0))
	assert.Equal(t, 60*time.Minute, lockoutFor(15*time.Minute, 2))
	assert.Equal(t, maxLockout, lockoutFor(15*time.Minute, 20))
}
