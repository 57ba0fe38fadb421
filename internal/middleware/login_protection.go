// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/ecovibe-go/internal/model"
)

// maxLockout caps the doubling lockout of an admin account.
const maxLockout = 24 * time.Hour

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64       // login POSTs per second per IP
	IPBurst           int           // burst per IP
	MaxFailedAttempts int           // failures that lock the account
	LockoutDuration   time.Duration // first lockout, doubled on each repeat
	AttemptWindow     time.Duration // failures older than this are forgotten
}

// DefaultLoginProtectionConfig allows a login POST every two seconds per
// IP and locks an account for 15 minutes after 5 failures in 15 minutes.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// withDefaults fills zero fields from DefaultLoginProtectionConfig.
func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	return c
}

// strikes is the failure record of one admin email.
type strikes struct {
	count       int
	since       time.Time // first failure of the current window
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection throttles login POSTs per IP and locks admin accounts
// after repeated failures.
type LoginProtection struct {
	cfg        LoginProtectionConfig
	ipLimiters *visitors[string]
	now        func() time.Time

	mu       sync.Mutex
	accounts map[string]*strikes
}

// NewLoginProtection creates a LoginProtection. Stale records are pruned
// until ctx is done.
func NewLoginProtection(ctx context.Context, cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	lp := &LoginProtection{
		cfg:        cfg,
		ipLimiters: newVisitors[string](cfg.IPRateLimit, cfg.IPBurst),
		now:        time.Now,
		accounts:   make(map[string]*strikes),
	}
	go lp.cleanup(ctx)
	return lp
}

// CheckIPRateLimit reports whether another login POST from ip is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.allow(ip)
}

// IsAccountLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	s, ok := lp.accounts[normalizeEmail(email)]
	if !ok {
		return false, 0
	}
	if left := s.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailedAttempt counts a failure against email. When it reaches the
// limit the account is locked and the lock duration is returned.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	email = normalizeEmail(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	s, ok := lp.accounts[email]
	if !ok {
		s = &strikes{}
		lp.accounts[email] = s
	}
	if s.count == 0 || now.Sub(s.since) > lp.cfg.AttemptWindow {
		s.count, s.since = 0, now
	}
	s.count++

	if s.count < lp.cfg.MaxFailedAttempts {
		return false, 0
	}

	d := lockoutFor(lp.cfg.LockoutDuration, s.lockouts)
	s.lockedUntil = now.Add(d)
	s.lockouts++
	s.count = 0

	slog.Warn("admin account locked after failed logins",
		"email", email,
		"lockouts", s.lockouts,
		"duration", d,
		"category", model.EventCategoryAuth,
	)
	return true, d
}

// lockoutFor doubles base once per previous lockout, up to maxLockout.
func lockoutFor(base time.Duration, previous int) time.Duration {
	d := base
	for range previous {
		if d >= maxLockout/2 {
			return maxLockout
		}
		d *= 2
	}
	return min(d, maxLockout)
}

// RecordSuccessfulLogin forgets the failures of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, normalizeEmail(email))
	lp.mu.Unlock()
}

// GetRemainingAttempts returns how many failures email has left before a
// lockout.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	s, ok := lp.accounts[normalizeEmail(email)]
	if !ok || lp.now().Sub(s.since) > lp.cfg.AttemptWindow {
		return lp.cfg.MaxFailedAttempts
	}
	return max(lp.cfg.MaxFailedAttempts-s.count, 0)
}

func (lp *LoginProtection) cleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lp.cleanupStaleEntries()
		}
	}
}

// cleanupStaleEntries drops unlocked records whose window has passed.
func (lp *LoginProtection) cleanupStaleEntries() {
	if n := lp.ipLimiters.prune(visitorIdle); n > 0 {
		slog.Debug("pruned idle login limiters", "count", n)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for email, s := range lp.accounts {
		if now.After(s.lockedUntil) && now.Sub(s.since) > lp.cfg.AttemptWindow {
			delete(lp.accounts, email)
		}
	}
}

// Middleware throttles login POSTs per client IP. Other methods pass.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if ip := getClientIP(r); !lp.CheckIPRateLimit(ip) {
					slog.Warn("login rate limit exceeded", "ip", ip, "category", model.EventCategoryAuth)
					http.Error(w, "Too many login attempts. Please wait a moment and try again.", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
