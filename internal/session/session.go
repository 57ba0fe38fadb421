// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the admin login session.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const (
	devCookieName  = "ecovibe_session"
	prodCookieName = "__Host-session"
)

// New creates a session manager whose state lives in the sessions table.
// Expired rows are purged every 30 minutes.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.NewWithCleanupInterval(db, 30*time.Minute)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 4 * time.Hour
	sm.Cookie.Name = devCookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	// __Host- cookies must be Secure, path "/" and have no Domain.
	if !isDev {
		sm.Cookie.Name = prodCookieName
	}

	return sm
}
