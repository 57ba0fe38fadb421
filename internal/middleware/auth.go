// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication, rate
// limiting, CSRF protection and response headers.
package middleware

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ecovibe-go/internal/store"
)

type ctxKey int

const (
	adminKey ctxKey = iota
	pathKey
)

// SessionKeyUserID holds the logged-in admin's id. Its presence is the
// authenticated flag.
const SessionKeyUserID = "user_id"

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/login"

// RequireAdmin redirects requests without an admin session to the login
// page with 303 See Other.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetInt64(r.Context(), SessionKeyUserID) == 0 {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadAdmin loads the logged-in admin into the request context. A session
// pointing at a deleted user is destroyed and sent to login.
// Use after RequireAdmin.
func LoadAdmin(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey, user)))
		})
	}
}

// CurrentAdmin is the admin LoadAdmin put in the context, or nil.
func CurrentAdmin(r *http.Request) *store.User {
	if u, ok := r.Context().Value(adminKey).(store.User); ok {
		return &u
	}
	return nil
}

// CurrentAdminID is the loaded admin's id in the form the event log
// takes.
func CurrentAdminID(r *http.Request) *int64 {
	u := CurrentAdmin(r)
	if u == nil {
		return nil
	}
	return &u.ID
}

// RequestPath records r.URL.Path so log records written deeper in the
// call chain can carry it.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), pathKey, r.URL.Path)))
	})
}

// PathFromContext returns the path stored by RequestPath.
func PathFromContext(ctx context.Context) string {
	p, _ := ctx.Value(pathKey).(string)
	return p
}
