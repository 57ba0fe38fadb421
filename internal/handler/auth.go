// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ecovibe-go/internal/auth"
	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/internal/store"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// LoginView is the data of the login page.
type LoginView struct {
	Email string
}

// LoginForm renders the login page. Logged-in admins go straight to the
// dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID); userID > 0 {
		if _, err := h.queries.GetUserByID(r.Context(), userID); err == nil {
			http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
			return
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateLogin, render.TemplateData{
		Title: "Admin Login",
		Data:  LoginView{},
	})
}

var (
	errAccountLocked  = errors.New("account locked")
	errBadCredentials = errors.New("invalid credentials")
	errLoginInternal  = errors.New("login failed")
)

// dummyHash is checked against when the email is unknown so both paths
// cost one argon2 derivation.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("ecovibe-no-such-user")
	return h
})

// authenticate checks email and password. It returns the user, or one of
// the errors above together with the lockout left when locked.
func (h *AuthHandler) authenticate(r *http.Request, email, password string) (store.User, time.Duration, error) {
	ctx := r.Context()
	meta := map[string]any{"email": email, "ip": r.RemoteAddr}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(ctx, model.EventLevelWarning, "Login attempt on locked account", nil, meta)
			return store.User{}, remaining, errAccountLocked
		}
	}

	user, err := h.queries.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, _ = auth.CheckPassword(password, dummyHash())
		_ = h.eventService.LogAuthEvent(ctx, model.EventLevelWarning, "Login failed: user not found", nil, meta)
		return store.User{}, 0, errBadCredentials
	case err != nil:
		slog.Error("loading user for login", "error", err)
		return store.User{}, 0, errLoginInternal
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("checking password", "error", err, "user_id", user.ID)
	}
	if !ok {
		_ = h.eventService.LogAuthEvent(ctx, model.EventLevelWarning, "Login failed: invalid password", &user.ID, meta)
		return user, 0, errBadCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(ctx, user.ID, hash, time.Now()); err != nil {
				slog.Error("storing re-hashed password", "error", err, "user_id", user.ID)
			}
		}
	}
	return user, 0, nil
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required.")
		return
	}

	user, remaining, err := h.authenticate(r, email, password)
	switch {
	case errors.Is(err, errAccountLocked):
		flashError(w, r, h.renderer, redirectLogin, "Account temporarily locked. Try again in "+formatDuration(remaining)+".")
		return
	case err != nil:
		// Unknown emails count against the limit too, so both look alike.
		var userID *int64
		if user.ID > 0 {
			userID = &user.ID
		}
		h.failLogin(w, r, email, userID)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}
	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Error("updating last login time", "error", err, "user_id", user.ID)
	}

	// A fresh token on login defeats session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("admin logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Admin logged in", &user.ID,
		map[string]any{"email": email, "ip": r.RemoteAddr})

	flashSuccess(w, r, h.renderer, redirectAdmin, "Welcome back, "+user.Name+".")
}

// failLogin counts the failure and flashes the outcome.
func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, email string, userID *int64) {
	msg := "Invalid email or password."
	if h.loginProtection != nil {
		if locked, d := h.loginProtection.RecordFailedAttempt(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Account locked due to failed attempts", userID,
				map[string]any{"email": email, "duration": d.String()})
			msg = "Too many failed attempts. Try again in " + formatDuration(d) + "."
		} else if left := h.loginProtection.GetRemainingAttempts(email); left > 0 && left <= 3 {
			msg = fmt.Sprintf("Invalid email or password. %d attempts remaining.", left)
		}
	}
	flashError(w, r, h.renderer, redirectLogin, msg)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.CurrentAdminID(r)
	if userID == nil {
		if id := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID); id > 0 {
			userID = &id
		}
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "session destroy error", "error", err)
		return
	}
	if userID != nil {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Admin logged out", userID, nil)
	}

	flashSuccess(w, r, h.renderer, redirectLogin, "You have been logged out.")
}

// formatDuration renders a lockout for the login page, rounded to the
// minute: "1 minute", "15 minutes", "2 hours", "1h 30m".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h, m := int(d.Hours()), int(d.Minutes())%60
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d < time.Minute:
		return "less than a minute"
	case h == 0:
		return plural(m, "minute")
	case m == 0:
		return plural(h, "hour")
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
