// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ecovibe-go/internal/auth"
)

// Default admin credentials, used when the environment does not provide any.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// AdminSeed describes the account created on first start.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// Seed creates the admin account if it does not exist yet.
func Seed(ctx context.Context, db *sql.DB, admin AdminSeed) error {
	queries := New(db)

	if admin.Email == "" {
		admin.Email = DefaultAdminEmail
	}
	if admin.Password == "" {
		admin.Password = DefaultAdminPassword
	}
	if admin.Name == "" {
		admin.Name = DefaultAdminName
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))

	_, err := queries.GetUserByEmail(ctx, admin.Email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        admin.Email,
		PasswordHash: passwordHash,
		Name:         admin.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	if admin.Password == DefaultAdminPassword {
		slog.Warn("admin user uses the default password, change it after first login",
			"email", user.Email, "category", "auth")
	}

	return nil
}

// ErrNoAdmin is returned by ResetAdminPassword for an unknown email.
var ErrNoAdmin = errors.New("no admin account with that email")

// ResetAdminPassword sets a new password for the admin with the given
// email and ends every session, so a forgotten or leaked password can be
// replaced from the server's shell.
func ResetAdminPassword(ctx context.Context, db *sql.DB, email, password string) error {
	if password == "" || password == DefaultAdminPassword {
		return errors.New("a new password other than the default is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := New(db).GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNoAdmin, email)
	}
	if err != nil {
		return fmt.Errorf("looking up admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := New(tx).UpdateUserPassword(ctx, user.ID, hash, time.Now()); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Warn("admin password reset", "email", email, "category", "auth")
	return nil
}
