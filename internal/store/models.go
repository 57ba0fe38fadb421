// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// Project is a row of the projects table. List columns are kept decoded.
type Project struct {
	ID               string
	Title            string
	Description      string
	Category         string
	ProjectType      string
	Tags             []string
	BeforeImage1     string
	AfterImage1      string
	BeforeImage2     sql.NullString
	AfterImage2      sql.NullString
	AdditionalImages []string
	Duration         sql.NullString
	Budget           sql.NullString
	Materials        []string
	IsHero           bool
	DisplayOrder     int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Term is a row of the categories or project_types table.
type Term struct {
	ID        string
	Value     string
	Label     string
	CreatedAt time.Time
}

// Founder is the single row of the founder table.
type Founder struct {
	ID         string
	Name       string
	PhotoUrl   sql.NullString
	Background sql.NullString
	MoreInfo   sql.NullString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// User is an admin account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	LastLoginAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a row of the event log.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}
