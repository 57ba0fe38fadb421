// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SeedDemo fills an empty portfolio with sample projects and a founder
// profile so a fresh install has something to show.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	slog.Info("seeding demo content")
	queries := New(db)

	if err := seedDemoProjects(ctx, db, queries); err != nil {
		return fmt.Errorf("seeding demo projects: %w", err)
	}

	if err := seedDemoFounder(ctx, queries); err != nil {
		return fmt.Errorf("seeding demo founder: %w", err)
	}

	slog.Info("demo content seeded successfully")
	return nil
}

// seedDemoProjects inserts all sample projects or none.
func seedDemoProjects(ctx context.Context, db *sql.DB, queries *Queries) error {
	existing, err := queries.ListProjects(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("projects already exist, skipping demo projects")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	qtx := queries.WithTx(tx)

	now := time.Now()
	projects := getDemoProjects()
	for i, p := range projects {
		created := now.Add(-time.Duration(len(projects)-i) * 24 * time.Hour)
		if _, err := qtx.CreateProject(ctx, CreateProjectParams{
			ID:            uuid.NewString(),
			ProjectParams: p,
			DisplayOrder:  created.UnixMilli(),
			CreatedAt:     created,
			UpdatedAt:     created,
		}); err != nil {
			return fmt.Errorf("creating project %q: %w", p.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("seeded demo projects", "count", len(projects))
	return nil
}

func seedDemoFounder(ctx context.Context, queries *Queries) error {
	_, err := queries.GetFounder(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = queries.CreateFounder(ctx, uuid.NewString(), FounderParams{
		Name:       "Shabnam Rumpf",
		Background: "Interior designer focused on **sustainable** materials and light-filled spaces.",
		MoreInfo:   "Every project starts with a conversation about how you live in your home.",
	}, time.Now())
	return err
}

func getDemoProjects() []ProjectParams {
	return []ProjectParams{
		{
			Title:        "Modern Kitchen Transformation",
			Description:  "Complete kitchen remodel with custom cabinetry, marble countertops, and state-of-the-art appliances.",
			Category:     "kitchen",
			ProjectType:  "full-remodel",
			Tags:         []string{"modern", "marble"},
			BeforeImage1: "https://images.unsplash.com/photo-1484154218962-a197022b5858?w=800&q=80",
			AfterImage1:  "https://images.unsplash.com/photo-1556911220-bff31c812dba?w=800&q=80",
			Duration:     "8 weeks",
			Materials:    []string{"Marble countertops", "Walnut cabinetry"},
			IsHero:       true,
		},
		{
			Title:        "Luxury Bathroom Renovation",
			Description:  "Modern bathroom transformation with premium fixtures, marble tiles, and elegant lighting design.",
			Category:     "bathroom",
			ProjectType:  "renovation",
			Tags:         []string{"spa", "lighting"},
			BeforeImage1: "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=800&q=80",
			AfterImage1:  "https://images.unsplash.com/photo-1600607687644-c7171b42498b?w=800&q=80",
			Duration:     "5 weeks",
			Materials:    []string{"Porcelain tile", "Brushed brass fixtures"},
		},
	}
}
