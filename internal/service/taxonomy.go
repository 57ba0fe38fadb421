// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/store"
	"github.com/olegiv/ecovibe-go/internal/util"
)

// TaxonomyService manages one (value, label) table: categories or project
// types. Deleting a term does not touch projects using its value.
type TaxonomyService struct {
	queries  *store.Queries
	cache    *cache.Portfolio
	taxonomy store.Taxonomy
	noun     string
}

// NewCategoryService manages categories.
func NewCategoryService(db *sql.DB, readCache *cache.Portfolio) *TaxonomyService {
	return &TaxonomyService{queries: store.New(db), cache: readCache, taxonomy: store.TaxonomyCategories, noun: "category"}
}

// NewProjectTypeService manages project types.
func NewProjectTypeService(db *sql.DB, readCache *cache.Portfolio) *TaxonomyService {
	return &TaxonomyService{queries: store.New(db), cache: readCache, taxonomy: store.TaxonomyProjectTypes, noun: "project type"}
}

// Noun names the managed term kind for messages.
func (s *TaxonomyService) Noun() string { return s.noun }

// List returns the terms sorted by label.
func (s *TaxonomyService) List(ctx context.Context) ([]model.Term, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if s.taxonomy == store.TaxonomyCategories {
		return snap.Categories, nil
	}
	return snap.ProjectTypes, nil
}

// Create adds a term. An empty value is derived from the label.
func (s *TaxonomyService) Create(ctx context.Context, value, label string) (model.Term, error) {
	value, label, err := normalizeTerm(value, label)
	if err != nil {
		return model.Term{}, err
	}

	row, err := s.queries.CreateTerm(ctx, s.taxonomy, store.CreateTermParams{
		ID:        uuid.NewString(),
		Value:     value,
		Label:     label,
		CreatedAt: time.Now(),
	})
	if store.IsUniqueViolation(err) {
		return model.Term{}, duplicateValue(s.noun)
	}
	if err != nil {
		return model.Term{}, fmt.Errorf("creating %s: %w", s.noun, err)
	}

	s.invalidate(ctx)
	slog.Info(s.noun+" created", "value", row.Value, "category", model.EventCategoryPortfolio)
	return model.Term{ID: row.ID, Value: row.Value, Label: row.Label, CreatedAt: row.CreatedAt}, nil
}

// Update changes a term's value and label.
func (s *TaxonomyService) Update(ctx context.Context, id, value, label string) (model.Term, error) {
	value, label, err := normalizeTerm(value, label)
	if err != nil {
		return model.Term{}, err
	}

	row, err := s.queries.UpdateTerm(ctx, s.taxonomy, id, value, label)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.Term{}, fmt.Errorf("%s %s: %w", s.noun, id, ErrNotFound)
	case store.IsUniqueViolation(err):
		return model.Term{}, duplicateValue(s.noun)
	case err != nil:
		return model.Term{}, fmt.Errorf("updating %s: %w", s.noun, err)
	}

	s.invalidate(ctx)
	return model.Term{ID: row.ID, Value: row.Value, Label: row.Label, CreatedAt: row.CreatedAt}, nil
}

// Delete removes a term.
func (s *TaxonomyService) Delete(ctx context.Context, id string) error {
	n, err := s.queries.DeleteTerm(ctx, s.taxonomy, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", s.noun, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", s.noun, id, ErrNotFound)
	}

	s.invalidate(ctx)
	return nil
}

func (s *TaxonomyService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate portfolio cache", "error", err, "category", model.EventCategoryCache)
	}
}

func normalizeTerm(value, label string) (string, string, error) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)

	fields := map[string]string{}
	if label == "" {
		fields["label"] = "Label is required"
	}
	if value == "" {
		value = util.Slugify(label)
	}
	if label != "" && !util.IsValidSlug(value) {
		fields["value"] = "Value may contain only lowercase letters, digits and hyphens"
	}
	if err := newValidationError(fields); err != nil {
		return "", "", err
	}
	return value, label, nil
}

func duplicateValue(noun string) error {
	return &ValidationError{Fields: map[string]string{"value": "A " + noun + " with this value already exists"}}
}
