// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/store"
)

// PortfolioService manages projects. Reads come from the read cache,
// writes go to the store and invalidate it.
type PortfolioService struct {
	queries *store.Queries
	cache   *cache.Portfolio
	bucket  storage.Bucket
	retry   RetryPolicy
	now     func() time.Time
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(db *sql.DB, readCache *cache.Portfolio, bucket storage.Bucket) *PortfolioService {
	return &PortfolioService{
		queries: store.New(db),
		cache:   readCache,
		bucket:  bucket,
		retry:   DefaultRetryPolicy,
		now:     time.Now,
	}
}

// SetRetryPolicy replaces the busy retry policy.
func (s *PortfolioService) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// Snapshot returns the cached portfolio data.
func (s *PortfolioService) Snapshot(ctx context.Context) (*cache.Snapshot, error) {
	return s.cache.Snapshot(ctx)
}

// List returns all projects in display order.
func (s *PortfolioService) List(ctx context.Context) ([]model.Project, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.Projects), nil
}

// Get returns one project.
func (s *PortfolioService) Get(ctx context.Context, id string) (model.Project, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return model.Project{}, err
	}
	p, ok := snap.Project(id)
	if !ok {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// Create validates and inserts a project. New projects get the current
// time in milliseconds as display order, so they sort first.
func (s *PortfolioService) Create(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	if err := newValidationError(in.Validate()); err != nil {
		return model.Project{}, err
	}

	now := s.now()
	row, err := s.queries.CreateProject(ctx, store.CreateProjectParams{
		ID:            uuid.NewString(),
		ProjectParams: in.Params(),
		DisplayOrder:  now.UnixMilli(),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}

	s.invalidate(ctx)
	slog.Info("project created", "id", row.ID, "title", row.Title, "category", model.EventCategoryPortfolio)
	return model.ProjectFromStore(row), nil
}

// Update validates and saves a project, retrying while the database is busy.
func (s *PortfolioService) Update(ctx context.Context, id string, in model.ProjectInput) (model.Project, error) {
	if err := newValidationError(in.Validate()); err != nil {
		return model.Project{}, err
	}
	p, err := s.update(ctx, id, in.Params())
	if err != nil {
		return model.Project{}, err
	}
	slog.Info("project updated", "id", id, "category", model.EventCategoryPortfolio)
	return p, nil
}

func (s *PortfolioService) update(ctx context.Context, id string, params store.ProjectParams) (model.Project, error) {
	var row store.Project
	err := retryBusy(ctx, s.retry, "update project", func() error {
		var err error
		row, err = s.queries.UpdateProject(ctx, store.UpdateProjectParams{
			ID:            id,
			ProjectParams: params,
			UpdatedAt:     s.now(),
		})
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, err)
	}

	s.invalidate(ctx)
	return model.ProjectFromStore(row), nil
}

// Delete removes a project. Its stored images are left for the orphan sweep.
func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	n, err := s.queries.DeleteProject(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	s.invalidate(ctx)
	slog.Info("project deleted", "id", id, "category", model.EventCategoryPortfolio)
	return nil
}

// DeleteImage clears one optional image reference and saves the project.
// For the additional images index selects the entry. The stored object is
// then removed best-effort: failures are logged, not returned.
func (s *PortfolioService) DeleteImage(ctx context.Context, id, field string, index int) (model.Project, error) {
	row, err := s.queries.GetProject(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("loading project %s: %w", id, err)
	}

	p := model.ProjectFromStore(row)
	in := p.Input()

	var url string
	switch field {
	case model.ImageFieldAdditional:
		if index < 0 || index >= len(in.AdditionalImages) {
			return model.Project{}, newValidationError(map[string]string{"index": "no such image"})
		}
		url = in.AdditionalImages[index]
		in.AdditionalImages = model.RemoveItem(in.AdditionalImages, url)
	case model.ImageFieldBeforeImage2:
		url, in.BeforeImage2 = in.BeforeImage2, ""
	case model.ImageFieldAfterImage2:
		url, in.AfterImage2 = in.AfterImage2, ""
	default:
		return model.Project{}, newValidationError(map[string]string{"field": "image cannot be removed"})
	}

	updated, err := s.update(ctx, id, in.Params())
	if err != nil {
		return model.Project{}, err
	}

	if url != "" {
		s.removeObject(ctx, url)
	}
	slog.Info("project image removed", "id", id, "field", field, "category", model.EventCategoryPortfolio)
	return updated, nil
}

// removeObject deletes the stored object behind url unless another project
// still references it.
func (s *PortfolioService) removeObject(ctx context.Context, url string) {
	if s.bucket == nil {
		return
	}
	key, ok := s.bucket.KeyFromURL(url)
	if !ok {
		return
	}

	if snap, err := s.cache.Snapshot(ctx); err == nil {
		for _, p := range snap.Projects {
			if slices.Contains(p.Images(), url) {
				return
			}
		}
	}

	if err := s.bucket.Remove(ctx, key); err != nil {
		slog.Warn("could not delete image from storage", "key", key, "error", err, "category", model.EventCategoryMedia)
	}
}

// Reorder persists the given order. Each id gets base-index with base the
// current Unix time in milliseconds, so values decrease down the list.
// Rows are written one at a time; the first failure stops the loop and rows
// already written stay written.
func (s *PortfolioService) Reorder(ctx context.Context, ids []string) error {
	base := s.now().UnixMilli()
	defer s.invalidate(ctx)

	for i, id := range ids {
		order := base - int64(i)
		err := retryBusy(ctx, s.retry, "reorder project", func() error {
			n, err := s.queries.UpdateProjectOrder(ctx, id, order)
			if err == nil && n == 0 {
				return fmt.Errorf("project %s: %w", id, ErrNotFound)
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("reordering: saved %d of %d: %w", i, len(ids), err)
		}
	}

	slog.Info("projects reordered", "count", len(ids), "category", model.EventCategoryPortfolio)
	return nil
}

func (s *PortfolioService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate portfolio cache", "error", err, "category", model.EventCategoryCache)
	}
}
