// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/store"
)

const snapshotKey = "portfolio:snapshot"

// Snapshot is everything the public pages render from.
type Snapshot struct {
	Projects     []model.Project `json:"projects"`
	Categories   []model.Term    `json:"categories"`
	ProjectTypes []model.Term    `json:"projectTypes"`
	Founder      *model.Founder  `json:"founder,omitempty"`
	LoadedAt     time.Time       `json:"loadedAt"`
}

// Project returns the project with the given id.
func (s *Snapshot) Project(id string) (model.Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

// Portfolio is the read cache of portfolio data. It has no conflict
// resolution: writers call Invalidate and the next reader reloads.
type Portfolio struct {
	queries *store.Queries
	typed   *TypedCache[Snapshot]
}

// NewPortfolio builds the read cache on top of any Cacher backend.
func NewPortfolio(backend Cacher, queries *store.Queries, ttl time.Duration) *Portfolio {
	return &Portfolio{
		queries: queries,
		typed:   NewTypedCache[Snapshot](backend, ttl),
	}
}

// Snapshot returns the cached snapshot, loading it on a miss. Concurrent
// misses share one load.
func (p *Portfolio) Snapshot(ctx context.Context) (*Snapshot, error) {
	return p.typed.GetOrSet(ctx, snapshotKey, p.load)
}

// Invalidate drops the snapshot.
func (p *Portfolio) Invalidate(ctx context.Context) error {
	return p.typed.Delete(ctx, snapshotKey)
}

// load reads the four collections concurrently. They do not depend on each
// other; any single failure fails the whole load.
func (p *Portfolio) load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{LoadedAt: time.Now()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := p.queries.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("loading projects: %w", err)
		}
		snap.Projects = model.ProjectsFromStore(rows)
		return nil
	})

	g.Go(func() error {
		rows, err := p.queries.ListTerms(gctx, store.TaxonomyCategories)
		if err != nil {
			return fmt.Errorf("loading categories: %w", err)
		}
		snap.Categories = model.TermsFromStore(rows)
		model.SortTerms(snap.Categories)
		return nil
	})

	g.Go(func() error {
		rows, err := p.queries.ListTerms(gctx, store.TaxonomyProjectTypes)
		if err != nil {
			return fmt.Errorf("loading project types: %w", err)
		}
		snap.ProjectTypes = model.TermsFromStore(rows)
		model.SortTerms(snap.ProjectTypes)
		return nil
	})

	g.Go(func() error {
		row, err := p.queries.GetFounder(gctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("loading founder: %w", err)
		}
		f := model.FounderFromStore(row)
		snap.Founder = &f
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
