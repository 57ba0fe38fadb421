// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/store"
	"github.com/olegiv/ecovibe-go/internal/testutil"
)

type testEnv struct {
	db        *sql.DB
	cache     *cache.Portfolio
	bucket    *storage.LocalBucket
	bucketDir string
	portfolio *PortfolioService
	ctx       context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	mem := cache.NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	rc := cache.NewPortfolio(mem, store.New(db), time.Hour)

	root := t.TempDir()
	bucket, err := storage.NewLocal(root, storage.ProjectImages)
	require.NoError(t, err)

	ps := NewPortfolioService(db, rc, bucket)
	ps.SetRetryPolicy(RetryPolicy{Attempts: 3, Base: time.Millisecond})

	return &testEnv{db: db, cache: rc, bucket: bucket, bucketDir: filepath.Join(root, storage.ProjectImages), portfolio: ps, ctx: context.Background()}
}

func validInput(title string) model.ProjectInput {
	return model.ProjectInput{
		Title:        title,
		Description:  "A calm, bright " + title,
		Category:     "kitchen",
		ProjectType:  "renovation",
		BeforeImage1: "/uploads/project-images/projects/b/1-a.jpg",
		AfterImage1:  "/uploads/project-images/projects/b/1-b.jpg",
	}
}

func (e *testEnv) create(t *testing.T, in model.ProjectInput) model.Project {
	t.Helper()
	p, err := e.portfolio.Create(e.ctx, in)
	require.NoError(t, err)
	return p
}
