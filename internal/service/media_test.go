// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/imaging"
	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/testutil"
)

func TestMediaUpload(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMediaService(env.db, env.bucket, 0)
	batch := storage.NewBatch()

	url, err := svc.Upload(env.ctx, batch, bytes.NewReader(testutil.JPEG(t, 40, 30)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/project-images/projects/"+batch+"/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	objects, err := env.bucket.List(env.ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestMediaUpload_Rejects(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMediaService(env.db, env.bucket, 1024)

	_, err := svc.Upload(env.ctx, "b", strings.NewReader("plain text, not an image"))
	assert.True(t, errors.Is(err, imaging.ErrUnsupportedFormat))

	_, err = svc.Upload(env.ctx, "b", bytes.NewReader(make([]byte, 2048)))
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestSweepOrphans(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMediaService(env.db, env.bucket, 0)

	put := func(age time.Duration) string {
		key := storage.NewKey(storage.NewBatch(), "jpg")
		require.NoError(t, env.bucket.Put(env.ctx, key, strings.NewReader("x")))
		old := time.Now().Add(-age)
		file := filepath.Join(env.bucketDir, filepath.FromSlash(key))
		require.NoError(t, os.Chtimes(file, old, old))
		return key
	}

	usedByProject := put(48 * time.Hour)
	usedByFounder := put(48 * time.Hour)
	orphanOld := put(48 * time.Hour)
	orphanFresh := put(time.Minute)

	in := validInput("Kept")
	in.AdditionalImages = []string{env.bucket.URL(usedByProject)}
	env.create(t, in)

	_, err := NewFounderService(env.db, env.cache).Save(env.ctx, FounderInput{Name: "F", PhotoURL: env.bucket.URL(usedByFounder)})
	require.NoError(t, err)

	removed, err := svc.SweepOrphans(env.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	objects, err := env.bucket.List(env.ctx)
	require.NoError(t, err)
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	assert.ElementsMatch(t, []string{usedByProject, usedByFounder, orphanFresh}, keys)
	assert.NotContains(t, keys, orphanOld)
}
