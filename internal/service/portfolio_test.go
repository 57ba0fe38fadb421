// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/storage"
)

func TestCreate_ValidatesRequiredFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.portfolio.Create(env.ctx, model.ProjectInput{Title: "Only a title"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	fields := FieldErrors(err)
	for _, f := range []string{"description", "category", "projectType", "beforeImage1", "afterImage1"} {
		assert.Contains(t, fields, f)
	}
	assert.NotContains(t, fields, "title")

	list, err := env.portfolio.List(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is saved on validation failure")
}

func TestCreate_AssignsIdentityAndOrder(t *testing.T) {
	env := newTestEnv(t)
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	env.portfolio.now = func() time.Time { return fixed }

	in := validInput("Kitchen")
	in.Tags = []string{"modern"}
	in.Duration = "  "
	p := env.create(t, in)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, fixed.UnixMilli(), p.DisplayOrder)
	assert.Equal(t, "", p.Duration)
	assert.Equal(t, []string{"modern"}, p.Tags)
	assert.NotNil(t, p.Materials)

	got, err := env.portfolio.Get(env.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", got.Title)
}

func TestGet_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.portfolio.Get(env.ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	p := env.create(t, validInput("Old"))

	in := p.Input()
	in.Title = "New"
	in.BeforeImage2 = "/b2.jpg"
	updated, err := env.portfolio.Update(env.ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "/b2.jpg", updated.BeforeImage2)
	assert.Equal(t, p.DisplayOrder, updated.DisplayOrder, "update keeps display order")

	cached, err := env.portfolio.Get(env.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", cached.Title, "cache is invalidated by writes")

	_, err = env.portfolio.Update(env.ctx, "missing", in)
	assert.True(t, errors.Is(err, ErrNotFound))

	in.AfterImage1 = ""
	_, err = env.portfolio.Update(env.ctx, p.ID, in)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	p := env.create(t, validInput("Gone"))

	require.NoError(t, env.portfolio.Delete(env.ctx, p.ID))
	_, err := env.portfolio.Get(env.ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(env.portfolio.Delete(env.ctx, p.ID), ErrNotFound))
}

func TestDeleteImage(t *testing.T) {
	env := newTestEnv(t)

	key := storage.NewKey(storage.NewBatch(), "jpg")
	require.NoError(t, env.bucket.Put(env.ctx, key, strings.NewReader("img")))
	extra := env.bucket.URL(key)

	in := validInput("Bath")
	in.AdditionalImages = []string{"/x.jpg", extra}
	in.AfterImage2 = "/a2.jpg"
	p := env.create(t, in)

	updated, err := env.portfolio.DeleteImage(env.ctx, p.ID, model.ImageFieldAdditional, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/x.jpg"}, updated.AdditionalImages)

	objects, err := env.bucket.List(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, objects, "stored object removed after the record is saved")

	updated, err = env.portfolio.DeleteImage(env.ctx, p.ID, model.ImageFieldAfterImage2, 0)
	require.NoError(t, err)
	assert.Equal(t, "", updated.AfterImage2)

	_, err = env.portfolio.DeleteImage(env.ctx, p.ID, model.ImageFieldAdditional, 5)
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = env.portfolio.DeleteImage(env.ctx, p.ID, "beforeImage1", 0)
	assert.True(t, errors.Is(err, ErrValidation), "required images cannot be removed")
	_, err = env.portfolio.DeleteImage(env.ctx, "missing", model.ImageFieldAfterImage2, 0)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteImage_KeepsObjectStillReferenced(t *testing.T) {
	env := newTestEnv(t)

	key := storage.NewKey(storage.NewBatch(), "jpg")
	require.NoError(t, env.bucket.Put(env.ctx, key, strings.NewReader("img")))
	shared := env.bucket.URL(key)

	a := validInput("A")
	a.AdditionalImages = []string{shared}
	pa := env.create(t, a)
	b := validInput("B")
	b.AdditionalImages = []string{shared}
	env.create(t, b)

	_, err := env.portfolio.DeleteImage(env.ctx, pa.ID, model.ImageFieldAdditional, 0)
	require.NoError(t, err)

	objects, err := env.bucket.List(env.ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestReorder(t *testing.T) {
	env := newTestEnv(t)
	a := env.create(t, validInput("A"))
	b := env.create(t, validInput("B"))
	c := env.create(t, validInput("C"))

	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	env.portfolio.now = func() time.Time { return fixed }

	require.NoError(t, env.portfolio.Reorder(env.ctx, []string{c.ID, a.ID, b.ID}))

	list, err := env.portfolio.List(env.ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	base := fixed.UnixMilli()
	assert.Equal(t, base, list[0].DisplayOrder)
	assert.Equal(t, base-1, list[1].DisplayOrder)
	assert.Equal(t, base-2, list[2].DisplayOrder)
}

func TestReorder_StopsAtFirstFailure(t *testing.T) {
	env := newTestEnv(t)
	a := env.create(t, validInput("A"))
	b := env.create(t, validInput("B"))

	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	env.portfolio.now = func() time.Time { return fixed }

	err := env.portfolio.Reorder(env.ctx, []string{a.ID, "missing", b.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	gotA, err := env.portfolio.Get(env.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, fixed.UnixMilli(), gotA.DisplayOrder, "rows before the failure stay written")

	gotB, err := env.portfolio.Get(env.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.DisplayOrder, gotB.DisplayOrder, "rows after the failure are untouched")
}

func TestReorder_HonoursCancellation(t *testing.T) {
	env := newTestEnv(t)
	a := env.create(t, validInput("A"))

	ctx, cancel := context.WithCancel(env.ctx)
	cancel()
	err := env.portfolio.Reorder(ctx, []string{a.ID})
	assert.Error(t, err)
}
