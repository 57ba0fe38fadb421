// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/testutil"
)

func newFounderRouter(e *testEnv) http.Handler {
	h := NewFounderHandler(e.founder, e.media, e.renderer, 10<<20)
	return e.adminRouter(func(r chi.Router) {
		r.Get("/admin/founder", h.Edit)
		r.Post("/admin/founder", h.Save)
	})
}

func TestFounder_EditEmpty(t *testing.T) {
	e := newTestEnv(t)

	rec := serve(newFounderRouter(e), httptest.NewRequest(http.MethodGet, "/admin/founder", nil), e.loginCookie(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No profile yet.")
}

func TestFounder_SaveCreatesThenUpdates(t *testing.T) {
	e := newTestEnv(t)
	router := newFounderRouter(e)
	cookie := e.loginCookie(t)
	ctx := context.Background()

	rec := serve(router, formRequest(http.MethodPost, "/admin/founder", url.Values{
		"name":       {"Shabnam Rumpf"},
		"photoUrl":   {"https://images.example.com/shabnam.jpg"},
		"background": {"Twenty years of **sustainable** design."},
	}), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	body := flashAfter(t, router, rec, cookie)
	assert.Contains(t, body, "Founder profile saved.")
	assert.Contains(t, body, "<strong>sustainable</strong>", "the preview renders Markdown")

	first, err := e.founder.Get(ctx)
	require.NoError(t, err)

	rec = serve(router, formRequest(http.MethodPost, "/admin/founder", url.Values{
		"name":       {"Shabnam Rumpf"},
		"background": {"Updated."},
		"moreInfo":   {"<script>alert(1)</script>Certified."},
		"exists":     {"true"},
	}), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	second, err := e.founder.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "there is only ever one profile")
	assert.Equal(t, "Updated.", second.Background)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin/founder", nil), cookie)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestFounder_RequiresName(t *testing.T) {
	e := newTestEnv(t)

	rec := serve(newFounderRouter(e), formRequest(http.MethodPost, "/admin/founder", url.Values{
		"background": {"Kept text"},
	}), e.loginCookie(t))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name is required")
	assert.Contains(t, rec.Body.String(), "Kept text")
}

func TestFounder_PhotoUpload(t *testing.T) {
	e := newTestEnv(t)

	req := multipartRequest(t, "/admin/founder", url.Values{
		"name":       {"Shabnam Rumpf"},
		"background": {"Bio"},
	}, map[string][]byte{"photoFile": testutil.JPEG(t, 40, 40)})

	rec := serve(newFounderRouter(e), req, e.loginCookie(t))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	f, err := e.founder.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.PhotoURL, storage.URLPrefix+storage.ProjectImages+"/"), f.PhotoURL)
}
