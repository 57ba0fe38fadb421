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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/service"
)

func newAdminRouter(e *testEnv) http.Handler {
	h := NewAdminHandler(e.portfolio, e.renderer)
	return e.adminRouter(func(r chi.Router) {
		r.Get("/admin", h.Dashboard)
		r.Post("/admin/projects/reorder", h.Reorder)
	})
}

func TestDashboard_RequiresLogin(t *testing.T) {
	e := newTestEnv(t)

	rec := serve(newAdminRouter(e), httptest.NewRequest(http.MethodGet, "/admin", nil), nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestDashboard_ListsAndFilters(t *testing.T) {
	e := newTestEnv(t)
	e.seedTerms(t)
	e.createProject(t, "Sunlit Kitchen", "kitchen", func(in *model.ProjectInput) { in.Tags = []string{"marble"} })
	e.createProject(t, "Spa Bath", "bathroom")
	router := newAdminRouter(e)
	cookie := e.loginCookie(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/admin", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sunlit Kitchen")
	assert.Contains(t, body, "Spa Bath")
	assert.Contains(t, body, "(2)")
	assert.Contains(t, body, testAdminEmail, "the admin nav shows who is logged in")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin?q=MARBLE", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sunlit Kitchen")
	assert.NotContains(t, rec.Body.String(), "Spa Bath")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin?category=bathroom&sort=title", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Sunlit Kitchen")
	assert.Contains(t, rec.Body.String(), `<option value="title" selected>`)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin?q=nothing-matches", nil), cookie)
	assert.Contains(t, rec.Body.String(), "No projects match.")
}

func TestDashboard_ReorderMode(t *testing.T) {
	e := newTestEnv(t)
	e.seedTerms(t)
	older := e.createProject(t, "Older", "kitchen")
	time.Sleep(2 * time.Millisecond) // distinct display orders
	newer := e.createProject(t, "Newer", "kitchen")

	rec := serve(newAdminRouter(e), httptest.NewRequest(http.MethodGet, "/admin?mode=reorder&q=older", nil), e.loginCookie(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/admin/projects/reorder"`)
	// Reorder mode ignores the search and lists everything in display order.
	newerAt := strings.Index(body, `value="`+newer.ID+`"`)
	olderAt := strings.Index(body, `value="`+older.ID+`"`)
	require.NotEqual(t, -1, newerAt)
	require.NotEqual(t, -1, olderAt)
	assert.Less(t, newerAt, olderAt)
}

func TestReorder_PersistsOrder(t *testing.T) {
	e := newTestEnv(t)
	e.seedTerms(t)
	a := e.createProject(t, "A", "kitchen")
	b := e.createProject(t, "B", "kitchen")
	c := e.createProject(t, "C", "kitchen")
	router := newAdminRouter(e)
	cookie := e.loginCookie(t)

	rec := serve(router, formRequest(http.MethodPost, "/admin/projects/reorder", url.Values{
		"ids": {a.ID, c.ID, b.ID},
	}), cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?sort=order", rec.Header().Get("Location"))
	assert.Contains(t, flashAfter(t, router, rec, cookie), "Project order saved.")

	projects, err := e.portfolio.List(context.Background())
	require.NoError(t, err)
	ordered := service.Query{Sort: service.SortOrder}.Apply(projects)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{ordered[0].ID, ordered[1].ID, ordered[2].ID})
}

func TestReorder_Errors(t *testing.T) {
	e := newTestEnv(t)
	e.seedTerms(t)
	a := e.createProject(t, "A", "kitchen")
	router := newAdminRouter(e)
	cookie := e.loginCookie(t)

	rec := serve(router, formRequest(http.MethodPost, "/admin/projects/reorder", url.Values{}), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?mode=reorder", rec.Header().Get("Location"))

	rec = serve(router, formRequest(http.MethodPost, "/admin/projects/reorder", url.Values{
		"ids": {a.ID, "missing"},
	}), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, flashAfter(t, router, rec, cookie), "Saving the order failed")

	// The rows before the failure keep their new order.
	p, err := e.portfolio.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.DisplayOrder, a.DisplayOrder)
}
