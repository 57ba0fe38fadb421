// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
)

// AdminHandler serves the dashboard with the project list.
type AdminHandler struct {
	portfolio *service.PortfolioService
	renderer  *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(portfolio *service.PortfolioService, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		portfolio: portfolio,
		renderer:  renderer,
	}
}

// DashboardRow is one project in the admin list.
type DashboardRow struct {
	model.Project
	CategoryLabel string
	TypeLabel     string
}

// DashboardView is the data of the admin dashboard.
type DashboardView struct {
	Rows        []DashboardRow
	Total       int
	Search      string
	Category    string
	Sort        service.Sort
	SortOptions []struct {
		Value service.Sort
		Label string
	}
	Categories  []model.Term
	ReorderMode bool
}

// Dashboard handles GET /admin. It supports ?q=, ?category=, ?sort= and
// ?mode=reorder, which lists every project in display order for dragging.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		renderError(w, r, h.renderer, "failed to load portfolio", err)
		return
	}

	q := r.URL.Query()
	query := service.Query{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Sort:     service.ParseSort(q.Get("sort")),
	}
	if query.Category == "" {
		query.Category = service.CategoryAll
	}

	view := DashboardView{
		Total:       len(snap.Projects),
		Search:      query.Search,
		Category:    query.Category,
		Sort:        query.Sort,
		SortOptions: service.SortOptions,
		Categories:  snap.Categories,
		ReorderMode: q.Get("mode") == "reorder",
	}
	if view.ReorderMode {
		query = service.Query{Sort: service.SortOrder}
	}

	for _, p := range query.Apply(snap.Projects) {
		view.Rows = append(view.Rows, DashboardRow{
			Project:       p,
			CategoryLabel: model.LabelFor(snap.Categories, p.Category),
			TypeLabel:     model.LabelFor(snap.ProjectTypes, p.ProjectType),
		})
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateDashboard, render.TemplateData{
		Title: "Projects",
		Data:  view,
		Admin: middleware.CurrentAdmin(r),
	})
}

// Reorder handles POST /admin/projects/reorder with the ids in their new
// order. Rows are written one by one; a failure keeps what was written.
func (h *AdminHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	back := redirectAdmin + "?mode=reorder"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	ids := r.Form["ids"]
	if len(ids) == 0 {
		flashError(w, r, h.renderer, back, "Nothing to reorder.")
		return
	}

	if err := h.portfolio.Reorder(r.Context(), ids); err != nil {
		slog.Error("failed to reorder projects", "error", err, "category", model.EventCategoryPortfolio)
		flashError(w, r, h.renderer, back, fmt.Sprintf("Saving the order failed: %v", err))
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin+"?sort=order", "Project order saved.")
}
