// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/service"
)

// ListProjects handles GET /api/v1/projects. It accepts the dashboard
// filters ?q=, ?category= and ?sort=; the default order is display order.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.portfolio.List(r.Context())
	if err != nil {
		serverError(w, r, "Failed to list projects", err)
		return
	}

	q := r.URL.Query()
	sort := service.SortOrder
	if s := q.Get("sort"); s != "" {
		sort = service.ParseSort(s)
	}
	projects = service.Query{Search: q.Get("q"), Category: q.Get("category"), Sort: sort}.Apply(projects)

	respondList(w, projects)
}

// GetProject handles GET /api/v1/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.portfolio.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		notFound(w, "Project not found")
		return
	}
	if err != nil {
		serverError(w, r, "Failed to retrieve project", err)
		return
	}
	respond(w, p)
}

// GetFounder handles GET /api/v1/founder.
func (h *Handler) GetFounder(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		serverError(w, r, "Failed to retrieve founder", err)
		return
	}
	if snap.Founder == nil {
		notFound(w, "Founder profile not found")
		return
	}
	respond(w, snap.Founder)
}

// heroResponse wraps the project shown at the top of the home page.
type heroResponse struct {
	Project model.Project `json:"project"`
}

// GetHero handles GET /api/v1/hero.
func (h *Handler) GetHero(w http.ResponseWriter, r *http.Request) {
	projects, err := h.portfolio.List(r.Context())
	if err != nil {
		serverError(w, r, "Failed to list projects", err)
		return
	}
	p, ok := service.Hero(projects)
	if !ok {
		notFound(w, "No projects")
		return
	}
	respond(w, heroResponse{Project: p})
}
