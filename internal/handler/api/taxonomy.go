// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ecovibe-go/internal/model"
)

// ListCategories handles GET /api/v1/categories, sorted by label.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.listTerms(w, r, func(c, _ []model.Term) []model.Term { return c })
}

// ListProjectTypes handles GET /api/v1/project-types, sorted by label.
func (h *Handler) ListProjectTypes(w http.ResponseWriter, r *http.Request) {
	h.listTerms(w, r, func(_, t []model.Term) []model.Term { return t })
}

func (h *Handler) listTerms(w http.ResponseWriter, r *http.Request, pick func(categories, types []model.Term) []model.Term) {
	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		serverError(w, r, "Failed to list terms", err)
		return
	}
	respondList(w, pick(snap.Categories, snap.ProjectTypes))
}
