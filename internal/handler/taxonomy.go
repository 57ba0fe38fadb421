// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
)

// TaxonomyHandler manages one term list: categories or project types.
type TaxonomyHandler struct {
	terms    *service.TaxonomyService
	renderer *render.Renderer
	basePath string
	title    string
}

// NewCategoriesHandler serves /admin/categories.
func NewCategoriesHandler(terms *service.TaxonomyService, renderer *render.Renderer) *TaxonomyHandler {
	return &TaxonomyHandler{terms: terms, renderer: renderer, basePath: redirectAdminCategories, title: "Categories"}
}

// NewProjectTypesHandler serves /admin/project-types.
func NewProjectTypesHandler(terms *service.TaxonomyService, renderer *render.Renderer) *TaxonomyHandler {
	return &TaxonomyHandler{terms: terms, renderer: renderer, basePath: redirectAdminProjectTypes, title: "Project Types"}
}

// TaxonomyView is the data of a term list page.
type TaxonomyView struct {
	Noun     string
	BasePath string
	Terms    []model.Term
	// Form holds the values of a rejected submission; EditID is set when
	// it was an edit.
	Form   model.Term
	EditID string
	Errors map[string]string
}

// List handles GET on the base path.
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, TaxonomyView{})
}

// Create handles POST on the base path.
func (h *TaxonomyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, h.basePath) {
		return
	}

	value, label := r.FormValue("value"), r.FormValue("label")
	term, err := h.terms.Create(r.Context(), value, label)
	if err != nil {
		h.handleWriteError(w, r, err, TaxonomyView{Form: model.Term{Value: value, Label: label}})
		return
	}

	flashSuccess(w, r, h.renderer, h.basePath, capitalize(h.terms.Noun())+" \""+term.Label+"\" created.")
}

// Update handles POST on {base}/{id}.
func (h *TaxonomyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, h.basePath) {
		return
	}

	value, label := r.FormValue("value"), r.FormValue("label")
	term, err := h.terms.Update(r.Context(), id, value, label)
	if err != nil {
		h.handleWriteError(w, r, err, TaxonomyView{EditID: id, Form: model.Term{ID: id, Value: value, Label: label}})
		return
	}

	flashSuccess(w, r, h.renderer, h.basePath, capitalize(h.terms.Noun())+" \""+term.Label+"\" updated.")
}

// Delete handles DELETE on {base}/{id} and POST on {base}/{id}/delete.
// Projects using the value keep it.
func (h *TaxonomyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.terms.Delete(r.Context(), id); err != nil {
		if isNotFound(err) {
			flashError(w, r, h.renderer, h.basePath, capitalize(h.terms.Noun())+" not found.")
			return
		}
		slog.Error("failed to delete term", "noun", h.terms.Noun(), "id", id, "error", err)
		flashError(w, r, h.renderer, h.basePath, "Deleting failed.")
		return
	}

	flashSuccess(w, r, h.renderer, h.basePath, capitalize(h.terms.Noun())+" deleted.")
}

func (h *TaxonomyHandler) handleWriteError(w http.ResponseWriter, r *http.Request, err error, view TaxonomyView) {
	if fields := service.FieldErrors(err); fields != nil {
		view.Errors = fields
		h.render(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	if isNotFound(err) {
		flashError(w, r, h.renderer, h.basePath, capitalize(h.terms.Noun())+" not found.")
		return
	}
	slog.Error("failed to save term", "noun", h.terms.Noun(), "error", err)
	flashError(w, r, h.renderer, h.basePath, "Saving failed.")
}

func (h *TaxonomyHandler) render(w http.ResponseWriter, r *http.Request, status int, view TaxonomyView) {
	terms, err := h.terms.List(r.Context())
	if err != nil {
		renderError(w, r, h.renderer, "failed to list terms", err)
		return
	}
	view.Terms = terms
	view.Noun = h.terms.Noun()
	view.BasePath = h.basePath

	renderPage(w, r, h.renderer, status, templateTaxonomy, render.TemplateData{
		Title: h.title,
		Data:  view,
		Admin: middleware.CurrentAdmin(r),
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
