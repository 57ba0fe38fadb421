// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/internal/storage"
)

// ProjectsHandler handles the project create, edit and delete routes.
type ProjectsHandler struct {
	portfolio      *service.PortfolioService
	uploader       imageUploader
	renderer       *render.Renderer
	maxUploadBytes int64
}

// NewProjectsHandler creates a new ProjectsHandler. maxUploadBytes caps the
// whole multipart request.
func NewProjectsHandler(portfolio *service.PortfolioService, media *service.MediaService, renderer *render.Renderer, maxUploadBytes int64) *ProjectsHandler {
	return &ProjectsHandler{
		portfolio:      portfolio,
		uploader:       media,
		renderer:       renderer,
		maxUploadBytes: maxUploadBytes,
	}
}

// ProjectFormView is the data of the create and edit forms.
type ProjectFormView struct {
	IsEdit        bool
	ID            string
	Action        string
	Input         model.ProjectInput
	TagsText      string
	MaterialsText string
	Errors        map[string]string
	Categories    []model.Term
	ProjectTypes  []model.Term
}

// HasSecondPair reports whether any image of the second pair is set.
func (v ProjectFormView) HasSecondPair() bool {
	return v.Input.BeforeImage2 != "" || v.Input.AfterImage2 != ""
}

// New handles GET /admin/projects/new.
func (h *ProjectsHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, ProjectFormView{
		Action: redirectAdminProjects,
		Input:  model.ProjectInput{Tags: []string{}, Materials: []string{}, AdditionalImages: []string{}},
	})
}

// Create handles POST /admin/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r, redirectAdminProjectsNew) {
		return
	}

	in, uploadErrs := parseProjectForm(r, h.uploader, storage.NewBatch())
	view := ProjectFormView{Action: redirectAdminProjects, Input: in}

	if len(uploadErrs) > 0 {
		view.Errors = mergeErrors(uploadErrs, in.Validate())
		h.renderForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	p, err := h.portfolio.Create(r.Context(), in)
	if err != nil {
		if fields := service.FieldErrors(err); fields != nil {
			view.Errors = fields
			h.renderForm(w, r, http.StatusUnprocessableEntity, view)
			return
		}
		slog.Error("failed to create project", "error", err, "category", model.EventCategoryPortfolio)
		view.Errors = map[string]string{"form": "Saving the project failed. Please try again."}
		h.renderForm(w, r, http.StatusInternalServerError, view)
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Project \""+p.Title+"\" created.")
}

// Edit handles GET /admin/projects/{id}/edit.
func (h *ProjectsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.portfolio.Get(r.Context(), id)
	if err != nil {
		h.handleLookupError(w, r, err)
		return
	}

	h.renderForm(w, r, http.StatusOK, ProjectFormView{
		IsEdit: true,
		ID:     p.ID,
		Action: redirectAdminProjects + "/" + p.ID,
		Input:  p.Input(),
	})
}

// Update handles PUT or POST /admin/projects/{id}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	editURL := redirectAdminProjects + "/" + id + RouteSuffixEdit

	if !h.parseMultipart(w, r, editURL) {
		return
	}

	in, uploadErrs := parseProjectForm(r, h.uploader, storage.NewBatch())
	view := ProjectFormView{IsEdit: true, ID: id, Action: redirectAdminProjects + "/" + id, Input: in}

	if len(uploadErrs) > 0 {
		view.Errors = mergeErrors(uploadErrs, in.Validate())
		h.renderForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	p, err := h.portfolio.Update(r.Context(), id, in)
	switch {
	case err == nil:
		flashSuccess(w, r, h.renderer, redirectAdmin, "Project \""+p.Title+"\" updated.")
	case service.FieldErrors(err) != nil:
		view.Errors = service.FieldErrors(err)
		h.renderForm(w, r, http.StatusUnprocessableEntity, view)
	case isNotFound(err):
		flashError(w, r, h.renderer, redirectAdmin, "Project not found.")
	default:
		slog.Error("failed to update project", "id", id, "error", err, "category", model.EventCategoryPortfolio)
		view.Errors = map[string]string{"form": "Saving the project failed. Please try again."}
		h.renderForm(w, r, http.StatusInternalServerError, view)
	}
}

// Delete handles DELETE /admin/projects/{id} and POST .../delete. Stored
// images are left for the orphan sweep.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.portfolio.Delete(r.Context(), id); err != nil {
		if isNotFound(err) {
			flashError(w, r, h.renderer, redirectAdmin, "Project not found.")
			return
		}
		slog.Error("failed to delete project", "id", id, "error", err, "category", model.EventCategoryPortfolio)
		flashError(w, r, h.renderer, redirectAdmin, "Deleting the project failed.")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Project deleted.")
}

// DeleteImage handles POST /admin/projects/{id}/images/delete with the
// image field and, for additional images, its index.
func (h *ProjectsHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	editURL := redirectAdminProjects + "/" + id + RouteSuffixEdit

	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	field := r.FormValue("field")
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		index = -1
	}
	if field != model.ImageFieldAdditional {
		index = 0
	}

	_, err = h.portfolio.DeleteImage(r.Context(), id, field, index)
	switch {
	case err == nil:
		flashSuccess(w, r, h.renderer, editURL, "Image removed.")
	case isNotFound(err):
		flashError(w, r, h.renderer, redirectAdmin, "Project not found.")
	case errors.Is(err, service.ErrValidation):
		flashError(w, r, h.renderer, editURL, "That image cannot be removed.")
	default:
		slog.Error("failed to remove project image", "id", id, "field", field, "error", err, "category", model.EventCategoryPortfolio)
		flashError(w, r, h.renderer, editURL, "Removing the image failed.")
	}
}

func (h *ProjectsHandler) parseMultipart(w http.ResponseWriter, r *http.Request, back string) bool {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			flashError(w, r, h.renderer, back, "The upload is too large.")
			return false
		}
		flashError(w, r, h.renderer, back, "Invalid form data")
		return false
	}
	return true
}

func (h *ProjectsHandler) handleLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if isNotFound(err) {
		flashError(w, r, h.renderer, redirectAdmin, "Project not found.")
		return
	}
	renderError(w, r, h.renderer, "failed to load project", err)
}

func (h *ProjectsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, view ProjectFormView) {
	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		renderError(w, r, h.renderer, "failed to load portfolio", err)
		return
	}
	view.Categories = snap.Categories
	view.ProjectTypes = snap.ProjectTypes
	view.TagsText = strings.Join(view.Input.Tags, ", ")
	view.MaterialsText = strings.Join(view.Input.Materials, ", ")

	title := "New Project"
	if view.IsEdit {
		title = "Edit Project"
	}
	renderPage(w, r, h.renderer, status, templateProjectForm, render.TemplateData{
		Title: title,
		Data:  view,
		Admin: middleware.CurrentAdmin(r),
	})
}
