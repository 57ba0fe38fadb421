// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/internal/storage"
)

// FounderHandler edits the founder profile.
type FounderHandler struct {
	founder        *service.FounderService
	uploader       imageUploader
	renderer       *render.Renderer
	maxUploadBytes int64
}

// NewFounderHandler creates a new FounderHandler.
func NewFounderHandler(founder *service.FounderService, media *service.MediaService, renderer *render.Renderer, maxUploadBytes int64) *FounderHandler {
	return &FounderHandler{
		founder:        founder,
		uploader:       media,
		renderer:       renderer,
		maxUploadBytes: maxUploadBytes,
	}
}

// FounderFormView is the data of the founder form.
type FounderFormView struct {
	Input   service.FounderInput
	Exists  bool
	Errors  map[string]string
	Preview template.HTML
}

// Edit handles GET /admin/founder.
func (h *FounderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	view := FounderFormView{}

	f, err := h.founder.Get(r.Context())
	switch {
	case err == nil:
		view.Exists = true
		view.Input = service.FounderInput{Name: f.Name, PhotoURL: f.PhotoURL, Background: f.Background, MoreInfo: f.MoreInfo}
	case !isNotFound(err):
		renderError(w, r, h.renderer, "failed to load founder profile", err)
		return
	}

	h.render(w, r, http.StatusOK, view)
}

// Save handles POST /admin/founder. A chosen photo file replaces the
// photo URL.
func (h *FounderHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminFounder, "Invalid form data")
		return
	}

	view := FounderFormView{
		Exists: r.FormValue("exists") == "true",
		Input: service.FounderInput{
			Name:       r.FormValue("name"),
			PhotoURL:   r.FormValue("photoUrl"),
			Background: r.FormValue("background"),
			MoreInfo:   r.FormValue("moreInfo"),
		},
	}

	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["photoFile"]; len(fhs) > 0 && fhs[0].Size > 0 {
			url, err := h.uploader.UploadFile(r.Context(), storage.NewBatch(), fhs[0])
			if err != nil {
				slog.Warn("founder photo upload failed", "error", err, "category", model.EventCategoryMedia)
				view.Errors = map[string]string{"photoUrl": uploadErrorMessage(err)}
				h.render(w, r, http.StatusUnprocessableEntity, view)
				return
			}
			view.Input.PhotoURL = url
		}
	}

	if _, err := h.founder.Save(r.Context(), view.Input); err != nil {
		if fields := service.FieldErrors(err); fields != nil {
			view.Errors = fields
			h.render(w, r, http.StatusUnprocessableEntity, view)
			return
		}
		slog.Error("failed to save founder profile", "error", err, "category", model.EventCategoryPortfolio)
		flashError(w, r, h.renderer, redirectAdminFounder, "Saving the profile failed.")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdminFounder, "Founder profile saved.")
}

func (h *FounderHandler) render(w http.ResponseWriter, r *http.Request, status int, view FounderFormView) {
	view.Preview = service.RenderMarkdown(view.Input.Background + "\n\n" + view.Input.MoreInfo)
	renderPage(w, r, h.renderer, status, templateFounder, render.TemplateData{
		Title: "Founder Profile",
		Data:  view,
		Admin: middleware.CurrentAdmin(r),
	})
}
