// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/olegiv/ecovibe-go/internal/imaging"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/service"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// imageUploader stores one uploaded file and returns its public URL.
type imageUploader interface {
	UploadFile(ctx context.Context, batch string, fh *multipart.FileHeader) (string, error)
}

// imageFields maps each single-image form field to its file input.
var imageFields = []struct {
	field string
	file  string
	set   func(*model.ProjectInput, string)
}{
	{"beforeImage1", "beforeImage1File", func(in *model.ProjectInput, u string) { in.BeforeImage1 = u }},
	{"afterImage1", "afterImage1File", func(in *model.ProjectInput, u string) { in.AfterImage1 = u }},
	{"beforeImage2", "beforeImage2File", func(in *model.ProjectInput, u string) { in.BeforeImage2 = u }},
	{"afterImage2", "afterImage2File", func(in *model.ProjectInput, u string) { in.AfterImage2 = u }},
}

// parseProjectForm reads the project form. Text fields come from the form
// values. A file chosen for an image field is uploaded under batch and
// replaces the kept URL; new additional files are appended. Upload problems
// are returned as field errors so the form can be shown again.
func parseProjectForm(r *http.Request, uploader imageUploader, batch string) (model.ProjectInput, map[string]string) {
	errs := make(map[string]string)

	in := model.ProjectInput{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		Category:         r.FormValue("category"),
		ProjectType:      r.FormValue("projectType"),
		BeforeImage1:     strings.TrimSpace(r.FormValue("beforeImage1")),
		AfterImage1:      strings.TrimSpace(r.FormValue("afterImage1")),
		BeforeImage2:     strings.TrimSpace(r.FormValue("beforeImage2")),
		AfterImage2:      strings.TrimSpace(r.FormValue("afterImage2")),
		Duration:         r.FormValue("duration"),
		Budget:           r.FormValue("budget"),
		IsHero:           r.FormValue("isHero") == "on" || r.FormValue("isHero") == "true",
		Tags:             editList(r, "tags", "addTag", "removeTag"),
		Materials:        editList(r, "materials", "addMaterial", "removeMaterial"),
		AdditionalImages: []string{},
	}
	for _, u := range r.Form["additionalImages"] {
		in.AdditionalImages = model.AddItem(in.AdditionalImages, u)
	}

	if r.MultipartForm == nil {
		return in, errs
	}
	files := r.MultipartForm.File

	for _, f := range imageFields {
		fhs := files[f.file]
		if len(fhs) == 0 || fhs[0].Size == 0 {
			continue
		}
		url, err := uploader.UploadFile(r.Context(), batch, fhs[0])
		if err != nil {
			errs[f.field] = uploadErrorMessage(err)
			slog.Warn("image upload failed", "field", f.field, "filename", fhs[0].Filename, "error", err)
			continue
		}
		f.set(&in, url)
	}

	for _, fh := range files["additionalFiles"] {
		if fh.Size == 0 {
			continue
		}
		url, err := uploader.UploadFile(r.Context(), batch, fh)
		if err != nil {
			errs["additionalImages"] = uploadErrorMessage(err)
			slog.Warn("image upload failed", "field", "additionalImages", "filename", fh.Filename, "error", err)
			continue
		}
		in.AdditionalImages = model.AddItem(in.AdditionalImages, url)
	}

	return in, errs
}

// editList parses the comma or newline separated list field, then applies
// single add and remove actions.
func editList(r *http.Request, listField, addField, removeField string) []string {
	list := model.ParseList(r.FormValue(listField))
	for _, v := range r.Form[addField] {
		list = model.AddItem(list, v)
	}
	for _, v := range r.Form[removeField] {
		list = model.RemoveItem(list, strings.TrimSpace(v))
	}
	return list
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		return "File is too large"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "Unsupported image format. Use JPEG, PNG, GIF or WebP"
	default:
		return "Upload failed, please try again"
	}
}

// mergeErrors copies src into dst without overwriting existing messages.
func mergeErrors(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}
