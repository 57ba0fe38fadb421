// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ecovibe-go/internal/scheduler"
)

// RunJob handles POST /admin/jobs/{name}/run. The job runs before the
// redirect, so its outcome is in the flash message.
func (h *EventsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		flashError(w, r, h.renderer, redirectAdminEvents, "Background jobs are not running.")
		return
	}

	err := h.jobs.RunNow(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		flashError(w, r, h.renderer, redirectAdminEvents, "Unknown job \""+name+"\".")
	case err != nil:
		flashError(w, r, h.renderer, redirectAdminEvents, "Job \""+name+"\" failed: "+err.Error())
	default:
		slog.Info("job run manually", "job", name)
		flashSuccess(w, r, h.renderer, redirectAdminEvents, "Job \""+name+"\" finished.")
	}
}
