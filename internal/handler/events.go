// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/scheduler"
	"github.com/olegiv/ecovibe-go/internal/service"
)

// jobRunner is the part of the scheduler the admin pages use.
type jobRunner interface {
	Jobs() []scheduler.JobInfo
	RunNow(name string) error
}

// EventsHandler handles event log viewing routes and the background job
// list shown next to it.
type EventsHandler struct {
	events   *service.EventService
	jobs     jobRunner
	renderer *render.Renderer
}

// NewEventsHandler creates a new EventsHandler. jobs may be nil.
func NewEventsHandler(events *service.EventService, jobs jobRunner, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		events:   events,
		jobs:     jobs,
		renderer: renderer,
	}
}

// EventRow is an event prepared for display. Long details collapse.
type EventRow struct {
	service.Event
	Details     string
	DetailsLong bool
}

const collapseDetailsOver = 80

func newEventRow(e service.Event) EventRow {
	d := formatMetadata(e.Metadata)
	return EventRow{Event: e, Details: d, DetailsLong: len(d) > collapseDetailsOver}
}

// formatMetadata renders metadata as "key: value" pairs in key order.
// Values other than scalars are shown as JSON.
func formatMetadata(data map[string]any) string {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(data)) {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(metadataValue(data[k]))
	}
	return b.String()
}

func metadataValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(js)
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events     []EventRow
	Level      string
	Category   string
	Levels     []string
	Categories []string
	Jobs       []scheduler.JobInfo
}

// List handles GET /admin/events. It shows the newest events, optionally
// filtered by ?level= and ?category=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	category := r.URL.Query().Get("category")

	events, err := h.events.ListRecent(r.Context(), service.DefaultEventListLimit)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	data := EventsListData{
		Level:      level,
		Category:   category,
		Levels:     []string{model.EventLevelInfo, model.EventLevelWarning, model.EventLevelError},
		Categories: []string{model.EventCategoryAuth, model.EventCategoryPortfolio, model.EventCategoryMedia, model.EventCategoryCache, model.EventCategorySystem},
	}
	if h.jobs != nil {
		data.Jobs = h.jobs.Jobs()
	}

	for _, e := range events {
		if matches(level, e.Level) && matches(category, e.Category) {
			data.Events = append(data.Events, newEventRow(e))
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateEvents, render.TemplateData{
		Title: "Event Log",
		Data:  data,
		Admin: middleware.CurrentAdmin(r),
	})
}

// matches reports whether an empty or equal filter admits v.
func matches(filter, v string) bool {
	return filter == "" || filter == v
}
