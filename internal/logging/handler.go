// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that copies warnings and errors
// into the events table shown on the admin event log page.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/store"
)

// Attribute keys with a column of their own instead of a metadata entry.
const (
	keyCategory = "category"
	keyUserID   = "user_id"
	keyPath     = "path"
)

// categoryRules guess the category of a record logged without one. The
// first rule with a keyword in the lowercased message wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{model.EventCategoryAuth, []string{"auth", "login", "logout"}},
	{model.EventCategoryMedia, []string{"image", "upload", "storage"}},
	{model.EventCategoryPortfolio, []string{"project", "founder", "categor"}},
	{model.EventCategoryCache, []string{"cache", "redis"}},
}

// EventLogHandler passes records to inner and also stores those at or
// above level as events.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level

	prefix string // dotted group path of later attrs, "" at the top
	attrs  map[string]string
}

// NewEventLogHandler stores WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, queries: store.New(db), level: level}
}

func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.inner.Enabled(ctx, r.Level) {
		err = h.inner.Handle(ctx, r)
	}
	if r.Level >= h.level {
		h.store(ctx, r)
	}
	return err
}

func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		flatten(c.attrs, c.prefix, a)
	}
	return c
}

func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.inner = h.inner.WithGroup(name)
	c.prefix = h.prefix + name + "."
	return c
}

func (h *EventLogHandler) clone() *EventLogHandler {
	c := *h
	c.attrs = make(map[string]string, len(h.attrs))
	for k, v := range h.attrs {
		c.attrs[k] = v
	}
	return &c
}

// flatten writes a into m, spelling nested groups as dotted keys.
func flatten(m map[string]string, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, g := range v.Group() {
			flatten(m, prefix, g)
		}
		return
	}
	if a.Key == "" {
		return
	}
	m[prefix+a.Key] = v.String()
}

// store writes the record as an event. It runs detached from ctx so an
// event survives the cancelled request that logged it, and it drops
// failures because logging them would recurse.
func (h *EventLogHandler) store(ctx context.Context, r slog.Record) {
	meta := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		meta[k] = v
	}

	var userID sql.NullInt64
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == keyUserID && h.prefix == "" {
			if id, ok := a.Value.Resolve().Any().(int64); ok {
				userID = sql.NullInt64{Int64: id, Valid: true}
				return true
			}
		}
		flatten(meta, h.prefix, a)
		return true
	})

	category := meta[keyCategory]
	delete(meta, keyCategory)
	if category == "" {
		category = inferCategory(r.Message)
	}
	if _, ok := meta[keyPath]; !ok {
		if p := middleware.PathFromContext(ctx); p != "" {
			meta[keyPath] = p
		}
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	_, _ = h.queries.CreateEvent(context.WithoutCancel(ctx), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: r.Time,
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.category
			}
		}
	}
	return model.EventCategorySystem
}
