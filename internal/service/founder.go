// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/store"
)

// FounderService reads and saves the founder profile singleton.
type FounderService struct {
	queries *store.Queries
	cache   *cache.Portfolio
}

// NewFounderService creates a new FounderService.
func NewFounderService(db *sql.DB, readCache *cache.Portfolio) *FounderService {
	return &FounderService{queries: store.New(db), cache: readCache}
}

// Get returns the profile or ErrNotFound when none was saved yet.
func (s *FounderService) Get(ctx context.Context) (model.Founder, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return model.Founder{}, err
	}
	if snap.Founder == nil {
		return model.Founder{}, fmt.Errorf("founder: %w", ErrNotFound)
	}
	return *snap.Founder, nil
}

// FounderInput holds the editable founder fields.
type FounderInput struct {
	Name       string
	PhotoURL   string
	Background string
	MoreInfo   string
}

// Save creates the profile on first use and updates it afterwards.
func (s *FounderService) Save(ctx context.Context, in FounderInput) (model.Founder, error) {
	params := store.FounderParams{
		Name:       strings.TrimSpace(in.Name),
		PhotoUrl:   strings.TrimSpace(in.PhotoURL),
		Background: strings.TrimSpace(in.Background),
		MoreInfo:   strings.TrimSpace(in.MoreInfo),
	}
	if params.Name == "" {
		return model.Founder{}, newValidationError(map[string]string{"name": "Name is required"})
	}

	now := time.Now()
	existing, err := s.queries.GetFounder(ctx)
	var row store.Founder
	switch {
	case errors.Is(err, sql.ErrNoRows):
		row, err = s.queries.CreateFounder(ctx, uuid.NewString(), params, now)
	case err == nil:
		row, err = s.queries.UpdateFounder(ctx, existing.ID, params, now)
	}
	if err != nil {
		return model.Founder{}, fmt.Errorf("saving founder: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate portfolio cache", "error", err, "category", model.EventCategoryCache)
	}
	slog.Info("founder profile saved", "category", model.EventCategoryPortfolio)
	return model.FounderFromStore(row), nil
}

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	sanitize = bluemonday.UGCPolicy()
)

// RenderMarkdown converts founder text to sanitized HTML. Plain text
// paragraphs come out as <p> blocks.
func RenderMarkdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitize.SanitizeBytes(buf.Bytes()))
}
