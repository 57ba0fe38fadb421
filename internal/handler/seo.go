// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/olegiv/ecovibe-go/internal/seo"
	"github.com/olegiv/ecovibe-go/internal/service"
)

// SEOHandler serves robots.txt and sitemap.xml.
type SEOHandler struct {
	portfolio   *service.PortfolioService
	disallowAll bool
}

// NewSEOHandler creates a new SEOHandler. disallowAll hides the whole
// site from crawlers, which development instances use.
func NewSEOHandler(portfolio *service.PortfolioService, disallowAll bool) *SEOHandler {
	return &SEOHandler{portfolio: portfolio, disallowAll: disallowAll}
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	content := seo.NewRobotsBuilder(seo.RobotsConfig{
		SiteURL:     absoluteURL(r, "/"),
		DisallowAll: h.disallowAll,
	}).Build()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(content))
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load portfolio for sitemap", "error", err)
		return
	}

	ordered := service.Query{Sort: service.SortOrder}.Apply(snap.Projects)
	projects := make([]seo.SitemapProject, 0, len(ordered))
	for _, p := range ordered {
		projects = append(projects, seo.SitemapProject{ID: p.ID, UpdatedAt: p.UpdatedAt})
	}
	var categories []string
	for _, c := range service.GalleryCategories(ordered, snap.Categories) {
		if c.Value != service.CategoryAll {
			categories = append(categories, c.Value)
		}
	}

	out, err := seo.GenerateSitemap(strings.TrimSuffix(absoluteURL(r, "/"), "/"), projects, categories)
	if err != nil {
		logAndInternalError(w, "failed to build sitemap", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}
