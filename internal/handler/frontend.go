// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/internal/slider"
)

// FrontendHandler serves the public pages.
type FrontendHandler struct {
	portfolio *service.PortfolioService
	renderer  *render.Renderer
	contact   service.Contact
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(portfolio *service.PortfolioService, renderer *render.Renderer, contact service.Contact) *FrontendHandler {
	return &FrontendHandler{
		portfolio: portfolio,
		renderer:  renderer,
		contact:   contact,
	}
}

// ProjectCard is a project with its display labels resolved.
type ProjectCard struct {
	model.Project
	CategoryLabel string
	TypeLabel     string
	Comparison    slider.View
}

// FounderView is the founder profile with Markdown rendered.
type FounderView struct {
	Name       string
	PhotoURL   string
	Background template.HTML
	MoreInfo   template.HTML
}

// HomeView is the data of the home page.
type HomeView struct {
	Featured   []ProjectCard
	Projects   []ProjectCard
	Categories []service.GalleryCategory
	Selected   string
	Founder    *FounderView
	Contact    service.Contact
}

// ShareLink is a Pinterest link for one image.
type ShareLink struct {
	Image string
	URL   string
}

// Slideshow is the no-script gallery of additional images. Index wraps in
// both directions.
type Slideshow struct {
	Images []string
	Index  int
	Prev   int
	Next   int
}

// Current returns the image at Index.
func (s Slideshow) Current() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[s.Index]
}

// ProjectView is the data of the project detail page.
type ProjectView struct {
	ProjectCard
	SecondComparison *slider.View
	Slideshow        Slideshow
	Shares           []ShareLink
	Contact          service.Contact
}

func newProjectCard(p model.Project, snap *cache.Snapshot, position float64) ProjectCard {
	return ProjectCard{
		Project:       p,
		CategoryLabel: model.LabelFor(snap.Categories, p.Category),
		TypeLabel:     model.LabelFor(snap.ProjectTypes, p.ProjectType),
		Comparison:    slider.NewView(p.BeforeImage1, p.AfterImage1, position),
	}
}

func newFounderView(f *model.Founder) *FounderView {
	if f == nil {
		return nil
	}
	return &FounderView{
		Name:       f.Name,
		PhotoURL:   f.PhotoURL,
		Background: service.RenderMarkdown(f.Background),
		MoreInfo:   service.RenderMarkdown(f.MoreInfo),
	}
}

// Home handles GET / with the hero, gallery, founder and contact sections.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		renderError(w, r, h.renderer, "failed to load portfolio", err)
		return
	}

	selected := r.URL.Query().Get("category")
	if selected == "" {
		selected = service.CategoryAll
	}

	ordered := service.Query{Sort: service.SortOrder}.Apply(snap.Projects)

	view := HomeView{
		Categories: service.GalleryCategories(ordered, snap.Categories),
		Selected:   selected,
		Founder:    newFounderView(snap.Founder),
		Contact:    h.contact,
	}

	for _, p := range service.Featured(snap.Projects, service.FeaturedSlots) {
		view.Featured = append(view.Featured, newProjectCard(p, snap, slider.DefaultPosition))
	}

	for _, p := range (service.Query{Category: selected, Sort: service.SortOrder}).Apply(snap.Projects) {
		view.Projects = append(view.Projects, newProjectCard(p, snap, slider.DefaultPosition))
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateHome, render.TemplateData{
		Title:       "Interior Design Portfolio",
		Description: "Before and after interior design projects by EcoVibe Design.",
		Data:        view,
	})
}

// Project handles GET /project/{id}. The slider position comes from ?pos=
// and the additional image shown from ?img=.
func (h *FrontendHandler) Project(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.portfolio.Snapshot(r.Context())
	if err != nil {
		renderError(w, r, h.renderer, "failed to load portfolio", err)
		return
	}

	p, ok := snap.Project(id)
	if !ok {
		h.notFound(w, r)
		return
	}

	position := slider.ParsePosition(r.URL.Query().Get("pos"))
	view := ProjectView{
		ProjectCard: newProjectCard(p, snap, position),
		Slideshow:   newSlideshow(p.AdditionalImages, r.URL.Query().Get("img")),
		Contact:     h.contact,
	}
	if p.HasSecondPair() {
		second := slider.NewView(p.BeforeImage2, p.AfterImage2, position)
		view.SecondComparison = &second
	}

	pageURL := absoluteURL(r, r.URL.Path)
	for _, img := range p.Images() {
		view.Shares = append(view.Shares, ShareLink{
			Image: img,
			URL:   service.PinterestShareURL(pageURL, absoluteURL(r, img), p.Title),
		})
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateProject, render.TemplateData{
		Title:       p.Title,
		Description: p.Description,
		Data:        view,
	})
}

// NotFound renders the 404 page for unknown routes.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusNotFound, templateNotFound, render.TemplateData{
		Title: "Page Not Found",
		Data:  "The page you are looking for does not exist.",
	})
}

func (h *FrontendHandler) notFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusNotFound, templateNotFound, render.TemplateData{
		Title: "Project Not Found",
		Data:  "The project you're looking for doesn't exist.",
	})
}

// newSlideshow parses the image index, wrapping out-of-range values.
func newSlideshow(images []string, raw string) Slideshow {
	n := len(images)
	if n == 0 {
		return Slideshow{}
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		i = 0
	}
	i = ((i % n) + n) % n
	return Slideshow{
		Images: images,
		Index:  i,
		Prev:   (i - 1 + n) % n,
		Next:   (i + 1) % n,
	}
}

// absoluteURL resolves a site-relative path against the request host.
func absoluteURL(r *http.Request, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return scheme + "://" + r.Host + p
}

// isNotFound reports whether err means the record is gone.
func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound)
}
