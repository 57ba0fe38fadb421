// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and executes them with
// flash messages taken from the session.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ecovibe-go/internal/store"
)

// Flash types understood by the layouts.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// layoutSets maps a template directory to the layouts its pages extend.
var layoutSets = []struct {
	dir     string
	layouts []string
}{
	{"pages", []string{"layouts/base.html"}},
	{"auth", []string{"layouts/base.html"}},
	{"admin", []string{"layouts/base.html", "layouts/admin.html"}},
}

var buffers = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// Renderer executes page templates by name, e.g. "admin/dashboard".
type Renderer struct {
	pages    map[string]*template.Template
	sessions *scs.SessionManager
	siteName string
}

type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	SiteName       string
}

// New parses every page once. Pages of a directory share a parsed base of
// their layouts and the partials, cloned per page so that each page can
// define its own "content".
func New(cfg Config) (*Renderer, error) {
	partials, err := fs.Glob(cfg.TemplatesFS, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing partials: %w", err)
	}

	r := &Renderer{
		pages:    make(map[string]*template.Template),
		sessions: cfg.SessionManager,
		siteName: cfg.SiteName,
	}
	for _, set := range layoutSets {
		pages, err := fs.Glob(cfg.TemplatesFS, set.dir+"/*.html")
		if err != nil {
			return nil, fmt.Errorf("listing %s templates: %w", set.dir, err)
		}
		if len(pages) == 0 {
			continue
		}

		base, err := template.New("").Funcs(templateFuncs()).
			ParseFS(cfg.TemplatesFS, slices.Concat(set.layouts, partials)...)
		if err != nil {
			return nil, fmt.Errorf("parsing %s layouts: %w", set.dir, err)
		}
		for _, page := range pages {
			name := set.dir + "/" + strings.TrimSuffix(path.Base(page), ".html")
			tmpl, err := template.Must(base.Clone()).ParseFS(cfg.TemplatesFS, page)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.pages[name] = tmpl
		}
	}
	return r, nil
}

// Has reports whether a page called name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// TemplateData is the dot of every page.
type TemplateData struct {
	Title       string
	Description string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	SiteName    string
	// Admin is the logged-in user on admin pages.
	Admin *store.User
}

func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus executes the page into a buffer first so a template error
// still leaves the response unwritten for the caller's error page.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	if data.SiteName == "" {
		data.SiteName = r.siteName
	}
	if msg, kind := r.popFlash(req); msg != "" {
		data.Flash, data.FlashType = msg, kind
	}

	buf := buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer buffers.Put(buf)

	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("writing response failed", "template", name, "error", err)
	}
	return nil
}

// SetFlash queues a message for the next rendered page of this session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessions == nil {
		return
	}
	r.sessions.Put(req.Context(), flashKey, message)
	r.sessions.Put(req.Context(), flashTypeKey, flashType)
}

func (r *Renderer) popFlash(req *http.Request) (message, flashType string) {
	if r.sessions == nil {
		return "", ""
	}
	message = r.sessions.PopString(req.Context(), flashKey)
	if message == "" {
		return "", ""
	}
	flashType = r.sessions.PopString(req.Context(), flashTypeKey)
	if flashType == "" {
		flashType = FlashInfo
	}
	return message, flashType
}
