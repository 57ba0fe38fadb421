// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/handler"
	"github.com/olegiv/ecovibe-go/internal/handler/api"
	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/scheduler"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/web"
)

// app carries everything the router needs.
type app struct {
	db             *sql.DB
	sessions       *scs.SessionManager
	renderer       *render.Renderer
	loginProtect   *middleware.LoginProtection
	cache          cache.Cacher
	cacheBackend   string
	portfolio      *service.PortfolioService
	categories     *service.TaxonomyService
	projectTypes   *service.TaxonomyService
	founder        *service.FounderService
	media          *service.MediaService
	events         *service.EventService
	jobs           *scheduler.Scheduler
	contact        service.Contact
	uploadsDir     string
	maxUploadBytes int64
	csrf           middleware.CSRFConfig
	isDev          bool
}

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for a resource.
// Routes: GET /new, POST /, GET /{id}, PUT /{id}, POST /{id}, DELETE /{id},
// plus the /edit and /delete forms HTML can submit.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	if h.List != nil {
		r.Get(base, h.List)
	}
	if h.NewForm != nil {
		r.Get(base+handler.RouteSuffixNew, h.NewForm)
	}
	r.Post(base, h.Create)
	if h.EditForm != nil {
		r.Get(baseID, h.EditForm)
		r.Get(baseID+handler.RouteSuffixEdit, h.EditForm)
	}
	r.Put(baseID, h.Update)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Delete(baseID, h.Delete)
	r.Post(baseID+handler.RouteSuffixDelete, h.Delete)
}

// routes builds the full handler tree.
func (a *app) routes() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(a.isDev)))
	r.Use(middleware.RequestPath)
	r.Use(a.sessions.LoadAndSave)

	frontendHandler := handler.NewFrontendHandler(a.portfolio, a.renderer, a.contact)
	seoHandler := handler.NewSEOHandler(a.portfolio, a.isDev)
	authHandler := handler.NewAuthHandler(a.db, a.renderer, a.sessions, a.loginProtect)
	adminHandler := handler.NewAdminHandler(a.portfolio, a.renderer)
	projectsHandler := handler.NewProjectsHandler(a.portfolio, a.media, a.renderer, a.maxUploadBytes)
	categoriesHandler := handler.NewCategoriesHandler(a.categories, a.renderer)
	projectTypesHandler := handler.NewProjectTypesHandler(a.projectTypes, a.renderer)
	founderHandler := handler.NewFounderHandler(a.founder, a.media, a.renderer, a.maxUploadBytes)
	eventsHandler := handler.NewEventsHandler(a.events, a.jobs, a.renderer)
	healthHandler := handler.NewHealthHandler(a.db, a.sessions, a.uploadsDir, a.cache, a.cacheBackend)
	apiHandler := api.NewHandler(a.portfolio)

	// Public pages (20 req/s per IP, burst 40)
	publicRateLimiter := middleware.NewRateLimiter(20, 40)
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteProject, frontendHandler.Project)
		r.Get(handler.RouteRobots, seoHandler.Robots)
		r.Get(handler.RouteSitemap, seoHandler.Sitemap)
	})

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(a.csrf))
		r.Use(a.loginProtect.Middleware())
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes
	r.Route(redirectAdminPath, func(r chi.Router) {
		r.Use(middleware.CSRF(a.csrf))
		r.Use(middleware.RequireAdmin(a.sessions))
		r.Use(middleware.LoadAdmin(a.sessions, a.db))

		r.Get(handler.RouteRoot, adminHandler.Dashboard)

		r.Post(handler.RouteProjects+handler.RouteSuffixReorder, adminHandler.Reorder)
		registerCRUD(r, handler.RouteProjects, crudHandlers{
			List:     adminHandler.Dashboard,
			NewForm:  projectsHandler.New,
			Create:   projectsHandler.Create,
			EditForm: projectsHandler.Edit,
			Update:   projectsHandler.Update,
			Delete:   projectsHandler.Delete,
		})
		r.Post(handler.RouteProjects+handler.RouteParamID+handler.RouteSuffixImagesDelete, projectsHandler.DeleteImage)

		for base, h := range map[string]*handler.TaxonomyHandler{
			handler.RouteCategories:   categoriesHandler,
			handler.RouteProjectTypes: projectTypesHandler,
		} {
			registerCRUD(r, base, crudHandlers{
				List:   h.List,
				Create: h.Create,
				Update: h.Update,
				Delete: h.Delete,
			})
		}

		r.Get(handler.RouteFounder, founderHandler.Edit)
		r.Post(handler.RouteFounder, founderHandler.Save)

		r.Get(handler.RouteEvents, eventsHandler.List)
		r.Post(handler.RouteJobs+handler.RouteParamName+handler.RouteSuffixRun, eventsHandler.RunJob)
	})

	// Read-only JSON API (10 req/s per IP, burst 20)
	apiRateLimiter := middleware.NewRateLimiter(10, 20)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiRateLimiter.APIMiddleware())
		r.Get("/status", apiHandler.Status)
		r.Get(handler.RouteProjects, apiHandler.ListProjects)
		r.Get(handler.RouteProjects+handler.RouteParamID, apiHandler.GetProject)
		r.Get("/hero", apiHandler.GetHero)
		r.Get(handler.RouteCategories, apiHandler.ListCategories)
		r.Get(handler.RouteProjectTypes, apiHandler.ListProjectTypes)
		r.Get(handler.RouteFounder, apiHandler.GetFounder)
	})

	r.Get(handler.RouteHealth, healthHandler.Health)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return nil, err
	}
	r.Handle(handler.RouteStatic+"/*", http.StripPrefix(handler.RouteStatic+"/", cacheForever(http.FileServer(http.FS(staticFS)))))

	r.Handle(handler.RouteUploads+"/*", http.StripPrefix(handler.RouteUploads+"/", noDirListing(http.FileServer(http.Dir(a.uploadsDir)))))

	r.NotFound(frontendHandler.NotFound)

	return r, nil
}

const redirectAdminPath = "/admin"

// cacheForever marks embedded assets as cacheable for a day.
func cacheForever(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		next.ServeHTTP(w, r)
	})
}

// noDirListing hides directory indexes of the uploads tree.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
