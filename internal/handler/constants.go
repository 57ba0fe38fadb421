// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for POST-based delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixReorder is the suffix for reorder routes.
	RouteSuffixReorder = "/reorder"
	// RouteSuffixImagesDelete removes one image from a project.
	RouteSuffixImagesDelete = "/images/delete"
	// RouteSuffixRun triggers a background job.
	RouteSuffixRun = "/run"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamName is the job name parameter pattern.
	RouteParamName = "/{name}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteProject is the public project detail route.
	RouteProject = "/project/{id}"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteRobots is the robots.txt route.
	RouteRobots = "/robots.txt"
	// RouteSitemap is the sitemap route.
	RouteSitemap = "/sitemap.xml"
	// RouteUploads serves stored objects.
	RouteUploads = "/uploads"
	// RouteStatic serves embedded assets.
	RouteStatic = "/static"

	// RouteProjects is the projects admin route.
	RouteProjects = "/projects"
	// RouteCategories is the categories admin route.
	RouteCategories = "/categories"
	// RouteProjectTypes is the project types admin route.
	RouteProjectTypes = "/project-types"
	// RouteFounder is the founder profile admin route.
	RouteFounder = "/founder"
	// RouteEvents is the event log admin route.
	RouteEvents = "/events"
	// RouteJobs is the background jobs admin route.
	RouteJobs = "/jobs"
)

// Redirect targets.
const (
	redirectAdmin             = "/admin"
	redirectLogin             = "/login"
	redirectAdminProjects     = "/admin/projects"
	redirectAdminProjectsNew  = "/admin/projects/new"
	redirectAdminCategories   = "/admin/categories"
	redirectAdminProjectTypes = "/admin/project-types"
	redirectAdminFounder      = "/admin/founder"
	redirectAdminEvents       = "/admin/events"
)

// Template names.
const (
	templateHome        = "pages/home"
	templateProject     = "pages/project"
	templateNotFound    = "pages/not_found"
	templateError       = "pages/error"
	templateLogin       = "auth/login"
	templateDashboard   = "admin/dashboard"
	templateProjectForm = "admin/project_form"
	templateTaxonomy    = "admin/taxonomy"
	templateFounder     = "admin/founder"
	templateEvents      = "admin/events"
)
