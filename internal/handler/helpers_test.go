// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/auth"
	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/model"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/store"
	"github.com/olegiv/ecovibe-go/internal/testutil"
	"github.com/olegiv/ecovibe-go/web"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery staple"
)

// testEnv is a full stack over a temp database and bucket.
type testEnv struct {
	db           *sql.DB
	sm           *scs.SessionManager
	renderer     *render.Renderer
	backend      *cache.MemoryCache
	bucket       *storage.LocalBucket
	uploadsDir   string
	portfolio    *service.PortfolioService
	categories   *service.TaxonomyService
	projectTypes *service.TaxonomyService
	founder      *service.FounderService
	media        *service.MediaService
	events       *service.EventService
	admin        store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	testutil.EmptyTaxonomy(t, db)
	sm := scs.New()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm, SiteName: "EcoVibe Test"})
	require.NoError(t, err)

	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })
	readCache := cache.NewPortfolio(backend, store.New(db), time.Minute)

	uploadsDir := t.TempDir()
	bucket, err := storage.NewLocal(uploadsDir, storage.ProjectImages)
	require.NoError(t, err)

	e := &testEnv{
		db:           db,
		sm:           sm,
		renderer:     renderer,
		backend:      backend,
		bucket:       bucket,
		uploadsDir:   uploadsDir,
		portfolio:    service.NewPortfolioService(db, readCache, bucket),
		categories:   service.NewCategoryService(db, readCache),
		projectTypes: service.NewProjectTypeService(db, readCache),
		founder:      service.NewFounderService(db, readCache),
		media:        service.NewMediaService(db, bucket, 5<<20),
		events:       service.NewEventService(db),
	}
	e.admin = createTestAdmin(t, db)
	return e
}

func createTestAdmin(t *testing.T, db *sql.DB) store.User {
	t.Helper()

	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)

	now := time.Now()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        testAdminEmail,
		PasswordHash: hash,
		Name:         "Shabnam",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return u
}

// router mounts handlers behind the session middleware.
func (e *testEnv) router(register func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(e.sm.LoadAndSave)
	register(r)
	return r
}

// adminRouter also applies the admin guard and user loading.
func (e *testEnv) adminRouter(register func(r chi.Router)) http.Handler {
	return e.router(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(e.sm))
		r.Use(middleware.LoadAdmin(e.sm, e.db))
		register(r)
	})
}

// loginCookie returns a session cookie of the seeded admin.
func (e *testEnv) loginCookie(t *testing.T) *http.Cookie {
	t.Helper()

	h := e.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.sm.Put(r.Context(), middleware.SessionKeyUserID, e.admin.ID)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (e *testEnv) seedTerms(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, c := range [][2]string{{"kitchen", "Kitchen"}, {"bathroom", "Bathroom"}} {
		_, err := e.categories.Create(ctx, c[0], c[1])
		require.NoError(t, err)
	}
	_, err := e.projectTypes.Create(ctx, "renovation", "Renovation")
	require.NoError(t, err)
}

func (e *testEnv) createProject(t *testing.T, title, category string, mutate ...func(*model.ProjectInput)) model.Project {
	t.Helper()

	in := model.ProjectInput{
		Title:        title,
		Description:  title + " description",
		Category:     category,
		ProjectType:  "renovation",
		BeforeImage1: "https://images.example.com/" + title + "-before.jpg",
		AfterImage1:  "https://images.example.com/" + title + "-after.jpg",
	}
	for _, m := range mutate {
		m(&in)
	}
	p, err := e.portfolio.Create(context.Background(), in)
	require.NoError(t, err)
	return p
}

// serve runs req through h with an optional session cookie.
func serve(h http.Handler, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// multipartRequest builds a multipart form; files maps field name to
// contents.
func multipartRequest(t *testing.T, target string, values url.Values, files map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".jpg")
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// flashAfter follows a redirect with the session cookie set by rec and
// returns the rendered body, which carries the flash message.
func flashAfter(t *testing.T, h http.Handler, rec *httptest.ResponseRecorder, cookie *http.Cookie) string {
	t.Helper()

	location := rec.Header().Get("Location")
	require.NotEmpty(t, location)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		cookie = cookies[0]
	}
	next := serve(h, httptest.NewRequest(http.MethodGet, location, nil), cookie)
	return next.Body.String()
}
