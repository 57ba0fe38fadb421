// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command ecovibe serves the EcoVibe Design portfolio site and its admin.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ecovibe-go/internal/cache"
	"github.com/olegiv/ecovibe-go/internal/config"
	"github.com/olegiv/ecovibe-go/internal/logging"
	"github.com/olegiv/ecovibe-go/internal/middleware"
	"github.com/olegiv/ecovibe-go/internal/render"
	"github.com/olegiv/ecovibe-go/internal/scheduler"
	"github.com/olegiv/ecovibe-go/internal/service"
	"github.com/olegiv/ecovibe-go/internal/session"
	"github.com/olegiv/ecovibe-go/internal/storage"
	"github.com/olegiv/ecovibe-go/internal/store"
	"github.com/olegiv/ecovibe-go/internal/version"
	"github.com/olegiv/ecovibe-go/web"
)

const (
	jobOrphanSweep = "orphan-sweep"
	jobEventPrune  = "event-prune"
)

// envHelp documents the variables most deployments set. The full list
// lives in internal/config.
var envHelp = [][2]string{
	{"SESSION_SECRET", "Session encryption key (required, min 32 bytes)"},
	{"DB_PATH", "SQLite database path (default: ./data/ecovibe.db)"},
	{"UPLOADS_DIR", "Image storage root (default: ./uploads)"},
	{"SERVER_PORT", "Server port (default: 8080)"},
	{"ENV", "development|production (default: development)"},
	{"ADMIN_EMAIL", "Admin account created on first start"},
	{"ADMIN_PASSWORD", "Password of that account"},
	{"REDIS_URL", "Redis URL for a shared read cache (optional)"},
	{"DO_SEED", "Seed demo projects into an empty database"},
}

func usage() {
	out := flag.CommandLine.Output()
	_, _ = fmt.Fprintf(out, "EcoVibe Design - portfolio site and admin\n\nUsage: %s [options]\n\nOptions:\n", os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintln(out, "\nEnvironment:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, v := range envHelp {
		_, _ = fmt.Fprintf(tw, "  %s%s\t%s\n", config.EnvPrefix, v[0], v[1])
	}
	_ = tw.Flush()
}

func main() {
	var showVersion, showHelp, resetPassword bool
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&showVersion, "v", false, "shorthand for -version")
	flag.BoolVar(&showHelp, "help", false, "print this help and exit")
	flag.BoolVar(&showHelp, "h", false, "shorthand for -help")
	flag.BoolVar(&resetPassword, "reset-admin-password", false,
		"set the password of "+config.EnvPrefix+"ADMIN_EMAIL to "+config.EnvPrefix+"ADMIN_PASSWORD, end all sessions and exit")
	flag.Usage = usage
	flag.Parse()

	switch {
	case showHelp:
		flag.Usage()
		return
	case showVersion:
		fmt.Println(version.Get().String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	var err error
	if resetPassword {
		err = resetAdminPassword(ctx)
	} else {
		err = run(ctx)
	}
	stop()
	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// openDatabase prepares the data directory, opens the database and
// applies pending migrations.
func openDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// resetAdminPassword is the recovery path for a lost admin password.
func resetAdminPassword(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.ResetAdminPassword(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("resetting admin password: %w", err)
	}
	fmt.Printf("Password updated for %s. Existing sessions were signed out.\n", cfg.AdminEmail)
	return nil
}

// run blocks until ctx is cancelled or the server fails.
func run(ctx context.Context) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.ParseLogLevel()})
	slog.SetDefault(slog.New(console))

	slog.Info("opening database", "path", cfg.DBPath)
	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}()

	// From here on warnings and errors are also kept in the event log.
	logger := slog.New(logging.NewEventLogHandler(console, db))
	slog.SetDefault(logger)

	if err := store.Seed(ctx, db, store.AdminSeed{Email: cfg.AdminEmail, Password: cfg.AdminPassword}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if cfg.DoSeed {
		if err := store.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	a, err := newApp(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	router, err := a.routes()
	if err != nil {
		return fmt.Errorf("building routes: %w", err)
	}

	a.jobs.Start()
	defer a.jobs.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads of several photos
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// newApp wires storage, caching, services and background jobs.
func newApp(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (*app, error) {
	backend, backendName := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	})
	slog.Info("read cache ready", "backend", backendName, "ttl", cfg.CacheTTL)
	readCache := cache.NewPortfolio(backend, store.New(db), cfg.CacheTTL)

	bucket, err := storage.NewLocal(cfg.UploadsDir, storage.ProjectImages)
	if err != nil {
		return nil, fmt.Errorf("opening image storage: %w", err)
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		SiteName:       cfg.SiteName,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	a := &app{
		db:             db,
		sessions:       sessionManager,
		renderer:       renderer,
		loginProtect:   middleware.NewLoginProtection(ctx, middleware.DefaultLoginProtectionConfig()),
		cache:          backend,
		cacheBackend:   backendName,
		portfolio:      service.NewPortfolioService(db, readCache, bucket),
		categories:     service.NewCategoryService(db, readCache),
		projectTypes:   service.NewProjectTypeService(db, readCache),
		founder:        service.NewFounderService(db, readCache),
		media:          service.NewMediaService(db, bucket, cfg.MaxUploadBytes()),
		events:         service.NewEventService(db),
		jobs:           scheduler.New(logger),
		uploadsDir:     cfg.UploadsDir,
		maxUploadBytes: cfg.MaxUploadBytes(),
		csrf:           middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort),
		isDev:          cfg.IsDevelopment(),
		contact: service.Contact{
			Phone:     cfg.ContactPhone,
			Email:     cfg.ContactEmail,
			Instagram: cfg.ContactInstagram,
		},
	}

	if err := a.registerJobs(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// registerJobs schedules the orphan image sweep and the event log prune.
func (a *app) registerJobs(cfg *config.Config) error {
	if cfg.OrphanSweep != "" {
		grace := cfg.OrphanGrace
		err := a.jobs.Add(jobOrphanSweep, cfg.OrphanSweep, func(ctx context.Context) error {
			removed, err := a.media.SweepOrphans(ctx, grace)
			if err != nil {
				return err
			}
			if removed > 0 {
				slog.Info("orphan images removed", "count", removed)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", jobOrphanSweep, err)
		}
	}

	retention := cfg.EventRetention
	err := a.jobs.Add(jobEventPrune, "@daily", func(ctx context.Context) error {
		n, err := a.events.DeleteOldEvents(ctx, retention)
		if err != nil {
			return err
		}
		slog.Info("old events pruned", "count", n)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", jobEventPrune, err)
	}
	return nil
}
