// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/auth"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/dashboard"
	"github.com/danielhkuo/paralympics/db"
	"github.com/danielhkuo/paralympics/router"
	"github.com/danielhkuo/paralympics/seed"
	"github.com/danielhkuo/paralympics/uploads"
	"github.com/danielhkuo/paralympics/web"
)

// LoginView is where the login guard sends unauthenticated requests
const LoginView = "/login"

// PhotosSet is the upload set profile photos are stored in
const PhotosSet = "photos"

// App is the assembled application. It is built once at startup and
// passed to everything that needs shared state.
type App struct {
	Config    cliparse.Config
	DB        *gorm.DB
	Logger    *slog.Logger
	Sessions  *auth.SessionStore
	Login     *auth.LoginManager
	CSRF      *auth.CSRF
	Photos    *uploads.Set
	Dashboard *dashboard.Dashboard
	Handler   http.Handler

	// Seeded is the seed result, zero when seeding was skipped
	Seeded seed.Summary
}

// Option configures New.
type Option func(*options)

type options struct {
	logger *slog.Logger
	ctx    context.Context
}

// WithLogger sets the application logger used by the database, seeding,
// dashboard, request logging and page handlers. The default is
// slog.Default(). Template rendering and CSRF failures still log to
// slog.Default(), which main points at the same logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithContext bounds the startup database work.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// New validates cfg and builds the application. Each step completes before
// the next; on failure everything opened so far is closed and the error is
// returned.
func New(cfg cliparse.Config, opts ...Option) (_ *App, err error) {
	o := options{logger: slog.Default(), ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Configuration profile
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: o.logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// 2. Persistence binding
	a.DB, err = db.Open(o.ctx, cfg.DatabaseType, cfg.DatabaseURL, o.logger)
	if err != nil {
		return nil, err
	}

	// 3. Dashboard sub-application
	a.Dashboard = dashboard.New(a.DB, dashboard.WithLogger(o.logger))
	views, err := web.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}

	// 4. Cross-cutting protections. The dashboard prefix is exempt from
	// CSRF checks.
	a.CSRF = auth.NewCSRF(cfg.SecretKey, cfg.CookieSecure, a.Dashboard.Prefix())
	a.Sessions = auth.NewSessionStore(cfg.SessionTTL)
	a.Login = auth.NewLoginManager(a.Sessions, LoginView, cfg.CookieSecure)
	a.Photos, err = uploads.NewSet(PhotosSet, cfg.UploadDir, uploads.Images, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	// 5. Schema, then the derived tables
	if err := db.CreateSchema(a.DB); err != nil {
		return nil, err
	}
	if cfg.SeedOnStartup {
		a.Seeded, err = seed.Run(o.ctx, a.DB, cfg.DataDir, seed.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
	} else {
		o.logger.Info("seeding skipped", "profile", cfg.Profile)
	}

	// 6. Routes
	a.Handler = router.NewRouter(router.Deps{
		DB:              a.DB,
		Config:          cfg,
		Login:           a.Login,
		CSRF:            a.CSRF,
		Photos:          a.Photos,
		Views:           views,
		Logger:          o.logger,
		DashboardPrefix: a.Dashboard.Prefix(),
		DashboardRoutes: a.Dashboard.Routes(),
	})

	a.Sessions.Start()
	o.logger.Info("application ready",
		"profile", cfg.Profile,
		"database", cfg.DatabaseType,
		"regions", a.Seeded.Regions,
		"medals", a.Seeded.Medals,
	)
	return a, nil
}

// Close stops the session janitor and closes the database
func (a *App) Close() error {
	if a.Sessions != nil {
		a.Sessions.Stop()
	}
	if a.DB == nil {
		return nil
	}
	return db.Close(a.DB)
}
