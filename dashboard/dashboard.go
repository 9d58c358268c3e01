// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/middleware"
)

// Prefix is the URL path the dashboard is mounted under
const Prefix = "/dashboard/"

const title = "Dashboard"

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*
var assetsFS embed.FS

// Dashboard is the medals explorer sub-application. It reads the derived
// medals and region tables and never writes.
type Dashboard struct {
	db        *gorm.DB
	templates *template.Template
	assets    http.Handler
	logger    *slog.Logger
}

// Option configures the Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		d.logger = logger
	}
}

// New creates the dashboard over db
func New(db *gorm.DB, opts ...Option) *Dashboard {
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}

	d := &Dashboard{
		db:        db,
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		assets:    http.StripPrefix(Prefix+"assets/", http.FileServer(http.FS(assets))),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

func (d *Dashboard) Prefix() string { return Prefix }

// Routes returns every route the dashboard serves. The list is complete:
// nothing else is registered on the dashboard's behalf. The last route
// catches every other path and method under Prefix.
func (d *Dashboard) Routes() []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodGet, Pattern: Prefix, Handler: http.HandlerFunc(d.HandleIndex)},
		{Method: http.MethodGet, Pattern: Prefix + "assets/*", Handler: d.assets},
		{Method: http.MethodGet, Pattern: Prefix + "_data/columns", Handler: http.HandlerFunc(d.HandleColumns)},
		{Method: http.MethodGet, Pattern: Prefix + "_data/medals", Handler: http.HandlerFunc(d.HandleMedals)},
		{Method: http.MethodGet, Pattern: Prefix + "_data/regions", Handler: http.HandlerFunc(d.HandleRegions)},
		{Pattern: Prefix + "*", Handler: http.HandlerFunc(d.HandleFallback)},
	}
}
