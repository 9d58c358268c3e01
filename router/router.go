// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/auth"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/handlers"
	"github.com/danielhkuo/paralympics/middleware"
	"github.com/danielhkuo/paralympics/uploads"
	"github.com/danielhkuo/paralympics/web"
)

// formOverhead is headroom above MaxUploadBytes for the non-file fields of
// a multipart form
const formOverhead = 1 << 20

// Deps is everything the router wires into handlers.
type Deps struct {
	DB     *gorm.DB
	Config cliparse.Config
	Login  *auth.LoginManager
	CSRF   *auth.CSRF
	Photos *uploads.Set
	Views  *web.Renderer

	// Logger receives request and handler logs. Nil means slog.Default().
	Logger *slog.Logger

	// DashboardRoutes are registered after every route under
	// DashboardPrefix is wrapped with the login guard
	DashboardPrefix string
	DashboardRoutes []middleware.Route
}

func NewRouter(d Deps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.RequestSize(d.Config.MaxUploadBytes + formOverhead))
	r.Use(d.CSRF.Protect)
	r.Use(d.Login.LoadUser)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(d.DB, d.Config, d.Login, d.Views, handlers.WithLogger(d.Logger))
	mainHandler := handlers.NewMainHandler(d.DB, d.Config, d.Photos, d.Views, handlers.WithLogger(d.Logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Dashboard, guarded once over its full route list
	middleware.Register(r, auth.ProtectRoutes(d.DashboardRoutes, d.DashboardPrefix, d.Login))
	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, d.DashboardPrefix, http.StatusMovedPermanently)
	})

	// auth namespace
	r.Group(func(r chi.Router) {
		r.Get("/signup", authHandler.SignupForm)
		r.Post("/signup", authHandler.Signup)
		r.Get("/login", authHandler.LoginForm)
		r.With(loginLimit(d)...).Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
	})

	// main namespace
	r.Group(func(r chi.Router) {
		r.Get("/", mainHandler.Index)
		r.Get("/uploads/"+d.Photos.Name+"/{name}", mainHandler.Photo)

		r.Group(func(r chi.Router) {
			r.Use(d.Login.RequireLogin)
			r.Get("/profile", mainHandler.Profile)
			r.Get("/profile/edit", mainHandler.EditProfileForm)
			r.Post("/profile/edit", mainHandler.EditProfile)
			r.Get("/entries", mainHandler.Entries)
			r.Post("/entries", mainHandler.CreateEntry)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		d.Views.Error(w, r, http.StatusNotFound, "The page you asked for does not exist.")
	})

	return r
}

// loginLimit returns the per-IP rate limiter for login attempts, or nothing
// when the limit is disabled
func loginLimit(d Deps) []func(http.Handler) http.Handler {
	if d.Config.LoginRateLimit <= 0 {
		return nil
	}
	return []func(http.Handler) http.Handler{
		httprate.Limit(
			d.Config.LoginRateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				d.Views.Error(w, r, http.StatusTooManyRequests, "Too many login attempts. Try again in a minute.")
			}),
		),
	}
}
