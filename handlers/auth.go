// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/auth"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/metrics"
	"github.com/danielhkuo/paralympics/middleware"
	"github.com/danielhkuo/paralympics/models"
	"github.com/danielhkuo/paralympics/web"
)

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	db     *gorm.DB
	cfg    cliparse.Config
	login  *auth.LoginManager
	views  *web.Renderer
	logger *slog.Logger
}

func NewAuthHandler(db *gorm.DB, cfg cliparse.Config, login *auth.LoginManager, views *web.Renderer, opts ...Option) *AuthHandler {
	o := newOptions(opts)
	return &AuthHandler{db: db, cfg: cfg, login: login, views: views, logger: o.logger}
}

// SignupForm handles GET /signup
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "signup", web.Page{Title: "Sign up", Form: models.SignupForm{}})
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form := models.SignupForm{
		Email:    normalizeEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	}
	page := web.Page{Title: "Sign up", Form: models.SignupForm{Email: form.Email}}

	if errs := validateForm(form); errs != nil {
		page.Errors = errs
		h.views.Render(w, r, http.StatusUnprocessableEntity, "signup", page)
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", form.Email).Count(&count).Error; err != nil {
		h.logger.Error("failed to check email", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not create your account.")
		return
	}
	if count > 0 {
		page.Errors = map[string]string{"email": "An account with this email already exists."}
		h.views.Render(w, r, http.StatusUnprocessableEntity, "signup", page)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not create your account.")
		return
	}

	user := models.User{Email: form.Email, PasswordHash: hash}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		// A concurrent signup may have claimed the email since the check
		recount := h.db.WithContext(r.Context()).Model(&models.User{}).Where("email = ?", form.Email).Count(&count)
		if recount.Error != nil {
			h.logger.Error("failed to recheck email", "error", recount.Error)
		} else if count > 0 {
			page.Errors = map[string]string{"email": "An account with this email already exists."}
			h.views.Render(w, r, http.StatusUnprocessableEntity, "signup", page)
			return
		}
		h.logger.Error("failed to insert user", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not create your account.")
		return
	}

	h.logger.Info("user signed up", "user_id", user.ID)

	if err := h.login.LoginUser(w, r, user.ID); err != nil {
		h.logger.Error("failed to start session", "user_id", user.ID, "error", err)
		http.Redirect(w, r, h.login.LoginView, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/profile/edit", http.StatusSeeOther)
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if auth.UserID(r.Context()) != 0 {
		http.Redirect(w, r, auth.SafeNext(next), http.StatusSeeOther)
		return
	}
	h.views.Render(w, r, http.StatusOK, "login", web.Page{Title: "Log in", Form: models.LoginForm{Next: next}})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := models.LoginForm{
		Email:    normalizeEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
	page := web.Page{Title: "Log in", Form: models.LoginForm{Email: form.Email, Next: form.Next}}

	if errs := validateForm(form); errs != nil {
		page.Errors = errs
		h.views.Render(w, r, http.StatusUnprocessableEntity, "login", page)
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", form.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.Error("failed to query user", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not log you in.")
		return
	}
	if err != nil || auth.CheckPassword(user.PasswordHash, form.Password) != nil {
		metrics.RecordLogin(false)
		h.logger.Warn("login failed", "ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SecretKey))
		page.Errors = map[string]string{"": auth.ErrInvalidCredentials.Error()}
		h.views.Render(w, r, http.StatusUnauthorized, "login", page)
		return
	}

	if err := h.login.LoginUser(w, r, user.ID); err != nil {
		h.logger.Error("failed to start session", "user_id", user.ID, "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not log you in.")
		return
	}
	metrics.RecordLogin(true)
	h.logger.Info("user logged in", "user_id", user.ID)

	http.Redirect(w, r, auth.SafeNext(form.Next), http.StatusSeeOther)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.login.LogoutUser(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
