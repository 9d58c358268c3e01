// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/paralympics/middleware"
)

const DefaultCookieName = "session"

type ctxKey struct{}

// LoginManager ties sessions to browser cookies and gates routes on them.
type LoginManager struct {
	// LoginView is where unauthenticated requests to protected routes go.
	LoginView  string
	CookieName string
	Secure     bool
	Store      *SessionStore
}

func NewLoginManager(store *SessionStore, loginView string, secure bool) *LoginManager {
	return &LoginManager{
		LoginView:  loginView,
		CookieName: DefaultCookieName,
		Secure:     secure,
		Store:      store,
	}
}

// WithUserID returns a context carrying an authenticated user ID
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user ID, or 0 when there is none
func UserID(ctx context.Context) uint {
	id, _ := ctx.Value(ctxKey{}).(uint)
	return id
}

// LoadUser resolves the session cookie, if any, and stores the user ID in
// the request context. It never rejects a request.
func (lm *LoginManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := lm.resolve(r); ok {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLogin redirects to LoginView unless the request has a valid
// session. The original request URI is passed along as ?next=.
func (lm *LoginManager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == 0 {
			id, ok := lm.resolve(r)
			if !ok {
				target := lm.LoginView + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (lm *LoginManager) resolve(r *http.Request) (uint, bool) {
	cookie, err := r.Cookie(lm.CookieName)
	if err != nil {
		return 0, false
	}
	sess, err := lm.Store.Get(cookie.Value)
	if err != nil {
		return 0, false
	}
	lm.Store.Touch(sess.ID)
	return sess.UserID, true
}

// LoginUser starts a session for userID and sets its cookie. Any session
// the request already carried is discarded.
func (lm *LoginManager) LoginUser(w http.ResponseWriter, r *http.Request, userID uint) error {
	if cookie, err := r.Cookie(lm.CookieName); err == nil {
		lm.Store.Delete(cookie.Value)
	}

	sess, err := lm.Store.Create(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     lm.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(lm.Store.TTL().Seconds()),
		HttpOnly: true,
		Secure:   lm.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// LogoutUser ends the request's session and clears its cookie
func (lm *LoginManager) LogoutUser(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(lm.CookieName); err == nil {
		lm.Store.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     lm.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   lm.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ProtectRoutes wraps every route under prefix with RequireLogin. It runs
// once at startup over an explicit list; routes registered elsewhere are
// not covered.
func ProtectRoutes(routes []middleware.Route, prefix string, lm *LoginManager) []middleware.Route {
	return middleware.WrapPrefix(routes, prefix, lm.RequireLogin)
}

// SafeNext returns next if it is a local absolute path, otherwise "/"
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/"
	}
	// Reject scheme-relative and backslash tricks: //evil.com, /\evil.com
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
