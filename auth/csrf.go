// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

var (
	ErrCSRFTokenMissing = errors.New("CSRF token missing")
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")
)

const (
	DefaultCSRFCookie = "_csrf"
	DefaultCSRFField  = "csrf_token"
	DefaultCSRFHeader = "X-CSRF-Token"
)

type csrfCtxKey struct{}

// CSRF implements the double-submit cookie pattern. The cookie holds a
// random token plus an HMAC of it under the server secret, so a cookie
// planted by another site does not verify. State-changing requests must
// echo the token in a form field or header.
type CSRF struct {
	secret         []byte
	CookieName     string
	FieldName      string
	HeaderName     string
	Secure         bool
	ExemptPrefixes []string
}

func NewCSRF(secret string, secure bool, exemptPrefixes ...string) *CSRF {
	return &CSRF{
		secret:         []byte(secret),
		CookieName:     DefaultCSRFCookie,
		FieldName:      DefaultCSRFField,
		HeaderName:     DefaultCSRFHeader,
		Secure:         secure,
		ExemptPrefixes: exemptPrefixes,
	}
}

// Exempt adds a path prefix that skips CSRF checks
func (c *CSRF) Exempt(prefix string) {
	c.ExemptPrefixes = append(c.ExemptPrefixes, prefix)
}

// Protect issues a token on first contact and rejects unsafe requests
// whose submitted token does not match the cookie.
func (c *CSRF) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, fromCookie := c.cookieToken(r)
		if !fromCookie {
			var err error
			token, err = GenerateID(32)
			if err != nil {
				slog.Error("failed to generate CSRF token", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     c.CookieName,
				Value:    token + "." + c.sign(token),
				Path:     "/",
				HttpOnly: true,
				Secure:   c.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		r = r.WithContext(context.WithValue(r.Context(), csrfCtxKey{}, token))

		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if err := c.verify(r, token, fromCookie); err != nil {
			slog.Warn("CSRF check failed", "path", r.URL.Path, "error", err)
			http.Error(w, "Forbidden - "+err.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Token returns the CSRF token for the request, for embedding in forms
func Token(r *http.Request) string {
	token, _ := r.Context().Value(csrfCtxKey{}).(string)
	return token
}

func (c *CSRF) verify(r *http.Request, token string, fromCookie bool) error {
	if !fromCookie {
		return ErrCSRFTokenMissing
	}
	submitted := r.Header.Get(c.HeaderName)
	if submitted == "" {
		submitted = r.PostFormValue(c.FieldName)
	}
	if submitted == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(submitted), []byte(token)) {
		return ErrCSRFTokenInvalid
	}
	return nil
}

// cookieToken returns the token from a well-formed, correctly signed cookie
func (c *CSRF) cookieToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.CookieName)
	if err != nil {
		return "", false
	}
	token, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok || token == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(token))) {
		return "", false
	}
	return token, true
}

func (c *CSRF) sign(token string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (c *CSRF) isExempt(path string) bool {
	for _, prefix := range c.ExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// CookieValue builds a signed cookie value for token. Tests use it to
// simulate a browser that already holds a CSRF cookie.
func (c *CSRF) CookieValue(token string) string {
	return token + "." + c.sign(token)
}
