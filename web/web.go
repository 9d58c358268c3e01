// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/paralympics/auth"
)

//go:embed templates/*.html
var templatesFS embed.FS

const baseTemplate = "templates/base.html"

// Page is the data every page template receives
type Page struct {
	Title     string
	UserID    uint
	CSRFToken string
	// Errors maps form field names to messages; "" is a form-level error
	Errors map[string]string
	Form   any
	Data   any
}

// LoggedIn reports whether the page is rendered for an authenticated user
func (p Page) LoggedIn() bool { return p.UserID != 0 }

// Renderer holds one parsed template set per page, each layered on base.html
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"ago":   humanize.Time,
	"comma": func(n int64) string { return humanize.Comma(n) },
	"date":  func(t time.Time) string { return t.Format("2 Jan 2006") },
}

// New parses the embedded page templates
func New() (*Renderer, error) {
	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == baseTemplate {
			continue
		}
		tmpl, err := template.New(path.Base(baseTemplate)).Funcs(funcs).ParseFS(templatesFS, baseTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = tmpl
	}
	return r, nil
}

// Render writes the named page with status. The CSRF token and the
// logged-in user are taken from the request.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, page Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		slog.Error("unknown page template", "page", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page.CSRFToken = auth.Token(req)
	page.UserID = auth.UserID(req.Context())

	// Render to a buffer so template errors still produce a clean 500
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, path.Base(baseTemplate), page); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Error renders the error page with the status text as its title
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, message string) {
	r.Render(w, req, status, "error", Page{
		Title: http.StatusText(status),
		Data:  message,
	})
}
