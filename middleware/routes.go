// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route is one registrable handler. Sub-applications hand their routes to
// the router as an explicit list so they can be inspected and wrapped
// before registration. An empty Method matches every method.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

// WrapPrefix returns a copy of routes in which every route whose pattern
// starts with prefix is wrapped by mw. Other routes are returned as-is.
func WrapPrefix(routes []Route, prefix string, mw func(http.Handler) http.Handler) []Route {
	out := make([]Route, len(routes))
	for i, rt := range routes {
		if strings.HasPrefix(rt.Pattern, prefix) {
			rt.Handler = mw(rt.Handler)
		}
		out[i] = rt
	}
	return out
}

// Register adds routes to r in order
func Register(r chi.Router, routes []Route) {
	for _, rt := range routes {
		if rt.Method == "" {
			r.Handle(rt.Pattern, rt.Handler)
			continue
		}
		r.Method(rt.Method, rt.Pattern, rt.Handler)
	}
}
