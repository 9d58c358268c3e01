// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Request Logging

WithLogging logs each request with method, path, status, size and duration:

	r.Use(middleware.WithLogging)

RequestLogger does the same with a specific logger instead of
slog.Default():

	r.Use(middleware.RequestLogger(logger))

# Metrics

Metrics records request count and latency under the chi route pattern
("/entries/{id}", not "/entries/42"):

	r.Use(middleware.Metrics)

# Route Lists

Route is a (method, pattern, handler) triple. Sub-applications such as the
dashboard return []Route rather than registering themselves, so the router
can wrap them first:

	routes = middleware.WrapPrefix(routes, "/dashboard/", guard)
	middleware.Register(r, routes)

A Route with an empty Method is registered for every method. Only routes
in the list are wrapped. Anything registered some other way
bypasses the wrapper.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "unknown column")

Responses are encoded with goccy/go-json.

# Client IP Extraction

GetClientIP extracts the real client IP, checking in order:

 1. X-Forwarded-For header (first IP)
 2. X-Real-IP header
 3. RemoteAddr (port stripped)
*/
package middleware
