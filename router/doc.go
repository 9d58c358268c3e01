// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for the Paralympics site.

# Route Registration

NewRouter builds a chi router from the application's dependencies:

	r := router.NewRouter(router.Deps{DB: gdb, Config: cfg, ...})

Every request passes through, in order: request ID, real IP, panic
recovery, request logging, Prometheus metrics, a body size limit, CSRF
protection and session loading.

# Endpoints

Infrastructure:

	GET /health   - Plain "OK"
	GET /metrics  - Prometheus metrics

Dashboard (login required, 302 to /login?next=... otherwise):

	GET /dashboard/                 - Medals explorer
	GET /dashboard/assets/*         - Static assets
	GET /dashboard/_data/{columns,medals,regions}

auth namespace:

	GET/POST /signup  - Create an account
	GET/POST /login   - Log in (POST rate-limited per IP)
	GET      /logout  - Log out

main namespace:

	GET      /                       - Home page with table counts
	GET      /uploads/photos/{name}  - Stored profile photos
	GET      /profile                - Current user's profile (login required)
	GET/POST /profile/edit           - Create or update profile (login required)
	GET/POST /entries                - Competition entries (login required)

The dashboard routes come from the dashboard package as an explicit list
and are wrapped with auth.ProtectRoutes here, before registration.
*/
package router
