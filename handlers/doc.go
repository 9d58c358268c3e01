// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTML page handlers for the Paralympics site.

# Handler Types

Each handler is a struct holding its database, config and view
dependencies:

  - AuthHandler: signup, login and logout
  - MainHandler: home page, profiles, photo serving and competition entries

Handlers are created via constructor functions:

	authHandler := handlers.NewAuthHandler(db, cfg, loginManager, views, handlers.WithLogger(logger))
	mainHandler := handlers.NewMainHandler(db, cfg, photos, views, handlers.WithLogger(logger))

Without WithLogger the handlers log to slog.Default().

# Accounts

	GET  /signup  → SignupForm
	POST /signup  → Signup (logs the new user in, redirects to /profile/edit)
	GET  /login   → LoginForm
	POST /login   → Login (redirects to a safe ?next= or /)
	GET  /logout  → Logout

Emails are normalized to lower case before lookup. A failed login never
says whether the email exists.

# Profiles and Entries

These routes require a logged-in user:

	GET  /profile       → Profile
	GET  /profile/edit  → EditProfileForm
	POST /profile/edit  → EditProfile (multipart, optional photo)
	GET  /entries       → Entries
	POST /entries       → CreateEntry

Forms that fail validation are re-rendered with per-field messages and
status 422. A region must reference an existing region row.

# Uploads

	GET /uploads/photos/{name} → Photo

Only names produced by the photo upload set are served.
*/
package handlers
