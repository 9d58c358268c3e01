// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, browser sessions, route guards and
CSRF protection.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

# Sessions

SessionStore keeps sessions in an in-memory TTL cache (ttlcache). Each
authenticated request touches its session, so expiry slides forward.
Sessions do not survive a restart.

# Login Manager

LoginManager binds sessions to a cookie:

	lm := auth.NewLoginManager(store, "/login", cfg.CookieSecure)
	r.Use(lm.LoadUser)                          // resolve, never reject
	r.With(lm.RequireLogin).Get("/profile", h)  // 302 to /login?next=...
	err := lm.LoginUser(w, r, user.ID)
	lm.LogoutUser(w, r)

ProtectRoutes applies RequireLogin to every route in a list whose pattern
starts with a prefix. It runs once over an explicit list, so routes added
afterwards are not guarded.

SafeNext filters the ?next= redirect target to local paths.

# CSRF

CSRF uses a signed double-submit cookie. Unsafe methods must echo the
token in the csrf_token form field or the X-CSRF-Token header, otherwise
the request is rejected with 403. Forms get the token from Token(r).
Path prefixes passed to NewCSRF are exempt.

# IDs and IP Hashing

	id, err := auth.GenerateID(16)  // 32 hex characters
	hash := auth.HashIP(ip, salt)   // 16 hex chars of HMAC-SHA256
*/
package auth
