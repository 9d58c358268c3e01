// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Profiles

Configuration starts from a named profile:

  - development (default): local SQLite file, debug text logs
  - testing: in-memory SQLite, quiet logs, no login rate limit
  - production: PostgreSQL, JSON logs, secure cookies

The profile is chosen with --profile or APP_PROFILE.

# Layers

ParseFlags returns a Config built from, in increasing priority:

	profile defaults → YAML file (--config / CONFIG_PATH) → env → CLI flags

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Environment Variables

Every config key can be set by its upper-case name:

	PORT, DATABASE_URL, DATABASE_TYPE, SECRET_KEY, DATA_DIR, UPLOAD_DIR,
	MAX_UPLOAD_BYTES, SEED_ON_STARTUP, SESSION_TTL, COOKIE_SECURE,
	LOGIN_RATE_LIMIT, LOG_LEVEL, LOG_FORMAT

# CLI Flags

	-p, --port            Server port
	-d, --database-url    Database URL
	-t, --database-type   sqlite or postgres
	--secret-key          Session and CSRF secret
	--data-dir            Directory holding noc_regions.csv and all_medals.csv
	--upload-dir          Upload destination
	--seed                Replace the derived tables on startup (default true)

# Seeding

SeedOnStartup controls whether the region and medals tables are rebuilt
from CSV on every start. Rebuilding discards whatever those tables held,
so the flag exists to make that choice explicit per deployment.

# Validation

Load returns a *ConfigurationError when the profile is unknown or a key
fails validation. Production additionally requires DATABASE_URL and a
SECRET_KEY of at least 16 characters.
*/
package cliparse
