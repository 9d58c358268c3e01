// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the persistence binding and schema creation.

# Connecting

Open returns the *gorm.DB that every handler shares:

	gdb, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, logger)
	defer db.Close(gdb)

"sqlite" opens through modernc.org/sqlite (no cgo), "postgres" through
lib/pq. Both are handed to gorm as an existing connection pool.

# Schema Creation

CreateSchema migrates every model:

	if err := db.CreateSchema(gdb); err != nil {
		var se *db.SchemaError
		errors.As(err, &se) // startup-fatal
	}

Safe to call multiple times - AutoMigrate only adds missing tables and
columns.

# Tables

  - users: login identities
  - profiles: one per user
  - region: derived from noc_regions.csv (see package seed)
  - medals: derived from all_medals.csv (see package seed)
  - competition_entries: user-submitted entries

The derived tables are created here so queries work before the first
seed; the loader replaces them wholesale.
*/
package db
