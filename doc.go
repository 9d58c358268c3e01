// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Paralympics site.

The site serves a medals dashboard built from two CSV files, plus user
accounts with profiles, profile photos and competition entries.

# Starting the Server

With the development profile nothing needs configuring. Data is read from
./data and stored in a local SQLite file:

	go run .

Production uses PostgreSQL and needs a database URL and secret:

	APP_PROFILE=production DATABASE_URL=postgres://... SECRET_KEY=... go run .

Or with flags:

	go run . --profile production -d "postgres://..." --secret-key "..."

A .env file in the working directory is loaded first if present.

# Startup

On start the server validates its configuration profile, creates any
missing tables and rebuilds the region and medals tables from
<data_dir>/noc_regions.csv and <data_dir>/all_medals.csv. Pass --seed=false
to keep the existing tables. Any startup failure exits with status 1.

# Architecture

  - app: startup sequence and the assembled App
  - cliparse: configuration profiles and flag/env/file layering
  - db: gorm connection (SQLite or PostgreSQL) and schema
  - seed: CSV parsing and table replacement
  - dashboard: medals explorer under /dashboard/
  - auth: passwords, sessions, login guard, CSRF
  - handlers: signup/login and site pages
  - uploads: photo storage
  - web: page templates
  - router: chi routes and middleware order
  - middleware, metrics, logging, models, testutil

See package documentation for each component.
*/
package main
