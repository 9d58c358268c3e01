// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines persistence, form, and response types.

# Persistence Types

gorm models migrated by db.CreateSchema:

  - User: login identity (email, bcrypt password hash)
  - Profile: one per user; username, bio, photo, region
  - Region: derived table "region" (id, region)
  - Medal: derived table "medals"; placeholder until seeded
  - CompetitionEntry: a user's entry for an event

Region and Medal ids are positional indices assigned by the seed loader
on each load. They are not stable across reloads.

# Form Types

Parsed from POST bodies and checked with go-playground/validator tags:

  - SignupForm: email, password, confirm
  - LoginForm: email, password, next
  - ProfileForm: username, bio, region_id
  - EntryForm: event, region_id, notes

# Response Types

JSON returned by the dashboard data endpoints:

  - ColumnInfo: medals column name and whether it is numeric
  - Series: grouped sums for a chart
  - ErrorResponse: error, message
*/
package models
