// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/auth"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/db"
	"github.com/danielhkuo/paralympics/models"
)

// RegionsCSV mirrors the shape of noc_regions.csv: several NOCs share a
// region and one row has no region at all.
const RegionsCSV = `NOC,region,notes
AFG,Afghanistan,
AUS,Australia,
ANZ,Australia,Australasia
GBR,UK,
FRA,France,
ROT,,Refugee Olympic Team
`

// MedalsCSV mirrors all_medals.csv. The Brazil row is missing its Silver
// count and is dropped by the loader.
const MedalsCSV = `Year,Host,NPC,Gold,Silver,Bronze,Total
2012,London,GBR,34,43,43,120
2012,London,AUS,32,23,30,85
2016,Rio,BRA,14,,8,22
2016,Rio,FRA,9,5,14,28
`

// Discard is a logger that drops everything, for tests that build
// components directly.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := db.Open(context.Background(), db.TypeSQLite, dsn, Discard())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })

	if err := db.CreateSchema(gdb); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return gdb
}

// WriteCSV writes content to dir/name and returns the path
func WriteCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// WriteFixtures writes the standard noc_regions.csv and all_medals.csv
// into a new temp dir and returns it
func WriteFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteCSV(t, dir, "noc_regions.csv", RegionsCSV)
	WriteCSV(t, dir, "all_medals.csv", MedalsCSV)
	return dir
}

// GetTestConfig returns the testing profile pointed at a private
// in-memory database, fixture CSVs, and a temp upload dir
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()

	cfg, err := cliparse.ProfileDefaults(cliparse.ProfileTesting)
	if err != nil {
		t.Fatalf("Failed to load testing profile: %v", err)
	}
	cfg.DatabaseURL = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	cfg.DataDir = WriteFixtures(t)
	cfg.UploadDir = t.TempDir()
	return cfg
}

// CreateTestUser inserts a user with a bcrypt-hashed password
func CreateTestUser(t *testing.T, gdb *gorm.DB, email, password string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{Email: email, PasswordHash: hash}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// SessionCookie starts a session for userID and returns the cookie a
// browser would send back
func SessionCookie(t *testing.T, lm *auth.LoginManager, userID uint) *http.Cookie {
	t.Helper()

	sess, err := lm.Store.Create(userID)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return &http.Cookie{Name: lm.CookieName, Value: sess.ID}
}

// MakeRequest creates an HTTP test request with an optional form body
func MakeRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302/303 whose Location starts with prefix
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, prefix string) {
	t.Helper()
	if w.Code != http.StatusFound && w.Code != http.StatusSeeOther {
		t.Errorf("Expected redirect, got %d. Body: %s", w.Code, w.Body.String())
		return
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, prefix) {
		t.Errorf("Expected redirect to %s..., got %q", prefix, loc)
	}
}
