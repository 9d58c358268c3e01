// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/auth"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/seed"
	"github.com/danielhkuo/paralympics/testutil"
	"github.com/danielhkuo/paralympics/uploads"
	"github.com/danielhkuo/paralympics/web"
)

type fixture struct {
	db     *gorm.DB
	cfg    cliparse.Config
	login  *auth.LoginManager
	photos *uploads.Set
	views  *web.Renderer
	auth   *AuthHandler
	main   *MainHandler
}

// setup builds both handlers over a seeded in-memory database
func setup(t *testing.T) fixture {
	t.Helper()

	cfg := testutil.GetTestConfig(t)
	gdb := testutil.SetupTestDB(t)
	if _, err := seed.Run(context.Background(), gdb, cfg.DataDir); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	views, err := web.New()
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}
	photos, err := uploads.NewSet("photos", cfg.UploadDir, uploads.Images, cfg.MaxUploadBytes)
	if err != nil {
		t.Fatalf("Failed to create upload set: %v", err)
	}
	login := auth.NewLoginManager(auth.NewSessionStore(cfg.SessionTTL), "/login", false)

	return fixture{
		db:     gdb,
		cfg:    cfg,
		login:  login,
		photos: photos,
		views:  views,
		auth:   NewAuthHandler(gdb, cfg, login, views),
		main:   NewMainHandler(gdb, cfg, photos, views),
	}
}

// asUser marks the request as authenticated
func asUser(req *http.Request, userID uint) *http.Request {
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

// withURLParam sets a chi path parameter on the request
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// multipartRequest builds a multipart POST with form fields and an
// optional file
func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		part.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
