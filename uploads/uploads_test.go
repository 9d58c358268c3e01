// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a *multipart.FileHeader the way net/http would
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, fh, err := req.FormFile("photo")
	require.NoError(t, err)
	return fh
}

func TestNewSet_CreatesDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested")

	set, err := NewSet("photos", dest, Images, 1024)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dest, "photos"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "/uploads/photos/", set.URLPrefix)
}

func TestSet_Allowed(t *testing.T) {
	set, err := NewSet("photos", t.TempDir(), Images, 1024)
	require.NoError(t, err)

	tests := []struct {
		filename string
		want     bool
	}{
		{"me.jpg", true},
		{"me.JPEG", true},
		{"icon.svg", true},
		{"anim.webp", true},
		{"script.js", false},
		{"archive.tar.gz", false},
		{"noext", false},
		{"png", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Allowed(tt.filename))
		})
	}
}

func TestSet_Save(t *testing.T) {
	set, err := NewSet("photos", t.TempDir(), Images, 1024)
	require.NoError(t, err)

	stored, err := set.Save(fileHeader(t, "Portrait.PNG", []byte("fake png")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, ".png"))
	assert.Len(t, stored, 36+len(".png"))

	p, err := set.Path(stored)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "fake png", string(data))
	assert.Equal(t, "/uploads/photos/"+stored, set.URL(stored))
}

func TestSet_SaveRejects(t *testing.T) {
	set, err := NewSet("photos", t.TempDir(), Images, 8)
	require.NoError(t, err)

	_, err = set.Save(fileHeader(t, "evil.exe", []byte("MZ")))
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = set.Save(fileHeader(t, "big.jpg", bytes.Repeat([]byte("x"), 64)))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "8 B")

	entries, err := os.ReadDir(set.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSet_Path(t *testing.T) {
	set, err := NewSet("photos", t.TempDir(), Images, 1024)
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/b.png", `a\b.png`, ".hidden", ".."} {
		_, err := set.Path(name)
		assert.ErrorIs(t, err, ErrBadName, "name %q", name)
	}
}
