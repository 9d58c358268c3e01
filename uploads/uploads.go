// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var (
	ErrNotAllowed = errors.New("file type not allowed")
	ErrTooLarge   = errors.New("file too large")
	ErrBadName    = errors.New("invalid stored file name")
)

// Images lists the extensions accepted for image uploads
var Images = []string{"jpg", "jpe", "jpeg", "png", "gif", "svg", "bmp", "webp"}

// Set is a named upload destination restricted to a list of extensions.
// Files are stored as <dest>/<name>/<uuid>.<ext>.
type Set struct {
	Name       string
	Dir        string
	URLPrefix  string
	MaxBytes   int64
	extensions map[string]struct{}
}

// NewSet creates the set's directory if it does not exist
func NewSet(name, dest string, extensions []string, maxBytes int64) (*Set, error) {
	dir := filepath.Join(dest, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Set{
		Name:       name,
		Dir:        dir,
		URLPrefix:  "/uploads/" + name + "/",
		MaxBytes:   maxBytes,
		extensions: exts,
	}, nil
}

// Allowed reports whether filename has one of the set's extensions
func (s *Set) Allowed(filename string) bool {
	_, ok := s.extensions[extension(filename)]
	return ok
}

// Save copies an uploaded file into the set and returns its stored name
func (s *Set) Save(fh *multipart.FileHeader) (string, error) {
	ext := extension(fh.Filename)
	if _, ok := s.extensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrNotAllowed, fh.Filename)
	}
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", fmt.Errorf("%w: limit is %s", ErrTooLarge, humanize.IBytes(uint64(s.MaxBytes)))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	stored := uuid.NewString() + "." + ext
	dst, err := os.OpenFile(filepath.Join(s.Dir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", stored, err)
	}

	// Size in the header is client-supplied, so the copy is bounded too
	var r io.Reader = src
	if s.MaxBytes > 0 {
		r = io.LimitReader(src, s.MaxBytes+1)
	}
	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && n > s.MaxBytes {
		err = fmt.Errorf("%w: limit is %s", ErrTooLarge, humanize.IBytes(uint64(s.MaxBytes)))
	}
	if err != nil {
		os.Remove(filepath.Join(s.Dir, stored))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write %s: %w", stored, err)
	}
	return stored, nil
}

// Path returns the filesystem path of a stored file. Names that would
// leave the set's directory are rejected.
func (s *Set) Path(stored string) (string, error) {
	if stored == "" || stored != path.Base(stored) || strings.ContainsAny(stored, `/\`) || strings.HasPrefix(stored, ".") {
		return "", ErrBadName
	}
	return filepath.Join(s.Dir, stored), nil
}

// URL returns the public URL of a stored file
func (s *Set) URL(stored string) string {
	return s.URLPrefix + stored
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
