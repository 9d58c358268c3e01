// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrEmptyFile     = errors.New("file has no header row")
	ErrBadHeader     = errors.New("invalid header")
	ErrMalformedRow  = errors.New("malformed row")
	ErrMissingColumn = errors.New("missing column")
)

// missingTokens are the cell values read as missing, in addition to "".
var missingTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsMissing reports whether a raw CSV cell is a missing value
func IsMissing(cell string) bool {
	if cell == "" {
		return true
	}
	_, ok := missingTokens[cell]
	return ok
}

// Kind is the storage type inferred for a column
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	default:
		return "text"
	}
}

// Frame is a parsed CSV: a header and rows of equal width. Missing cells
// have Valid == false.
type Frame struct {
	Header []string
	Rows   [][]sql.NullString
}

// ReadCSV parses the file at path. Short rows are padded with missing
// cells; long rows, empty header names and duplicate header names are
// errors.
func ReadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV is ReadCSV over an arbitrary reader
func ParseCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	frame := &Frame{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrMalformedRow, line, len(record), len(header))
		}

		row := make([]sql.NullString, len(header))
		for i, cell := range record {
			if !IsMissing(cell) {
				row[i] = sql.NullString{String: cell, Valid: true}
			}
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: column %d has no name", ErrBadHeader, i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrBadHeader, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (f *Frame) Len() int { return len(f.Rows) }

// Column returns the index of the named column, or -1
func (f *Frame) Column(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Select returns a frame holding only the named columns, in the order given
func (f *Frame) Select(names ...string) (*Frame, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = f.Column(name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	out := &Frame{Header: append([]string(nil), names...), Rows: make([][]sql.NullString, len(f.Rows))}
	for r, row := range f.Rows {
		sel := make([]sql.NullString, len(idx))
		for i, c := range idx {
			sel[i] = row[c]
		}
		out.Rows[r] = sel
	}
	return out, nil
}

// DropMissing returns a frame without the rows that have any missing cell
func (f *Frame) DropMissing() *Frame {
	out := &Frame{Header: f.Header}
rows:
	for _, row := range f.Rows {
		for _, cell := range row {
			if !cell.Valid {
				continue rows
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// DedupeBy returns a frame keeping only the first row for each value of
// the named column
func (f *Frame) DedupeBy(name string) (*Frame, error) {
	c := f.Column(name)
	if c < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}

	out := &Frame{Header: f.Header}
	seen := make(map[sql.NullString]struct{}, len(f.Rows))
	for _, row := range f.Rows {
		if _, dup := seen[row[c]]; dup {
			continue
		}
		seen[row[c]] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Kind infers the column's storage type from its non-missing values.
// A column with no values is text.
func (f *Frame) Kind(col int) Kind {
	kind := KindInteger
	seen := false
	for _, row := range f.Rows {
		cell := row[col]
		if !cell.Valid {
			continue
		}
		seen = true
		if kind == KindInteger {
			if _, err := strconv.ParseInt(cell.String, 10, 64); err == nil {
				continue
			}
			kind = KindReal
		}
		if !isFloat(cell.String) {
			return KindText
		}
	}
	if !seen {
		return KindText
	}
	return kind
}

// Value converts a cell to the Go value stored for kind
func Value(cell sql.NullString, kind Kind) any {
	if !cell.Valid {
		return nil
	}
	switch kind {
	case KindInteger:
		n, _ := strconv.ParseInt(cell.String, 10, 64)
		return n
	case KindReal:
		x, _ := strconv.ParseFloat(cell.String, 64)
		return x
	default:
		return cell.String
	}
}

func isFloat(s string) bool {
	// ParseFloat accepts hex literals, CSV numbers never use them
	if strings.ContainsAny(s, "xXpP") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
