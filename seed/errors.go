// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import "fmt"

// DataLoadError reports a seed CSV that could not be read, parsed or
// written to its table.
type DataLoadError struct {
	Table string
	Path  string
	Err   error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load %s from %s: %v", e.Table, e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }
