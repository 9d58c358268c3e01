// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/models"
)

// SchemaError reports that the required tables could not be created.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("failed to create schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - AutoMigrate only adds what is missing.
func CreateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return &SchemaError{Err: err}
	}
	return nil
}
