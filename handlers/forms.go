// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/models"
)

var errBadRegion = errors.New("unknown region")

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name so errors line up with inputs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}()

// validateForm returns per-field messages, or nil when form is valid
func validateForm(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": "Invalid form."}
	}

	msgs := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := msgs[fe.Field()]; seen {
			continue
		}
		msgs[fe.Field()] = message(fe)
	}
	return msgs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	case "alphanum":
		return "Use letters and digits only."
	default:
		return "Invalid value."
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseRegionID reads an optional region select value. An empty value is
// no region; anything else must name an existing region row.
func parseRegionID(db *gorm.DB, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errBadRegion
	}

	var count int64
	if err := db.Model(&models.Region{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errBadRegion
	}
	return &id, nil
}

// listRegions returns every region sorted by name, for select inputs
func listRegions(db *gorm.DB) ([]models.Region, error) {
	var regions []models.Region
	err := db.Order("region").Find(&regions).Error
	return regions, err
}
