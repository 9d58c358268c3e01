// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/danielhkuo/paralympics/db"
	"github.com/danielhkuo/paralympics/middleware"
	"github.com/danielhkuo/paralympics/models"
)

var errUnknownColumn = errors.New("unknown column")

// Preferred defaults for the chart axes when the query omits them
const (
	defaultBy    = "NPC"
	defaultValue = "Total"
)

// numericTypes are the column type names, across dialects, that can be summed
var numericTypes = map[string]struct{}{
	"integer": {}, "int": {}, "int4": {}, "int8": {}, "bigint": {},
	"real": {}, "float4": {}, "float8": {}, "double precision": {}, "numeric": {},
}

// HandleIndex serves the dashboard page.
func (d *Dashboard) HandleIndex(w http.ResponseWriter, r *http.Request) {
	columns, err := d.columns(r.Context())
	if err != nil {
		d.logger.Error("failed to read medal columns", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title   string
		Prefix  string
		Columns []models.ColumnInfo
		By      string
		Value   string
	}{
		Title:   title,
		Prefix:  Prefix,
		Columns: columns,
	}
	data.By, data.Value, _ = pickAxes(columns, "", "")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		d.logger.Error("failed to render dashboard", "error", err)
	}
}

// HandleFallback serves the dashboard page for any other GET under the
// prefix so client-side paths reload. Other methods are rejected.
func (d *Dashboard) HandleFallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	d.HandleIndex(w, r)
}

// HandleColumns lists the medals table columns, excluding id.
func (d *Dashboard) HandleColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := d.columns(r.Context())
	if err != nil {
		d.logger.Error("failed to read medal columns", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to read columns")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, columns)
}

// HandleMedals returns the sum of one numeric column grouped by another,
// largest first.
func (d *Dashboard) HandleMedals(w http.ResponseWriter, r *http.Request) {
	columns, err := d.columns(r.Context())
	if err != nil {
		d.logger.Error("failed to read medal columns", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to read columns")
		return
	}

	q := r.URL.Query()
	by, value, err := pickAxes(columns, q.Get("by"), q.Get("value"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	points := []models.SeriesPoint{}
	err = d.db.WithContext(r.Context()).
		Table(models.MedalsTable).
		Select("? AS label, SUM(?) AS value", clause.Column{Name: by}, clause.Column{Name: value}).
		Clauses(clause.GroupBy{Columns: []clause.Column{{Name: by}}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "value"}, Desc: true}).
		Scan(&points).Error
	if err != nil {
		d.logger.Error("failed to aggregate medals", "by", by, "value", value, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to aggregate medals")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.Series{By: by, Value: value, Points: points})
}

// HandleRegions lists the region table in id order.
func (d *Dashboard) HandleRegions(w http.ResponseWriter, r *http.Request) {
	regions := []models.Region{}
	if err := d.db.WithContext(r.Context()).Order("id").Find(&regions).Error; err != nil {
		d.logger.Error("failed to list regions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to list regions")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, regions)
}

func (d *Dashboard) columns(ctx context.Context) ([]models.ColumnInfo, error) {
	tx := d.db.WithContext(ctx)
	if !db.TableExists(tx, models.MedalsTable) {
		// HasTable reports false on a failed lookup too
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []models.ColumnInfo{}, nil
	}
	types, err := tx.Migrator().ColumnTypes(models.MedalsTable)
	if err != nil {
		return nil, err
	}

	columns := make([]models.ColumnInfo, 0, len(types))
	for _, ct := range types {
		if ct.Name() == "id" {
			continue
		}
		_, numeric := numericTypes[strings.ToLower(ct.DatabaseTypeName())]
		columns = append(columns, models.ColumnInfo{Name: ct.Name(), Numeric: numeric})
	}
	return columns, nil
}

// pickAxes validates the requested grouping and value columns, filling in
// defaults for empty ones. value must be numeric.
func pickAxes(columns []models.ColumnInfo, by, value string) (string, string, error) {
	lookup := make(map[string]bool, len(columns))
	for _, c := range columns {
		lookup[c.Name] = c.Numeric
	}

	if by == "" {
		by = firstColumn(columns, defaultBy, false)
	}
	if value == "" {
		value = firstColumn(columns, defaultValue, true)
	}

	if _, ok := lookup[by]; !ok {
		return by, value, fmt.Errorf("%w: by=%q", errUnknownColumn, by)
	}
	numeric, ok := lookup[value]
	if !ok {
		return by, value, fmt.Errorf("%w: value=%q", errUnknownColumn, value)
	}
	if !numeric {
		return by, value, fmt.Errorf("value column %q is not numeric", value)
	}
	return by, value, nil
}

// firstColumn returns preferred if present, otherwise the first column
// whose numeric flag matches
func firstColumn(columns []models.ColumnInfo, preferred string, numeric bool) string {
	for _, c := range columns {
		if c.Name == preferred {
			return c.Name
		}
	}
	for _, c := range columns {
		if c.Numeric == numeric {
			return c.Name
		}
	}
	return ""
}
