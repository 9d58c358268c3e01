// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielhkuo/paralympics/metrics"
	"github.com/danielhkuo/paralympics/models"
)

// Source file names inside the data directory
const (
	RegionsFile = "noc_regions.csv"
	MedalsFile  = "all_medals.csv"
)

const (
	regionColumn = "region"
	idColumn     = "id"
	batchSize    = 500
)

// Summary is the row count written to each derived table
type Summary struct {
	Regions int
	Medals  int
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger Run reports row counts to. The default is
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Run rebuilds the region and medals tables from the CSV files in dataDir
func Run(ctx context.Context, db *gorm.DB, dataDir string, opts ...Option) (Summary, error) {
	o := runOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	var summary Summary

	n, err := loadRegions(ctx, db, filepath.Join(dataDir, RegionsFile))
	if err != nil {
		return summary, err
	}
	summary.Regions = n
	metrics.RecordSeed(models.RegionTable, n)
	o.logger.InfoContext(ctx, "table seeded", "table", models.RegionTable, "rows", humanize.Comma(int64(n)))

	n, err = loadMedals(ctx, db, filepath.Join(dataDir, MedalsFile))
	if err != nil {
		return summary, err
	}
	summary.Medals = n
	metrics.RecordSeed(models.MedalsTable, n)
	o.logger.InfoContext(ctx, "table seeded", "table", models.MedalsTable, "rows", humanize.Comma(int64(n)))

	return summary, nil
}

// LoadRegions replaces the region table with the distinct, non-missing
// values of the region column at path. IDs are assigned 0..n-1 in first
// appearance order.
func LoadRegions(ctx context.Context, db *gorm.DB, path string) error {
	_, err := loadRegions(ctx, db, path)
	return err
}

// LoadMedals replaces the medals table with the fully populated rows at
// path. IDs are assigned 0..m-1 in file order.
func LoadMedals(ctx context.Context, db *gorm.DB, path string) error {
	_, err := loadMedals(ctx, db, path)
	return err
}

func loadRegions(ctx context.Context, db *gorm.DB, path string) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &DataLoadError{Table: models.RegionTable, Path: path, Err: err}
	}

	frame, err := ReadCSV(path)
	if err != nil {
		return fail(err)
	}
	frame, err = frame.Select(regionColumn)
	if err != nil {
		return fail(err)
	}
	frame, err = frame.DropMissing().DedupeBy(regionColumn)
	if err != nil {
		return fail(err)
	}

	regions := make([]models.Region, frame.Len())
	for i, row := range frame.Rows {
		regions[i] = models.Region{ID: i, Region: row[0].String}
	}

	err = replaceTable(ctx, db, models.RegionTable, func(tx *gorm.DB) error {
		if err := tx.Migrator().CreateTable(&models.Region{}); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
		if len(regions) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&regions, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return len(regions), nil
}

func loadMedals(ctx context.Context, db *gorm.DB, path string) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &DataLoadError{Table: models.MedalsTable, Path: path, Err: err}
	}

	frame, err := ReadCSV(path)
	if err != nil {
		return fail(err)
	}
	frame = frame.DropMissing()

	// A source id column is replaced by the positional id
	type column struct {
		index int
		name  string
		kind  Kind
	}
	var columns []column
	for i, name := range frame.Header {
		if strings.EqualFold(name, idColumn) {
			continue
		}
		columns = append(columns, column{index: i, name: name, kind: frame.Kind(i)})
	}

	rows := make([]map[string]any, frame.Len())
	for r, cells := range frame.Rows {
		row := make(map[string]any, len(columns)+1)
		row[idColumn] = r
		for _, col := range columns {
			row[col.name] = Value(cells[col.index], col.kind)
		}
		rows[r] = row
	}

	err = replaceTable(ctx, db, models.MedalsTable, func(tx *gorm.DB) error {
		if err := tx.Migrator().CreateTable(&models.Medal{}); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
		for _, col := range columns {
			ddl := "ALTER TABLE ? ADD COLUMN ? " + columnType(tx, col.kind)
			if err := tx.Exec(ddl, clause.Table{Name: models.MedalsTable}, clause.Column{Name: col.name}).Error; err != nil {
				return fmt.Errorf("failed to add column %q: %w", col.name, err)
			}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Table(models.MedalsTable).CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return len(rows), nil
}

// replaceTable drops table and runs create in one transaction. On error
// the transaction rolls back and the previous table is left intact.
func replaceTable(ctx context.Context, db *gorm.DB, table string, create func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
		return create(tx)
	})
}

// columnType maps an inferred kind to the dialect's column type
func columnType(tx *gorm.DB, kind Kind) string {
	postgres := tx.Dialector.Name() == "postgres"
	switch kind {
	case KindInteger:
		if postgres {
			return "bigint"
		}
		return "INTEGER"
	case KindReal:
		if postgres {
			return "double precision"
		}
		return "REAL"
	default:
		if postgres {
			return "text"
		}
		return "TEXT"
	}
}
