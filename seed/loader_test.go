// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/metrics"
	"github.com/danielhkuo/paralympics/models"
	"github.com/danielhkuo/paralympics/seed"
	tu "github.com/danielhkuo/paralympics/testutil"
)

func regions(t *testing.T, gdb *gorm.DB) []models.Region {
	t.Helper()
	var out []models.Region
	require.NoError(t, gdb.Order("id").Find(&out).Error)
	return out
}

func medals(t *testing.T, gdb *gorm.DB) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, gdb.Table(models.MedalsTable).Order("id").Find(&out).Error)
	return out
}

func TestLoadRegions(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	path := tu.WriteCSV(t, t.TempDir(), seed.RegionsFile, tu.RegionsCSV)

	require.NoError(t, seed.LoadRegions(context.Background(), gdb, path))

	got := regions(t, gdb)
	want := []models.Region{
		{ID: 0, Region: "Afghanistan"},
		{ID: 1, Region: "Australia"},
		{ID: 2, Region: "UK"},
		{ID: 3, Region: "France"},
	}
	assert.Equal(t, want, got)
}

func TestLoadRegions_ReplacesTable(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	dir := t.TempDir()
	ctx := context.Background()

	first := tu.WriteCSV(t, dir, "first.csv", tu.RegionsCSV)
	require.NoError(t, seed.LoadRegions(ctx, gdb, first))

	second := tu.WriteCSV(t, dir, "second.csv", "NOC,region\nJPN,Japan\n")
	require.NoError(t, seed.LoadRegions(ctx, gdb, second))

	assert.Equal(t, []models.Region{{ID: 0, Region: "Japan"}}, regions(t, gdb))
}

func TestLoadRegions_Idempotent(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	path := tu.WriteCSV(t, t.TempDir(), seed.RegionsFile, tu.RegionsCSV)
	ctx := context.Background()

	require.NoError(t, seed.LoadRegions(ctx, gdb, path))
	once := regions(t, gdb)
	require.NoError(t, seed.LoadRegions(ctx, gdb, path))

	assert.Equal(t, once, regions(t, gdb))
}

func TestLoadRegions_DuplicatesAndBlanks(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	path := tu.WriteCSV(t, t.TempDir(), seed.RegionsFile, "NOC,region\nGBR,UK\nENG,UK\nFRA,FR\nXXX,\n")

	require.NoError(t, seed.LoadRegions(context.Background(), gdb, path))

	assert.Equal(t, []models.Region{{ID: 0, Region: "UK"}, {ID: 1, Region: "FR"}}, regions(t, gdb))
}

func TestLoadRegions_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "absent.csv"), nil},
		{"missing column", tu.WriteCSV(t, dir, "nocol.csv", "NOC,notes\nAFG,\n"), seed.ErrMissingColumn},
		{"malformed", tu.WriteCSV(t, dir, "long.csv", "NOC,region\nAFG,Afghanistan,extra\n"), seed.ErrMalformedRow},
		{"duplicate header", tu.WriteCSV(t, dir, "dup.csv", "region,region\na,b\n"), seed.ErrBadHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb := tu.SetupTestDB(t)
			err := seed.LoadRegions(context.Background(), gdb, tt.path)

			var loadErr *seed.DataLoadError
			require.True(t, errors.As(err, &loadErr), "want *DataLoadError, got %v", err)
			assert.Equal(t, models.RegionTable, loadErr.Table)
			assert.Equal(t, tt.path, loadErr.Path)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadMedals(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	path := tu.WriteCSV(t, t.TempDir(), seed.MedalsFile, tu.MedalsCSV)

	require.NoError(t, seed.LoadMedals(context.Background(), gdb, path))

	rows := medals(t, gdb)
	require.Len(t, rows, 3)

	var npcs []string
	for i, row := range rows {
		assert.EqualValues(t, i, row["id"])
		npcs = append(npcs, row["NPC"].(string))
		for col, v := range row {
			assert.NotNil(t, v, "row %d column %s", i, col)
		}
	}
	assert.Equal(t, []string{"GBR", "AUS", "FRA"}, npcs)
	assert.EqualValues(t, 34, rows[0]["Gold"])
}

func TestLoadMedals_ColumnsAndTypes(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	path := tu.WriteCSV(t, t.TempDir(), seed.MedalsFile, "id,Year,Host,Share\n9,2012,London,0.5\n8,2016,Rio,1\n")

	require.NoError(t, seed.LoadMedals(context.Background(), gdb, path))

	types, err := gdb.Migrator().ColumnTypes(models.MedalsTable)
	require.NoError(t, err)

	got := map[string]string{}
	var order []string
	for _, ct := range types {
		got[ct.Name()] = strings.ToUpper(ct.DatabaseTypeName())
		order = append(order, ct.Name())
	}
	assert.Equal(t, []string{"id", "Year", "Host", "Share"}, order)
	assert.Equal(t, "INTEGER", got["Year"])
	assert.Equal(t, "TEXT", got["Host"])
	assert.Equal(t, "REAL", got["Share"])

	// Source id values are replaced by positions
	rows := medals(t, gdb)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 0, rows[0]["id"])
	assert.EqualValues(t, 1, rows[1]["id"])
}

func TestLoadMedals_FailedWriteKeepsPreviousTable(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	dir := t.TempDir()
	ctx := context.Background()

	good := tu.WriteCSV(t, dir, "good.csv", tu.MedalsCSV)
	require.NoError(t, seed.LoadMedals(ctx, gdb, good))

	// Distinct in the file, but SQLite column names are case-insensitive
	clash := tu.WriteCSV(t, dir, "clash.csv", "Gold,gold\n1,2\n")
	err := seed.LoadMedals(ctx, gdb, clash)

	var loadErr *seed.DataLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, models.MedalsTable, loadErr.Table)
	assert.Len(t, medals(t, gdb), 3)
}

func TestLoadMedals_EmptyAfterDrop(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	path := tu.WriteCSV(t, t.TempDir(), seed.MedalsFile, "Year,Gold\n2012,\n")

	require.NoError(t, seed.LoadMedals(context.Background(), gdb, path))

	assert.Empty(t, medals(t, gdb))
	assert.True(t, gdb.Migrator().HasColumn(models.MedalsTable, "Gold"))
}

func TestRun(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	dir := tu.WriteFixtures(t)

	summary, err := seed.Run(context.Background(), gdb, dir)
	require.NoError(t, err)

	assert.Equal(t, seed.Summary{Regions: 4, Medals: 3}, summary)
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.SeededRows.WithLabelValues(models.RegionTable)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.SeededRows.WithLabelValues(models.MedalsTable)))
}

func TestRun_WithLogger(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	dir := tu.WriteFixtures(t)

	var global bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&global, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	_, err := seed.Run(context.Background(), gdb, dir, seed.WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="table seeded" table=region rows=4`)
	assert.Contains(t, out, `msg="table seeded" table=medals rows=3`)
	assert.Empty(t, global.String())
}

func TestRun_MissingMedalsFile(t *testing.T) {
	gdb := tu.SetupTestDB(t)
	dir := t.TempDir()
	tu.WriteCSV(t, dir, seed.RegionsFile, tu.RegionsCSV)

	_, err := seed.Run(context.Background(), gdb, dir)

	var loadErr *seed.DataLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, models.MedalsTable, loadErr.Table)
	assert.Equal(t, filepath.Join(dir, seed.MedalsFile), loadErr.Path)
}
