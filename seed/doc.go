// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package seed rebuilds the derived region and medals tables from CSV.

	summary, err := seed.Run(ctx, db, cfg.DataDir, seed.WithLogger(logger))

Run reads noc_regions.csv and all_medals.csv from the data directory and
logs each table's row count to the given logger, or slog.Default().

# Regions

Only the region column is kept. Missing values are dropped, then
duplicates, keeping the first occurrence. The remaining names get ids
0..n-1 in file order.

# Medals

Rows with any missing value are dropped. Every other column is kept, in
header order, after a positional id. Each column is stored as INTEGER,
REAL or TEXT depending on what all its values parse as.

# Missing Values

A cell is missing when it is empty or one of the tokens NA, N/A, NaN,
NULL, None and friends (see IsMissing). Short rows are padded with missing
cells. Long rows are an error.

# Replacement

Each table is dropped and recreated in a single transaction, so a failed
load leaves the previous table in place. Ids are positional and change
whenever the source changes.

Every failure is returned as a *DataLoadError naming the table and file.
*/
package seed
