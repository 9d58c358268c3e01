// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

var ErrUnsupportedDatabase = errors.New("unsupported database type")

const pingTimeout = 5 * time.Second

// Open connects to the database and returns the gorm binding shared by the
// whole application. SQLite uses the pure-Go modernc driver and PostgreSQL
// uses lib/pq; gorm wraps the resulting *sql.DB.
func Open(ctx context.Context, databaseType, url string, logger *slog.Logger) (*gorm.DB, error) {
	var (
		conn      *sql.DB
		dialector gorm.Dialector
		err       error
	)

	switch databaseType {
	case TypeSQLite:
		conn, err = sql.Open("sqlite", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// One connection keeps in-memory databases alive and serialises writers
		conn.SetMaxOpenConns(1)
		dialector = sqlite.New(sqlite.Config{Conn: conn})
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: conn})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, databaseType)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialise gorm: %w", err)
	}

	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	conn, err := gdb.DB()
	if err != nil {
		return err
	}
	return conn.Close()
}

// TableExists reports whether a table is present.
func TableExists(gdb *gorm.DB, table string) bool {
	return gdb.Migrator().HasTable(table)
}
