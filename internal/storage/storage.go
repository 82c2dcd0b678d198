// Package storage opens the local sqlite database, applies migrations,
// and hands out the repositories built on it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/draytht/lvsk-calendar-extended/internal/repositories/credentials"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/events"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/tasks"
	"github.com/draytht/lvsk-calendar-extended/internal/storage/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Storage bundles the database handle and the repositories over it. The
// handle is exported because the services layer runs read-modify-write
// edits inside transactions.
type Storage struct {
	DB          *sql.DB
	Events      events.Repository
	Tasks       tasks.Repository
	Credentials credentials.Repository
}

// Open opens (creating if needed) the sqlite database at dsn, applies
// pragmas and pending migrations, and returns the repositories.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{
		DB:          db,
		Events:      events.NewSQLiteRepository(db),
		Tasks:       tasks.NewSQLiteRepository(db),
		Credentials: credentials.NewSQLiteRepository(db),
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.DB.Close()
}
