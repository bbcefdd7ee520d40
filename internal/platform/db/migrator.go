package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema files in name order. Each file is sent
// to the store as one multi-statement script; statements are never split here.
type Migrator struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	files  fs.FS
}

// NewMigrator creates a migrator over the embedded migrations.
func NewMigrator(pool *pgxpool.Pool, logger *slog.Logger) *Migrator {
	sub, _ := fs.Sub(migrationFiles, "migrations")
	return &Migrator{pool: pool, logger: logger, files: sub}
}

// Files lists migration files in application order.
func (m *Migrator) Files() ([]string, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, fmt.Errorf("platform/db: read migrations: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Run applies every file not yet recorded in schema_migrations and returns
// the names applied by this call.
func (m *Migrator) Run(ctx context.Context) ([]string, error) {
	if _, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("platform/db: create schema_migrations: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := m.pool.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("platform/db: list applied migrations: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		applied[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	names, err := m.Files()
	if err != nil {
		return nil, err
	}
	var ran []string
	for _, name := range names {
		if applied[name] {
			continue
		}
		script, err := fs.ReadFile(m.files, name)
		if err != nil {
			return ran, fmt.Errorf("platform/db: read %s: %w", name, err)
		}
		if m.logger != nil {
			m.logger.Info("applying migration", slog.String("file", name))
		}
		if _, err := m.pool.Exec(ctx, string(script)); err != nil {
			return ran, fmt.Errorf("platform/db: apply %s: %w", name, err)
		}
		if _, err := m.pool.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`, name); err != nil {
			return ran, fmt.Errorf("platform/db: record %s: %w", name, err)
		}
		ran = append(ran, name)
	}
	return ran, nil
}
