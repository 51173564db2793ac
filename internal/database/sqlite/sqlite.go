// Package sqlite is the single-file runner store for a booth laptop without a
// database server.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/database"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var dialect = database.Dialect{
	CreateMigrationsTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	RecordMigration: "INSERT INTO schema_migrations (version) VALUES (?)",
}

func init() {
	database.RegisterBackend("sqlite", Open)
}

// OpenDB opens the database file and applies migrations. SQLite allows one
// writer at a time, so the pool is limited to a single connection.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	if _, err := database.Migrate(ctx, db, sub, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}

	return db, nil
}

// Open is the registered backend opener; cfg.URL is the database file path.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
	log.Printf("using sqlite runner store at %s", cfg.URL)
	db, err := OpenDB(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	return NewRunnerStore(db), nil
}
