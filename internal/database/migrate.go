package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Dialect holds the SQL that differs between backends for migration bookkeeping.
type Dialect struct {
	// CreateMigrationsTable creates schema_migrations if it is missing.
	CreateMigrationsTable string
	// RecordMigration inserts one applied version; takes a single parameter.
	RecordMigration string
}

// appliedMigrations returns a set of already-applied migration versions.
func appliedMigrations(ctx context.Context, db *sql.DB, d Dialect) (map[string]bool, error) {
	if _, err := db.ExecContext(ctx, d.CreateMigrationsTable); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

// pendingMigrations returns sorted SQL migration filenames not yet applied.
func pendingMigrations(fsys fs.FS, applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") && !applied[e.Name()] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements splits a migration file on statement-terminating semicolons.
// Migrations must not contain semicolons inside string literals.
func splitStatements(content string) []string {
	var stmts []string
	for part := range strings.SplitSeq(content, ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Migrate applies every pending migration in fsys, one transaction per file,
// and returns the versions it applied.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, d Dialect) ([]string, error) {
	applied, err := appliedMigrations(ctx, db, d)
	if err != nil {
		return nil, err
	}

	files, err := pendingMigrations(fsys, applied)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, file := range files {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return done, fmt.Errorf("begin transaction for %s: %w", file, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return done, fmt.Errorf("execute migration %s: %w", file, err)
			}
		}

		if _, err := tx.ExecContext(ctx, d.RecordMigration, file); err != nil {
			_ = tx.Rollback()
			return done, fmt.Errorf("record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return done, fmt.Errorf("commit migration %s: %w", file, err)
		}

		fmt.Printf("Applied migration: %s\n", file)
		done = append(done, file)
	}

	return done, nil
}
