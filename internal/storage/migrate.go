package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// addedColumns are task columns that older databases may lack. They are
// added in place before the migration scripts run.
var addedColumns = []struct {
	name string
	def  string
}{
	{name: "due_at", def: "TEXT"},
	{name: "status", def: "TEXT NOT NULL DEFAULT 'active'"},
	{name: "completed_at", def: "TEXT"},
}

// MigrateUp applies every SQLite up migration. The scripts are idempotent so
// this runs on every start.
func MigrateUp(db *sql.DB) error {
	if err := addMissingColumns(db); err != nil {
		return err
	}
	return applyMigrations(db, "sqlite", ".up.sql")
}

// addMissingColumns upgrades an existing tasks table column by column. A
// database without the table is left to the scripts.
func addMissingColumns(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(tasks)`)
	if err != nil {
		return fmt.Errorf("inspect tasks table: %w", err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan tasks column: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("inspect tasks table: %w", err)
	}
	if len(existing) == 0 {
		return nil
	}
	for _, col := range addedColumns {
		if existing[col.name] {
			continue
		}
		if _, err := db.Exec(`ALTER TABLE tasks ADD COLUMN ` + col.name + ` ` + col.def); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}
	return nil
}

func MigrateDown(db *sql.DB) error {
	return applyMigrations(db, "sqlite", ".down.sql")
}

func applyMigrations(db *sql.DB, dialect, suffix string) error {
	return eachMigration(dialect, suffix, func(name, script string) error {
		if _, err := db.Exec(script); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		return nil
	})
}

// MigratePostgresUp applies the PostgreSQL up migrations one statement at a time.
func MigratePostgresUp(ctx context.Context, pool *pgxpool.Pool) error {
	return migratePostgres(ctx, pool, ".up.sql")
}

func MigratePostgresDown(ctx context.Context, pool *pgxpool.Pool) error {
	return migratePostgres(ctx, pool, ".down.sql")
}

func migratePostgres(ctx context.Context, pool *pgxpool.Pool, suffix string) error {
	return eachMigration("postgres", suffix, func(name, script string) error {
		for _, stmt := range strings.Split(script, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		return nil
	})
}

func eachMigration(dialect, suffix string, apply func(name, script string) error) error {
	entries, err := fs.Glob(migrationFiles, "migrations/"+dialect+"/*"+suffix)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	if suffix == ".down.sql" {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	}
	for _, name := range entries {
		script, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if err := apply(name, string(script)); err != nil {
			return err
		}
	}
	return nil
}
