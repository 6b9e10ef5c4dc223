package history

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the newest schema this package can read and write.
const SchemaVersion = 1

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS executions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_unix_nano INTEGER NOT NULL UNIQUE,
  tag TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS class_coverage (
  execution_id INTEGER NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
  assembly_name TEXT NOT NULL,
  class_name TEXT NOT NULL,
  covered_lines INTEGER NOT NULL,
  coverable_lines INTEGER NOT NULL,
  total_lines INTEGER NOT NULL,
  covered_branches INTEGER NOT NULL,
  total_branches INTEGER NOT NULL,
  covered_code_elements INTEGER NOT NULL,
  full_covered_code_elements INTEGER NOT NULL,
  total_code_elements INTEGER NOT NULL,
  PRIMARY KEY (execution_id, assembly_name, class_name)
);
CREATE INDEX IF NOT EXISTS idx_class_coverage_class ON class_coverage(assembly_name, class_name);
`,
	},
}

// EnsureSchema applies all pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
