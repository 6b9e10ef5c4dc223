// Package history persists per-class coverage snapshots between runs so that
// renderers can show coverage trends.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IgorBayerl/covreport/internal/model"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Execution is one persisted report run.
type Execution struct {
	ID            int64
	ExecutionTime time.Time
	Tag           string
}

// Store is a SQLite backed history of class coverage snapshots.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens (and creates if needed) the history database at path.
func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	dsn, err := sqliteDSN(cleanPath)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db}, nil
}

// sqliteDSN builds a file: URI for path. The path is percent-encoded so that
// '#', '?' and '%' in directory names stay part of the file name.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve history path %q: %w", path, err)
	}
	uriPath := filepath.ToSlash(abs)
	if !strings.HasPrefix(uriPath, "/") {
		uriPath = "/" + uriPath
	}
	query := url.Values{}
	for _, pragma := range []string{"busy_timeout(2000)", "journal_mode(WAL)", "foreign_keys(ON)"} {
		query.Add("_pragma", pragma)
	}
	u := &url.URL{Scheme: "file", Path: uriPath, RawQuery: query.Encode()}
	return u.String(), nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Executions lists the stored executions, oldest first.
func (s *Store) Executions(ctx context.Context) ([]Execution, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, ts_unix_nano, tag FROM executions ORDER BY ts_unix_nano ASC`)
	if err != nil {
		return nil, fmt.Errorf("load executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		var (
			e  Execution
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Tag); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		e.ExecutionTime = time.Unix(0, ts).UTC()
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate execution rows: %w", err)
	}
	return executions, nil
}

// ApplyHistoricCoverage attaches the snapshots of the newest maxEntries executions
// to the matching classes, oldest first. maxEntries <= 0 loads every execution.
// It returns the number of records attached.
func (s *Store) ApplyHistoricCoverage(ctx context.Context, assemblies []*model.Assembly, maxEntries int) (int, error) {
	classes := make(map[classKey]*model.Class)
	for _, a := range assemblies {
		for _, c := range a.Classes {
			classes[classKey{a.Name, c.Name}] = c
		}
	}
	if len(classes) == 0 {
		return 0, nil
	}

	limit := maxEntries
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT
  e.ts_unix_nano, e.tag, c.assembly_name, c.class_name,
  c.covered_lines, c.coverable_lines, c.total_lines,
  c.covered_branches, c.total_branches,
  c.covered_code_elements, c.full_covered_code_elements, c.total_code_elements
FROM class_coverage c
JOIN (SELECT id, ts_unix_nano, tag FROM executions ORDER BY ts_unix_nano DESC LIMIT ?) e
  ON e.id = c.execution_id
ORDER BY e.ts_unix_nano ASC, c.assembly_name ASC, c.class_name ASC`, limit)
	if err != nil {
		return 0, fmt.Errorf("load historic coverage: %w", err)
	}
	defer rows.Close()

	applied := 0
	for rows.Next() {
		var (
			ts  int64
			key classKey
			hc  model.HistoricCoverage
		)
		if err := rows.Scan(
			&ts, &hc.Tag, &key.assembly, &key.class,
			&hc.CoveredLines, &hc.CoverableLines, &hc.TotalLines,
			&hc.CoveredBranches, &hc.TotalBranches,
			&hc.CoveredCodeElements, &hc.FullCoveredCodeElements, &hc.TotalCodeElements,
		); err != nil {
			return applied, fmt.Errorf("scan historic coverage row: %w", err)
		}
		class, ok := classes[key]
		if !ok {
			continue
		}
		hc.ExecutionTime = time.Unix(0, ts).UTC()
		class.AddHistoricCoverage(hc)
		applied++
	}
	if err := rows.Err(); err != nil {
		return applied, fmt.Errorf("iterate historic coverage rows: %w", err)
	}
	return applied, nil
}

// Save persists one snapshot per class for the execution. Saving the same
// execution time again replaces the earlier values.
func (s *Store) Save(ctx context.Context, assemblies []*model.Assembly, executionTime time.Time, tag string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := executionTime.UTC().UnixNano()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO executions (ts_unix_nano, tag) VALUES (?, ?)
ON CONFLICT(ts_unix_nano) DO UPDATE SET tag=excluded.tag`, ts, tag); err != nil {
		return fmt.Errorf("save execution: %w", err)
	}

	var executionID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM executions WHERE ts_unix_nano = ?`, ts).Scan(&executionID); err != nil {
		return fmt.Errorf("read execution id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO class_coverage (
  execution_id, assembly_name, class_name,
  covered_lines, coverable_lines, total_lines,
  covered_branches, total_branches,
  covered_code_elements, full_covered_code_elements, total_code_elements
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(execution_id, assembly_name, class_name) DO UPDATE SET
  covered_lines=excluded.covered_lines,
  coverable_lines=excluded.coverable_lines,
  total_lines=excluded.total_lines,
  covered_branches=excluded.covered_branches,
  total_branches=excluded.total_branches,
  covered_code_elements=excluded.covered_code_elements,
  full_covered_code_elements=excluded.full_covered_code_elements,
  total_code_elements=excluded.total_code_elements`)
	if err != nil {
		return fmt.Errorf("prepare class coverage insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assemblies {
		for _, c := range a.Classes {
			hc := model.NewHistoricCoverage(c, executionTime, tag)
			if _, err := stmt.ExecContext(ctx,
				executionID, a.Name, c.Name,
				hc.CoveredLines, hc.CoverableLines, hc.TotalLines,
				hc.CoveredBranches, hc.TotalBranches,
				hc.CoveredCodeElements, hc.FullCoveredCodeElements, hc.TotalCodeElements,
			); err != nil {
				return fmt.Errorf("save coverage of class %q: %w", c.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Prune deletes all but the newest maxEntries executions. maxEntries <= 0 keeps everything.
// It returns the number of deleted executions.
func (s *Store) Prune(ctx context.Context, maxEntries int) (int64, error) {
	if maxEntries <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
DELETE FROM executions WHERE id NOT IN (
  SELECT id FROM executions ORDER BY ts_unix_nano DESC LIMIT ?
)`, maxEntries)
	if err != nil {
		return 0, fmt.Errorf("prune executions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune executions: %w", err)
	}
	return n, nil
}

type classKey struct {
	assembly string
	class    string
}
