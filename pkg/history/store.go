package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating its directory if
// needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		target TEXT NOT NULL,
		project_name TEXT,
		variant TEXT,
		status TEXT NOT NULL,
		install_ok BOOLEAN,
		schema_ok BOOLEAN,
		dry_run BOOLEAN,
		files INTEGER,
		duration_ms INTEGER,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_variant ON runs(variant);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save inserts r, assigning an ID and timestamp when they are unset. It
// returns the stored run.
func (s *Store) Save(r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	r.Timestamp = r.Timestamp.UTC()

	_, err := s.db.Exec(`
	INSERT OR REPLACE INTO runs (
		id, timestamp, target, project_name, variant, status,
		install_ok, schema_ok, dry_run, files, duration_ms, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Timestamp, r.Target, r.ProjectName, r.Variant, string(r.Status),
		r.InstallOK, r.SchemaOK, r.DryRun, r.Files, r.Duration.Milliseconds(), r.Error,
	)
	if err != nil {
		return r, fmt.Errorf("failed to save run: %w", err)
	}
	return r, nil
}

// List returns the most recent runs first. A limit of zero or less returns
// every run.
func (s *Store) List(limit int) ([]Run, error) {
	query := `
	SELECT id, timestamp, target, project_name, variant, status,
		install_ok, schema_ok, dry_run, files, duration_ms, error
	FROM runs ORDER BY timestamp DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var status string
		var durationMs sql.NullInt64
		var projectName, variant, errText sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Target, &projectName, &variant, &status,
			&r.InstallOK, &r.SchemaOK, &r.DryRun, &r.Files, &durationMs, &errText,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.Status = Status(status)
		r.ProjectName = projectName.String
		r.Variant = variant.String
		r.Error = errText.String
		if durationMs.Valid {
			r.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Clear deletes every run and returns how many were removed.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}
