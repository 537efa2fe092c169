// Package history persists per-persona run outcomes to a local
// SQLite database, giving `autodev history` and post-hoc debugging a
// record of what each run produced.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mfateev/autodev-temporal-go/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS persona_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	persona_id    TEXT NOT NULL,
	branch        TEXT NOT NULL DEFAULT '',
	patch_bytes   INTEGER NOT NULL DEFAULT 0,
	files_touched INTEGER NOT NULL DEFAULT 0,
	applied       INTEGER NOT NULL DEFAULT 0,
	pushed        INTEGER NOT NULL DEFAULT 0,
	pr_url        TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_persona_runs_run_id ON persona_runs(run_id);
`

// Record is one stored persona outcome.
type Record struct {
	models.PersonaOutcome
	CreatedAt time.Time `json:"created_at"`
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path,
// including parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one persona outcome.
func (s *Store) Record(ctx context.Context, o models.PersonaOutcome) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO persona_runs
	(run_id, persona_id, branch, patch_bytes, files_touched, applied, pushed, pr_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.PersonaID, o.Branch, o.PatchBytes, o.FilesTouched,
		o.Applied, o.Pushed, o.PRURL, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record persona run: %w", err)
	}
	return nil
}

// SetPRURL stamps the pull-request URL on the recorded outcome for
// one persona of a run. The PR exists only after every persona has
// run, so the row is written first and completed here.
func (s *Store) SetPRURL(ctx context.Context, runID, personaID, prURL string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE persona_runs SET pr_url = ? WHERE run_id = ? AND persona_id = ?`,
		prURL, runID, personaID)
	if err != nil {
		return fmt.Errorf("set pr url: %w", err)
	}
	return nil
}

// Recent returns the latest n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, persona_id, branch, patch_bytes, files_touched, applied, pushed, pr_url, created_at
FROM persona_runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query persona runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.RunID, &rec.PersonaID, &rec.Branch,
			&rec.PatchBytes, &rec.FilesTouched, &rec.Applied, &rec.Pushed,
			&rec.PRURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan persona run: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
