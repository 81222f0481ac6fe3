package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// Run is one recorded pipeline run.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Source     string
	TopicCount int
	Invalid    int
	Fallback   bool
	Topics     []topic.Topic
}

// Store keeps a run history in SQLite. It is purely additive audit
// state; the pipeline runs fine without one.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and initializes) a run-history database with WAL mode
// enabled.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	source TEXT,
	topic_count INTEGER NOT NULL,
	invalid_count INTEGER NOT NULL,
	fallback INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_topics (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	page INTEGER NOT NULL,
	line INTEGER NOT NULL,
	is_key_issue INTEGER NOT NULL,
	confidence REAL NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun records a run and its canonical topic list.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, topic_count, invalid_count, fallback)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.Source,
		run.TopicCount, run.Invalid, boolToInt(run.Fallback))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, t := range run.Topics {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal topic %d: %w", i+1, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_topics (run_id, position, title, page, line, is_key_issue, confidence, payload)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i+1, t.Title, t.Page, t.Line, boolToInt(t.IsKeyIssue), t.Confidence, string(payload))
		if err != nil {
			return fmt.Errorf("insert topic %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// GetRun loads one run with its topics in canonical order.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var created string
	var fallback int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, topic_count, invalid_count, fallback FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &created, &run.Source, &run.TopicCount, &run.Invalid, &fallback)
	if err != nil {
		return Run{}, fmt.Errorf("load run: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, created)
	run.Fallback = fallback != 0

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM run_topics WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, fmt.Errorf("load topics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return Run{}, err
		}
		var t topic.Topic
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return Run{}, fmt.Errorf("decode stored topic: %w", err)
		}
		run.Topics = append(run.Topics, t)
	}
	return run, rows.Err()
}

// ListRuns returns run headers (no topics), newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, topic_count, invalid_count, fallback
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var created string
		var fallback int
		if err := rows.Scan(&run.ID, &created, &run.Source, &run.TopicCount, &run.Invalid, &fallback); err != nil {
			return nil, err
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, created)
		run.Fallback = fallback != 0
		out = append(out, run)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
