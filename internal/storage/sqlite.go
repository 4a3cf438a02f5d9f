package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite is a single-file Store for local runs.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// Writers are serialised.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generation_logs (
		id            TEXT PRIMARY KEY,
		created_at    INTEGER NOT NULL,
		kind          TEXT NOT NULL,
		status        TEXT NOT NULL,
		days          INTEGER NOT NULL DEFAULT 0,
		exercises     INTEGER NOT NULL DEFAULT 0,
		duration_ms   INTEGER NOT NULL DEFAULT 0,
		error_message TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating generation_logs table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// InsertGenerationLog creates a new generation log entry.
func (s *SQLite) InsertGenerationLog(ctx context.Context, log GenerationLog) error {
	log.prepare()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_logs (id, created_at, kind, status, days, exercises, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID.String(), log.CreatedAt.UnixMicro(), log.Kind, log.Status,
		log.Days, log.Exercises, log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting generation log: %w", err)
	}
	return nil
}

// RecentGenerationLogs returns the most recent generation logs, newest first.
func (s *SQLite) RecentGenerationLogs(ctx context.Context, limit int) ([]GenerationLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, kind, status, days, exercises, duration_ms, error_message
		 FROM generation_logs
		 ORDER BY created_at DESC
		 LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying generation logs: %w", err)
	}
	defer rows.Close()

	var result []GenerationLog
	for rows.Next() {
		var (
			l       GenerationLog
			id      string
			created int64
			errMsg  sql.NullString
		)
		if err := rows.Scan(&id, &created, &l.Kind, &l.Status,
			&l.Days, &l.Exercises, &l.DurationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning generation log: %w", err)
		}
		if l.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing generation log id %q: %w", id, err)
		}
		l.CreatedAt = time.UnixMicro(created).UTC()
		if errMsg.Valid {
			l.ErrorMessage = &errMsg.String
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Nop discards generation logs. It is used when no database is configured.
type Nop struct{}

func (Nop) InsertGenerationLog(context.Context, GenerationLog) error { return nil }

func (Nop) RecentGenerationLogs(context.Context, int) ([]GenerationLog, error) { return nil, nil }

func (Nop) Close() error { return nil }

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = Nop{}
)
