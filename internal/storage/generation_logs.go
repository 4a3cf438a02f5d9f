package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generation log kinds.
const (
	KindPlan       = "plan"
	KindAdvice     = "advice"
	KindRenderPDF  = "render_pdf"
	KindRenderXLSX = "render_xlsx"
)

// Generation log statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultLogLimit is used when RecentGenerationLogs gets a non-positive limit.
const DefaultLogLimit = 50

// GenerationLog records the outcome of one generation or render call. It holds
// counts only, never plan content or prompts.
type GenerationLog struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	Days         int       `json:"days"`
	Exercises    int       `json:"exercises"`
	DurationMs   int       `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// Store persists generation logs.
type Store interface {
	InsertGenerationLog(ctx context.Context, log GenerationLog) error
	RecentGenerationLogs(ctx context.Context, limit int) ([]GenerationLog, error)
	Close() error
}

// prepare fills in the ID and timestamp when the caller left them empty.
func (l *GenerationLog) prepare() {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLogLimit
	}
	return limit
}

// InsertGenerationLog creates a new generation log entry.
func (db *DB) InsertGenerationLog(ctx context.Context, log GenerationLog) error {
	log.prepare()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO generation_logs (id, created_at, kind, status, days, exercises, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		log.ID, log.CreatedAt, log.Kind, log.Status, log.Days, log.Exercises,
		log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting generation log: %w", err)
	}
	return nil
}

// RecentGenerationLogs returns the most recent generation logs, newest first.
func (db *DB) RecentGenerationLogs(ctx context.Context, limit int) ([]GenerationLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, kind, status, days, exercises, duration_ms, error_message
		 FROM generation_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying generation logs: %w", err)
	}
	defer rows.Close()

	var result []GenerationLog
	for rows.Next() {
		var l GenerationLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Kind, &l.Status,
			&l.Days, &l.Exercises, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning generation log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
