package server

import (
	"context"
	"time"

	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/storage"
)

// logGeneration records a generation or render outcome in the generation log.
// It runs off the request path; failures are only logged.
func (s *Server) logGeneration(kind string, plan *models.Plan, opErr error, elapsed time.Duration) {
	entry := storage.GenerationLog{
		Kind:       kind,
		Status:     storage.StatusSuccess,
		DurationMs: int(elapsed.Milliseconds()),
	}
	if plan != nil {
		entry.Days = len(plan.Days)
		entry.Exercises = plan.ExerciseCount()
	}
	if opErr != nil {
		entry.Status = storage.StatusError
		msg := opErr.Error()
		entry.ErrorMessage = &msg
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if err := s.store.InsertGenerationLog(ctx, entry); err != nil {
		s.log.Error("failed to log generation", "kind", kind, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for async logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
