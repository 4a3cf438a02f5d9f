package mcp

import (
	"context"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/models"
)

// Coach abstracts plan generation for MCP tools. Both *coach.Service (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type Coach interface {
	GeneratePlan(ctx context.Context, req models.PlanRequest) (*coach.GeneratedPlan, error)
	Ask(ctx context.Context, question string) (string, error)
}

// Compile-time check: *coach.Service satisfies Coach.
var _ Coach = (*coach.Service)(nil)
