package mcp

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGenerateWorkoutPlan = mcp.NewTool("generate_workout_plan",
	mcp.WithDescription("Generate a personalized workout plan. Returns the plan as a JSON object keyed by day label, each day holding an ordered list of exercises with name, duration and instructions."),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Fitness goal"), mcp.Enum(models.Goals...)),
	mcp.WithString("level", mcp.Required(), mcp.Description("Current fitness level"), mcp.Enum(models.Levels...)),
	mcp.WithString("commitment", mcp.Required(), mcp.Description("Time available per session"), mcp.Enum(models.Commitments...)),
	mcp.WithArray("workout_types", mcp.Required(), mcp.Description("Preferred workout types"), mcp.WithStringItems(mcp.Enum(models.WorkoutTypes...))),
	mcp.WithString("equipment", mcp.Required(), mcp.Description("Available equipment"), mcp.Enum(models.Equipment...)),
	mcp.WithString("duration", mcp.Required(), mcp.Description("Plan length"), mcp.Enum(models.Durations...)),
)

var toolAskFitnessExpert = mcp.NewTool("ask_fitness_expert",
	mcp.WithDescription("Ask a fitness expert about strength training, weight loss, muscle gain, nutrition, recovery or workout scheduling."),
	mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
)

var toolSummarizePlan = mcp.NewTool("summarize_plan",
	mcp.WithDescription("Summarize a workout plan JSON: days in source order with their exercise names, plus totals. Rejects malformed plans with the offending path."),
	mcp.WithString("plan", mcp.Required(), mcp.Description("Workout plan JSON as returned by generate_workout_plan")),
)

var toolRenderWorkoutPDF = mcp.NewTool("render_workout_pdf",
	mcp.WithDescription("Render a workout plan JSON as a paginated PDF. Returns the document as an embedded base64 resource."),
	mcp.WithString("plan", mcp.Required(), mcp.Description("Workout plan JSON as returned by generate_workout_plan")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkoutPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pr := models.PlanRequest{
		Goal:         req.GetString("goal", ""),
		Level:        req.GetString("level", ""),
		Commitment:   req.GetString("commitment", ""),
		WorkoutTypes: req.GetStringSlice("workout_types", nil),
		Equipment:    req.GetString("equipment", ""),
		Duration:     req.GetString("duration", ""),
	}

	plan, err := h.coach.GeneratePlan(ctx, pr)
	if err != nil {
		var reqErr *coach.RequestError
		if errors.As(err, &reqErr) {
			return mcp.NewToolResultError(reqErr.Error()), nil
		}
		h.log.Error("mcp generate_workout_plan", "error", err)
		return mcp.NewToolResultError(coach.ErrGeneration.Error()), nil
	}
	return mcp.NewToolResultText(plan.Raw), nil
}

func (h *handlers) askFitnessExpert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	answer, err := h.coach.Ask(ctx, question)
	if errors.Is(err, coach.ErrEmptyQuestion) {
		return mcp.NewToolResultError("question must not be blank"), nil
	}
	if err != nil {
		h.log.Error("mcp ask_fitness_expert", "error", err)
		return mcp.NewToolResultError(coach.AdviceUnavailableMessage), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// PlanSummary lists each day's exercise names in source order.
type PlanSummary struct {
	Days           []DaySummary `json:"days"`
	TotalDays      int          `json:"total_days"`
	TotalExercises int          `json:"total_exercises"`
}

// DaySummary is one day of a PlanSummary.
type DaySummary struct {
	Label     string   `json:"label"`
	Exercises []string `json:"exercises"`
}

// Summarize builds a PlanSummary for p.
func Summarize(p *models.Plan) PlanSummary {
	s := PlanSummary{Days: make([]DaySummary, 0, len(p.Days)), TotalDays: len(p.Days)}
	for _, d := range p.Days {
		names := make([]string, 0, len(d.Exercises))
		for _, ex := range d.Exercises {
			names = append(names, ex.Name)
		}
		s.Days = append(s.Days, DaySummary{Label: d.Label, Exercises: names})
		s.TotalExercises += len(d.Exercises)
	}
	return s
}

func (h *handlers) summarizePlan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("plan")
	if err != nil {
		return mcp.NewToolResultError("plan parameter is required"), nil
	}

	plan, err := models.ParsePlan([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(Summarize(plan))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) renderWorkoutPDF(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("plan")
	if err != nil {
		return mcp.NewToolResultError("plan parameter is required"), nil
	}

	out, err := h.renderer.RenderJSON([]byte(raw))
	if err != nil {
		var parseErr *models.PlanParseError
		if errors.As(err, &parseErr) {
			return mcp.NewToolResultError(parseErr.Error()), nil
		}
		h.log.Error("mcp render_workout_pdf", "error", err)
		return mcp.NewToolResultError(render.ErrRender.Error()), nil
	}

	return mcp.NewToolResultResource("Rendered "+render.FileName, mcp.BlobResourceContents{
		URI:      "aithlete://plans/" + render.FileName,
		MIMEType: render.ContentType,
		Blob:     base64.StdEncoding.EncodeToString(out),
	}), nil
}
