package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
)

const testPlan = `{"Day 2": {"exercises": [{"name": "Squat"}, {"name": "Lunge"}]}, "Day 1": {"exercises": [{"name": "Plank"}]}}`

type stubCoach struct {
	lastReq models.PlanRequest
	err     error
}

func (s *stubCoach) GeneratePlan(_ context.Context, req models.PlanRequest) (*coach.GeneratedPlan, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	plan, err := models.ParsePlan([]byte(testPlan))
	if err != nil {
		return nil, err
	}
	return &coach.GeneratedPlan{Raw: testPlan, Plan: plan}, nil
}

func (s *stubCoach) Ask(_ context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", coach.ErrEmptyQuestion
	}
	return "answer to " + question, s.err
}

func newTestHandlers(c Coach) *handlers {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &handlers{coach: c, renderer: render.New(render.DefaultOptions(), log), log: log}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestNew verifies the server builds with every tool registered.
func TestNew(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if s := New(&stubCoach{}, render.New(render.DefaultOptions(), log), "test", log); s == nil {
		t.Fatal("New returned nil")
	}
}

// TestGenerateWorkoutPlanTool verifies arguments reach the coach and the raw plan is returned.
func TestGenerateWorkoutPlanTool(t *testing.T) {
	sc := &stubCoach{}
	h := newTestHandlers(sc)

	res, err := h.generateWorkoutPlan(context.Background(), toolRequest(map[string]any{
		"goal":          "General Fitness",
		"level":         "Advanced",
		"commitment":    "15 Mins",
		"workout_types": []any{"Cardio", "HIIT"},
		"equipment":     "Bodyweight Only",
		"duration":      "30 Days",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if resultText(t, res) != testPlan {
		t.Errorf("plan = %s", resultText(t, res))
	}
	if strings.Join(sc.lastReq.WorkoutTypes, ",") != "Cardio,HIIT" || sc.lastReq.Duration != "30 Days" {
		t.Errorf("request = %+v", sc.lastReq)
	}
}

// TestGenerateWorkoutPlanToolUpstreamError verifies upstream detail is not exposed.
func TestGenerateWorkoutPlanToolUpstreamError(t *testing.T) {
	h := newTestHandlers(&stubCoach{err: &coach.GenerationError{Task: "plan", Err: errors.New("secret detail")}})
	res, err := h.generateWorkoutPlan(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || resultText(t, res) != "plan could not be generated" {
		t.Errorf("result = %+v", res)
	}
}

// TestAskFitnessExpertTool verifies the answer text and blank-question handling.
func TestAskFitnessExpertTool(t *testing.T) {
	h := newTestHandlers(&stubCoach{})

	res, err := h.askFitnessExpert(context.Background(), toolRequest(map[string]any{"question": "warm up?"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || resultText(t, res) != "answer to warm up?" {
		t.Errorf("result = %+v", res)
	}

	res, _ = h.askFitnessExpert(context.Background(), toolRequest(map[string]any{}))
	if !res.IsError {
		t.Error("missing question should be a tool error")
	}
}

// TestSummarizePlanTool verifies days are summarized in source order.
func TestSummarizePlanTool(t *testing.T) {
	h := newTestHandlers(&stubCoach{})

	res, err := h.summarizePlan(context.Background(), toolRequest(map[string]any{"plan": testPlan}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var sum PlanSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.TotalDays != 2 || sum.TotalExercises != 3 {
		t.Errorf("totals = %d/%d", sum.TotalDays, sum.TotalExercises)
	}
	if sum.Days[0].Label != "Day 2" || strings.Join(sum.Days[0].Exercises, ",") != "Squat,Lunge" {
		t.Errorf("first day = %+v", sum.Days[0])
	}

	res, _ = h.summarizePlan(context.Background(), toolRequest(map[string]any{"plan": `{"Day 1": {}}`}))
	if !res.IsError || !strings.Contains(resultText(t, res), "exercises") {
		t.Errorf("malformed plan result = %+v", res)
	}
}

// TestRenderWorkoutPDFTool verifies the PDF is returned as an embedded blob.
func TestRenderWorkoutPDFTool(t *testing.T) {
	h := newTestHandlers(&stubCoach{})

	res, err := h.renderWorkoutPDF(context.Background(), toolRequest(map[string]any{"plan": testPlan}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %+v", res)
	}
	var blob *mcp.BlobResourceContents
	for _, c := range res.Content {
		if er, ok := c.(mcp.EmbeddedResource); ok {
			if b, ok := er.Resource.(mcp.BlobResourceContents); ok {
				blob = &b
			}
		}
	}
	if blob == nil {
		t.Fatal("no embedded blob in result")
	}
	if blob.MIMEType != render.ContentType {
		t.Errorf("mime = %q", blob.MIMEType)
	}
	data, err := base64.StdEncoding.DecodeString(blob.Blob)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Error("blob is not a PDF")
	}
}

// TestFormOptionsResource verifies the option sets are served as JSON.
func TestFormOptionsResource(t *testing.T) {
	h := newTestHandlers(&stubCoach{})
	var req mcp.ReadResourceRequest
	req.Params.URI = "aithlete://form_options"

	contents, err := h.formOptions(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] = %T", contents[0])
	}
	var opts models.FormOptions
	if err := json.Unmarshal([]byte(tc.Text), &opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.Goals) != 3 || opts.WorkoutTypes[3] != "HIIT" {
		t.Errorf("options = %+v", opts)
	}
}
