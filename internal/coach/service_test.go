package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aithlete/aithlete/internal/models"
)

// fakeGenerator returns a canned response and records the last call.
type fakeGenerator struct {
	text   string
	err    error
	model  string
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	f.model, f.prompt = model, prompt
	return f.text, f.err
}

func newTestService(gen Generator) *Service {
	return New(gen, Models{Plan: "plan-model", Advice: "advice-model"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validRequest() models.PlanRequest {
	return models.PlanRequest{
		Goal:         "Fat loss",
		Level:        "Intermediate",
		Commitment:   "45 Mins",
		WorkoutTypes: []string{"Cardio", "HIIT"},
		Equipment:    "Full Gym",
		Duration:     "14 Days",
	}
}

// TestGeneratePlan verifies a fenced model response is cleaned, parsed and
// returned along with the prompt carrying every preference.
func TestGeneratePlan(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"Day 1\": {\"exercises\": [{\"name\": \"Burpees\", \"duration\": \"30 secs\"}]}}\n```"}
	svc := newTestService(gen)

	got, err := svc.GeneratePlan(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.model != "plan-model" {
		t.Errorf("model = %q, want plan-model", gen.model)
	}
	for _, want := range []string{"Fat loss", "Intermediate", "45 Mins", "Cardio, HIIT", "Full Gym", "Plan Duration: 14 Days"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
	if strings.HasPrefix(got.Raw, "```") {
		t.Errorf("raw plan still fenced: %q", got.Raw)
	}
	if len(got.Plan.Days) != 1 || got.Plan.Days[0].Exercises[0].Name != "Burpees" {
		t.Errorf("plan = %+v", got.Plan)
	}
}

// TestGeneratePlanInvalidRequest verifies incomplete forms never reach the model.
func TestGeneratePlanInvalidRequest(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen)

	req := validRequest()
	req.Equipment = ""
	_, err := svc.GeneratePlan(context.Background(), req)
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RequestError", err)
	}
	if gen.prompt != "" {
		t.Error("model was called for an invalid request")
	}
}

// TestGeneratePlanUpstreamFailures verifies each way the model can fail is
// reported as a GenerationError, distinct from a render failure.
func TestGeneratePlanUpstreamFailures(t *testing.T) {
	cases := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport", &fakeGenerator{err: errors.New("connection reset")}},
		{"not json", &fakeGenerator{text: "Sure! Here is your plan."}},
		{"wrong shape", &fakeGenerator{text: `["Day 1"]`}},
		{"missing name", &fakeGenerator{text: `{"Day 1": {"exercises": [{"duration": "1 min"}]}}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestService(tc.gen).GeneratePlan(context.Background(), validRequest())
			var ge *GenerationError
			if !errors.As(err, &ge) || !errors.Is(err, ErrGeneration) {
				t.Fatalf("error = %v, want GenerationError", err)
			}
			if ge.Task != "plan" {
				t.Errorf("task = %q", ge.Task)
			}
		})
	}
}

// TestAsk verifies the advice model receives the question and the answer is trimmed.
func TestAsk(t *testing.T) {
	gen := &fakeGenerator{text: "  Eat enough protein.\n"}
	svc := newTestService(gen)

	answer, err := svc.Ask(context.Background(), "How can I build muscle fast?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Eat enough protein." {
		t.Errorf("answer = %q", answer)
	}
	if gen.model != "advice-model" || !strings.Contains(gen.prompt, "User Question: How can I build muscle fast?") {
		t.Errorf("call = (%q, %q)", gen.model, gen.prompt)
	}
}

// TestAskErrors verifies blank questions and upstream failures are distinct.
func TestAskErrors(t *testing.T) {
	svc := newTestService(&fakeGenerator{err: errors.New("quota")})
	if _, err := svc.Ask(context.Background(), "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("blank question error = %v", err)
	}
	if _, err := svc.Ask(context.Background(), "Is HIIT good?"); !errors.Is(err, ErrGeneration) {
		t.Errorf("upstream error = %v", err)
	}
}
