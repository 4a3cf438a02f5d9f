// Package coach turns form input into model prompts and model output into
// workout plans and advice.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aithlete/aithlete/internal/models"
)

// Generator produces text for a prompt. *gemini.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Models names the model used for each task.
type Models struct {
	Plan   string
	Advice string
}

var (
	// ErrGeneration is wrapped by every GenerationError.
	ErrGeneration = errors.New("plan could not be generated")
	// ErrEmptyQuestion is returned by Ask for a blank question.
	ErrEmptyQuestion = errors.New("please enter a question")
)

// Messages shown to users for upstream failures.
const (
	PlanUnavailableMessage   = "Failed to create Personalized Plan"
	AdviceUnavailableMessage = "Sorry, I couldn't generate a response."
)

// GenerationError is an upstream failure: the model returned nothing usable
// or text that is not a valid plan.
type GenerationError struct {
	Task string // "plan" or "advice"
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s: %v", e.Task, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// RequestError reports invalid or incomplete form input.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return "invalid plan request: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// GeneratedPlan is a validated plan together with the cleaned JSON it was
// parsed from.
type GeneratedPlan struct {
	Raw  string
	Plan *models.Plan
}

// Service generates plans and answers questions.
type Service struct {
	gen    Generator
	models Models
	log    *slog.Logger
}

// New creates a Service.
func New(gen Generator, m Models, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{gen: gen, models: m, log: log}
}

// GeneratePlan validates req, asks the plan model for a plan and parses the
// answer. Any upstream or parse problem is a *GenerationError.
func (s *Service) GeneratePlan(ctx context.Context, req models.PlanRequest) (*GeneratedPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, &RequestError{Err: err}
	}

	text, err := s.gen.Generate(ctx, s.models.Plan, PlanPrompt(req))
	if err != nil {
		s.log.Error("plan generation failed", "model", s.models.Plan, "error", err)
		return nil, &GenerationError{Task: "plan", Err: err}
	}

	raw, err := models.CleanJSON(text)
	if err != nil {
		s.log.Error("plan response is not JSON", "model", s.models.Plan, "response_len", len(text))
		return nil, &GenerationError{Task: "plan", Err: err}
	}

	plan, err := models.ParsePlan([]byte(raw))
	if err != nil {
		s.log.Error("plan response has wrong shape", "model", s.models.Plan, "error", err)
		return nil, &GenerationError{Task: "plan", Err: err}
	}

	s.log.Info("plan generated",
		"goal", req.Goal,
		"level", req.Level,
		"days", len(plan.Days),
		"exercises", plan.ExerciseCount(),
	)
	return &GeneratedPlan{Raw: raw, Plan: plan}, nil
}

// Ask answers a free-text fitness question.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	answer, err := s.gen.Generate(ctx, s.models.Advice, AdvicePrompt(question))
	if err != nil {
		s.log.Error("advice generation failed", "model", s.models.Advice, "error", err)
		return "", &GenerationError{Task: "advice", Err: err}
	}
	return strings.TrimSpace(answer), nil
}
