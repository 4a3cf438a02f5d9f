package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aithlete/aithlete/internal/models"
)

// Download metadata for rendered plans.
const (
	FileName    = "workout_plan.pdf"
	ContentType = "application/pdf"
)

// ErrRender is wrapped by every RenderError.
var ErrRender = errors.New("could not render workout plan")

// RenderError is a failure while drawing, after the plan was accepted.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "rendering workout plan: " + e.Err.Error()
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrRender, e.Err}
}

// Options controls document metadata and encoding.
type Options struct {
	Title    string
	Author   string
	Compress bool
}

// DefaultOptions returns compressed output titled "Workout Plan".
func DefaultOptions() Options {
	return Options{Title: "Workout Plan", Compress: true}
}

// Renderer turns plans into PDF documents. It holds no per-call state and is
// safe for concurrent use.
type Renderer struct {
	geom      Geometry
	opts      Options
	log       *slog.Logger
	newCanvas func(Geometry, Options) canvas
}

// New creates a Renderer with the default A4 geometry.
func New(opts Options, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		geom:      DefaultGeometry(),
		opts:      opts,
		log:       log,
		newCanvas: newPDFCanvas,
	}
}

// Geometry returns the page geometry used for every render.
func (r *Renderer) Geometry() Geometry {
	return r.geom
}

// RenderJSON parses a raw plan payload and renders it. Parse failures are
// returned as *models.PlanParseError.
func (r *Renderer) RenderJSON(data []byte) ([]byte, error) {
	plan, err := models.ParsePlan(data)
	if err != nil {
		return nil, err
	}
	return r.Render(plan)
}

// Render draws the cover page followed by the plan body and returns the
// finished document. On any failure no bytes are returned.
func (r *Renderer) Render(plan *models.Plan) (out []byte, err error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &RenderError{Err: fmt.Errorf("panic: %v", rec)}
			r.log.Error("render panicked", "error", err)
		}
	}()

	cv := r.newCanvas(r.geom, r.opts)
	l := newLayout(cv, r.geom)
	l.draw(plan)

	data, err := cv.Output()
	if err != nil {
		r.log.Error("render output failed", "error", err)
		return nil, &RenderError{Err: err}
	}

	r.log.Debug("rendered workout plan",
		"days", len(plan.Days),
		"exercises", plan.ExerciseCount(),
		"pages", l.pages,
		"bytes", len(data),
	)
	return data, nil
}
