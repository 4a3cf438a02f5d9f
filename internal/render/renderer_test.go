package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/aithlete/aithlete/internal/models"
)

// drawnText is one string placed on a page by the recording canvas.
type drawnText struct {
	Page    int // 0 is the cover
	X, Y    float64
	Text    string
	Font    font
	Centred bool
}

// recordingCanvas captures drawing calls instead of producing a PDF.
// Widths are approximated as half the font size per rune.
type recordingCanvas struct {
	page   int
	font   font
	texts  []drawnText
	fills  []int
	outErr error
}

func (c *recordingCanvas) AddPage()                { c.page++ }
func (c *recordingCanvas) FillPage(color)          { c.fills = append(c.fills, c.page-1) }
func (c *recordingCanvas) SetFont(f font)          { c.font = f }
func (c *recordingCanvas) SetTextColor(color)      {}
func (c *recordingCanvas) Output() ([]byte, error) { return []byte("recorded"), c.outErr }

func (c *recordingCanvas) DrawString(x, y float64, s string) {
	c.texts = append(c.texts, drawnText{Page: c.page - 1, X: x, Y: y, Text: s, Font: c.font})
}

func (c *recordingCanvas) DrawCentredString(y float64, s string) {
	c.texts = append(c.texts, drawnText{Page: c.page - 1, Y: y, Text: s, Font: c.font, Centred: true})
}

func (c *recordingCanvas) StringWidth(s string) float64 {
	return float64(len([]rune(s))) * c.font.Size / 2
}

func (c *recordingCanvas) find(text string) []drawnText {
	var out []drawnText
	for _, d := range c.texts {
		if d.Text == text {
			out = append(out, d)
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRecordingRenderer returns a renderer whose canvas is captured in rec.
func newRecordingRenderer(rec *recordingCanvas) *Renderer {
	r := New(DefaultOptions(), quietLogger())
	r.newCanvas = func(Geometry, Options) canvas { return rec }
	return r
}

func planOf(days int, perDay int, instructions string) *models.Plan {
	p := &models.Plan{}
	for d := 1; d <= days; d++ {
		day := models.Day{Label: fmt.Sprintf("Day %d", d)}
		for e := 1; e <= perDay; e++ {
			day.Exercises = append(day.Exercises, models.Exercise{
				Name:         fmt.Sprintf("Ex %d.%d", d, e),
				Duration:     "30 secs",
				Instructions: instructions,
			})
		}
		p.Days = append(p.Days, day)
	}
	return p
}

// TestRenderExample verifies the single-day example: a cover page plus one
// body page carrying the heading, the three exercise lines and the chrome.
func TestRenderExample(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)

	_, err := r.RenderJSON([]byte(`{"Day 1": {"exercises": [{"name": "Push-ups", "duration": "30 secs", "instructions": "Keep back straight."}]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.page != 2 {
		t.Fatalf("pages = %d, want 2", rec.page)
	}

	g := DefaultGeometry()
	want := []struct {
		text string
		x, y float64
	}{
		{"~ Day 1", 50, g.top() - 40 - 20},
		{"- Name: Push-ups", 70, g.top() - 40 - 20 - 20},
		{"- Duration: 30 secs", 90, g.top() - 40 - 20 - 20 - 15},
		{"- Instructions: Keep back straight.", 90, g.top() - 40 - 20 - 20 - 15 - 15 - 10},
	}
	for _, w := range want {
		got := rec.find(w.text)
		if len(got) != 1 {
			t.Fatalf("%q drawn %d times, want 1", w.text, len(got))
		}
		if got[0].Page != 1 {
			t.Errorf("%q on page %d, want 1", w.text, got[0].Page)
		}
		if !near(got[0].X, w.x) || !near(got[0].Y, w.y) {
			t.Errorf("%q at (%.2f, %.2f), want (%.2f, %.2f)", w.text, got[0].X, got[0].Y, w.x, w.y)
		}
	}

	if got := rec.find(coverTitle); len(got) != 1 || got[0].Page != 0 {
		t.Errorf("cover title = %+v, want once on page 0", got)
	}
	if got := rec.find(motto); len(got) != 1 || got[0].Page != 1 {
		t.Errorf("motto = %+v, want once on page 1", got)
	}
	if got := rec.find(footerText); len(got) != 1 || got[0].Page != 1 || got[0].Y != footerY {
		t.Errorf("footer = %+v, want once on page 1 at y=%d", got, footerY)
	}
	if len(rec.fills) != 2 || rec.fills[0] != 0 || rec.fills[1] != 1 {
		t.Errorf("background fills = %v, want [0 1]", rec.fills)
	}
}

// TestRenderAllDaysAndExercisesInOrder verifies every heading and every name
// line is drawn exactly once and in plan order, across page breaks.
func TestRenderAllDaysAndExercisesInOrder(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)
	plan := planOf(5, 6, "Steady pace.")

	if _, err := r.Render(plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var expected []string
	for _, d := range plan.Days {
		expected = append(expected, "~ "+d.Label)
		for _, ex := range d.Exercises {
			expected = append(expected, "- Name: "+ex.Name)
		}
	}

	var got []string
	for _, d := range rec.texts {
		if strings.HasPrefix(d.Text, "~ ") || strings.HasPrefix(d.Text, "- Name: ") {
			got = append(got, d.Text)
		}
	}
	if len(got) != len(expected) {
		t.Fatalf("drew %d headings+names, want %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], expected[i])
		}
	}
	if rec.page < 3 {
		t.Errorf("pages = %d, expected the plan to span several body pages", rec.page)
	}
}

// TestRenderMissingOptionalFields verifies duration and instructions defaults.
func TestRenderMissingOptionalFields(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)

	if _, err := r.RenderJSON([]byte(`{"Day 1": {"exercises": [{"name": "Plank"}]}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.find("- Duration: N/A")) != 1 {
		t.Error("missing duration was not rendered as N/A")
	}
	if len(rec.find("- Instructions: No instructions provided.")) != 1 {
		t.Error("missing instructions were not rendered with the default text")
	}
}

// TestRenderPageBreakBeforeExercise builds a day whose exercises walk the
// cursor down into the reserve above the bottom margin. The next exercise
// must open a new page rather than start in the reserve.
func TestRenderPageBreakBeforeExercise(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)
	g := DefaultGeometry()

	// Each exercise with one instruction line uses 15+15+12+25 = 67pt.
	// Start: top-40 (motto) -20 (gap) -20 (heading) = 681.89.
	// After 9 exercises the cursor is at 78.89, inside the 50pt reserve.
	plan := planOf(1, 10, "Go.")
	if _, err := r.Render(plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.page != 3 {
		t.Fatalf("pages = %d, want 3 (cover, body, continuation)", rec.page)
	}
	for i := 1; i <= 9; i++ {
		got := rec.find(fmt.Sprintf("- Name: Ex 1.%d", i))
		if len(got) != 1 || got[0].Page != 1 {
			t.Errorf("exercise %d = %+v, want on page 1", i, got)
		}
	}
	tenth := rec.find("- Name: Ex 1.10")
	if len(tenth) != 1 {
		t.Fatalf("tenth exercise drawn %d times", len(tenth))
	}
	if tenth[0].Page != 2 {
		t.Errorf("tenth exercise on page %d, want 2", tenth[0].Page)
	}
	if !near(tenth[0].Y, g.top()) {
		t.Errorf("tenth exercise y = %.2f, want %.2f", tenth[0].Y, g.top())
	}

	// Continuation page gets background and footer but no motto.
	if got := rec.find(motto); len(got) != 1 {
		t.Errorf("motto drawn %d times, want 1", len(got))
	}
	footers := rec.find(footerText)
	if len(footers) != 2 || footers[1].Page != 2 {
		t.Errorf("footers = %+v, want one on each body page", footers)
	}

	// No block starts inside the reserve, so nothing collides with the footer.
	for _, d := range rec.texts {
		if strings.HasPrefix(d.Text, "- Name: ") && d.Y < g.MarginBottom+spaceReserve {
			t.Errorf("%q starts at y=%.2f, inside the bottom reserve", d.Text, d.Y)
		}
	}
}

// TestRenderPageBreakBeforeDay verifies a day heading that would start in the
// reserve moves to the top of a new page without the inter-section gap.
func TestRenderPageBreakBeforeDay(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)
	g := DefaultGeometry()

	plan := planOf(1, 9, "Go.")
	plan.Days = append(plan.Days, models.Day{
		Label:     "Day 2",
		Exercises: []models.Exercise{{Name: "Stretch"}},
	})
	if _, err := r.Render(plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	heading := rec.find("~ Day 2")
	if len(heading) != 1 {
		t.Fatalf("Day 2 heading drawn %d times", len(heading))
	}
	if heading[0].Page != 2 || !near(heading[0].Y, g.top()) {
		t.Errorf("Day 2 heading = %+v, want page 2 at y=%.2f", heading[0], g.top())
	}
	name := rec.find("- Name: Stretch")
	if len(name) != 1 || !near(name[0].Y, g.top()-headingAdvance) {
		t.Errorf("first exercise of Day 2 = %+v", name)
	}
}

// TestRenderWrapsInstructions verifies long instructions are split into lines
// that fit the indented width, and that the cursor moves by the block height.
func TestRenderWrapsInstructions(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)
	g := DefaultGeometry()

	long := strings.Repeat("Brace your core and keep a neutral spine. ", 8)
	plan := &models.Plan{Days: []models.Day{{
		Label: "Day 1",
		Exercises: []models.Exercise{
			{Name: "Deadlift", Instructions: long},
			{Name: "Row"},
		},
	}}}
	if _, err := r.Render(plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maxWidth := g.ContentWidth() - wrapInset
	var lines int
	for _, d := range rec.texts {
		if d.Font == instructionFont && d.Page == 1 && !d.Centred {
			if w := float64(len([]rune(d.Text))) * instructionFont.Size / 2; w > maxWidth {
				t.Errorf("line %q is %.1fpt wide, max %.1f", d.Text, w, maxWidth)
			}
			lines++
		}
	}
	// The second exercise contributes one instruction line.
	deadliftLines := lines - 1
	if deadliftLines < 2 {
		t.Fatalf("instructions produced %d lines, want wrapping", deadliftLines)
	}

	first := rec.find("- Name: Deadlift")[0]
	second := rec.find("- Name: Row")[0]
	wantGap := 2*lineAdvance + float64(deadliftLines)*instructionLeading + exerciseGap
	if !near(first.Y-second.Y, wantGap) {
		t.Errorf("gap between exercises = %.2f, want %.2f", first.Y-second.Y, wantGap)
	}
}

// TestRenderMissingNameFails verifies a plan with an unnamed exercise is
// rejected as a parse error and produces no bytes.
func TestRenderMissingNameFails(t *testing.T) {
	rec := &recordingCanvas{}
	r := newRecordingRenderer(rec)

	out, err := r.RenderJSON([]byte(`{"Day 1": {"exercises": [{"duration": "1 min"}]}}`))
	if !errors.Is(err, models.ErrPlanParse) {
		t.Fatalf("error = %v, want ErrPlanParse", err)
	}
	if out != nil {
		t.Error("expected no document")
	}
	if rec.page != 0 {
		t.Errorf("drew %d pages before failing", rec.page)
	}

	out, err = r.Render(&models.Plan{Days: []models.Day{{Label: "Day 1", Exercises: []models.Exercise{{}}}}})
	var pe *models.PlanParseError
	if !errors.As(err, &pe) || out != nil {
		t.Errorf("Render with unnamed exercise = (%v, %v), want PlanParseError", out, err)
	}
}

// TestRenderMalformedText verifies non-JSON input is a parse error, not a crash.
func TestRenderMalformedText(t *testing.T) {
	r := New(DefaultOptions(), quietLogger())
	out, err := r.RenderJSON([]byte("not json"))
	var pe *models.PlanParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PlanParseError", err)
	}
	if out != nil {
		t.Error("expected no document")
	}
}

// panicCanvas fails in the middle of drawing.
type panicCanvas struct{ recordingCanvas }

func (c *panicCanvas) DrawString(float64, float64, string) { panic("font table corrupted") }

// TestRenderDrawingFailure verifies primitive faults surface as RenderError
// with no partial output.
func TestRenderDrawingFailure(t *testing.T) {
	plan := planOf(1, 1, "Go.")

	r := New(DefaultOptions(), quietLogger())
	r.newCanvas = func(Geometry, Options) canvas { return &panicCanvas{} }
	out, err := r.Render(plan)
	var re *RenderError
	if !errors.As(err, &re) || !errors.Is(err, ErrRender) {
		t.Fatalf("panic: error = %v, want RenderError", err)
	}
	if out != nil {
		t.Error("panic: expected no document")
	}

	rec := &recordingCanvas{outErr: errors.New("disk full")}
	r = newRecordingRenderer(rec)
	out, err = r.Render(plan)
	if !errors.As(err, &re) || out != nil {
		t.Fatalf("output failure: got (%q, %v), want RenderError", out, err)
	}
}

// TestRenderPDF verifies the real fpdf canvas produces a PDF carrying the
// expected text operators when compression is off.
func TestRenderPDF(t *testing.T) {
	r := New(Options{Title: "Workout Plan"}, quietLogger())
	out, err := r.RenderJSON([]byte(`{"Day 1": {"exercises": [{"name": "Push-ups", "duration": "30 secs", "instructions": "Keep back straight."}]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(len(out), 16)])
	}
	for _, want := range []string{
		"(~ Day 1)",
		"(- Name: Push-ups)",
		"(- Duration: 30 secs)",
		"(- Instructions: Keep back straight.)",
		`("Consistency Beats Intensity")`,
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("PDF is missing %s", want)
		}
	}
}

// TestRenderDeterministic verifies identical plans give identical bytes, also
// when rendered concurrently from the same Renderer.
func TestRenderDeterministic(t *testing.T) {
	r := New(DefaultOptions(), quietLogger())
	plan := planOf(4, 5, "Control the descent and pause at the bottom of each rep.")

	first, err := r.Render(plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Render(plan)
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("render %d: %v", i, errs[i])
		}
		if !bytes.Equal(first, results[i]) {
			t.Errorf("render %d differs from the first render", i)
		}
	}
}

func TestWrapText(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s)) }
	cases := []struct {
		text  string
		width float64
		want  []string
	}{
		{"", 10, nil},
		{"one two three", 100, []string{"one two three"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"a supercalifragilistic b", 5, []string{"a", "supercalifragilistic", "b"}},
		{"  spaced\n\tout  ", 20, []string{"spaced out"}},
	}
	for _, tc := range cases {
		got := wrapText(tc.text, tc.width, measure)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") || len(got) != len(tc.want) {
			t.Errorf("wrapText(%q, %v) = %q, want %q", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestGeometry(t *testing.T) {
	g := DefaultGeometry()
	if !near(g.ContentWidth(), A4Width-100) {
		t.Errorf("content width = %.2f", g.ContentWidth())
	}
	if !near(g.ContentHeight(), A4Height-130) {
		t.Errorf("content height = %.2f", g.ContentHeight())
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 0.001 && d > -0.001
}
