package render

import (
	"strings"

	"github.com/aithlete/aithlete/internal/models"
)

// Vertical advances and indents, in points.
const (
	headerAllowance = 40 // below the motto on the first body page
	sectionGap      = 20 // before a day heading that stays on the current page
	headingAdvance  = 20
	lineAdvance     = 15 // after the name and duration lines
	exerciseGap     = 25
	spaceReserve    = 50 // blocks never start below MarginBottom+spaceReserve

	nameIndent   = 20
	detailIndent = 40
	wrapInset    = 80

	footerY            = 40
	instructionLeading = 12
)

// Fixed document text.
const (
	coverTitle    = "Aithlete"
	coverSubtitle = "Your AI-Powered Workout Planner"
	motto         = `"Consistency Beats Intensity"`
	footerText    = "© 2024 Aithlete | Your AI-Powered Workout Planner"
)

var (
	brandColor      = hexColor("#2F3C7E")
	backgroundColor = hexColor("#FBEAEB")
	bodyColor       = hexColor("#333333")
	black           = hexColor("#000000")
)

var (
	coverTitleFont    = font{Family: "Helvetica", Style: "B", Size: 60}
	coverSubtitleFont = font{Family: "Helvetica", Size: 14}
	mottoFont         = font{Family: "Helvetica", Style: "B", Size: 24}
	footerFont        = font{Family: "Helvetica", Size: 10}
	headingFont       = font{Family: "Helvetica", Style: "B", Size: 18}
	nameFont          = font{Family: "Helvetica", Style: "B", Size: 14}
	durationFont      = font{Family: "Helvetica", Size: 12}
	instructionFont   = font{Family: "Helvetica", Size: 10}
)

// cursor is the layout position for a single render call.
type cursor struct {
	geom Geometry
	y    float64
}

func (c *cursor) reset() {
	c.y = c.geom.top()
}

func (c *cursor) advance(dy float64) {
	c.y -= dy
}

// lacksSpace reports whether a new block would start too close to the
// bottom margin.
func (c *cursor) lacksSpace() bool {
	return c.y < c.geom.MarginBottom+spaceReserve
}

// layout draws one document. It is created per render call and discarded
// afterwards.
type layout struct {
	cv    canvas
	geom  Geometry
	cur   cursor
	pages int
}

func newLayout(cv canvas, geom Geometry) *layout {
	return &layout{cv: cv, geom: geom, cur: cursor{geom: geom}}
}

func (l *layout) draw(plan *models.Plan) {
	l.drawCover()
	l.openFirstBodyPage()

	for _, day := range plan.Days {
		if l.cur.lacksSpace() {
			l.openContinuationPage()
		} else {
			l.cur.advance(sectionGap)
		}
		l.drawHeading(day.Label)

		for _, ex := range day.Exercises {
			if l.cur.lacksSpace() {
				l.openContinuationPage()
			}
			l.drawExercise(ex)
		}
	}
}

func (l *layout) drawCover() {
	l.addPage()
	l.cv.SetTextColor(brandColor)
	l.cv.SetFont(coverTitleFont)
	l.cv.DrawCentredString(l.geom.top()-40, coverTitle)
	l.cv.SetFont(coverSubtitleFont)
	l.cv.SetTextColor(bodyColor)
	l.cv.DrawCentredString(l.geom.top()-80, coverSubtitle)
}

func (l *layout) openFirstBodyPage() {
	l.addPage()
	l.drawFooter()
	l.cv.SetFont(mottoFont)
	l.cv.SetTextColor(brandColor)
	l.cv.DrawCentredString(l.geom.top(), motto)

	l.cur.reset()
	l.cur.advance(headerAllowance)
}

func (l *layout) openContinuationPage() {
	l.addPage()
	l.drawFooter()
	l.cur.reset()
}

func (l *layout) addPage() {
	l.cv.AddPage()
	l.pages++
	l.cv.FillPage(backgroundColor)
}

func (l *layout) drawFooter() {
	l.cv.SetTextColor(brandColor)
	l.cv.SetFont(footerFont)
	l.cv.DrawCentredString(footerY, footerText)
	l.cv.SetTextColor(black)
}

func (l *layout) drawHeading(label string) {
	l.cv.SetFont(headingFont)
	l.cv.SetTextColor(brandColor)
	l.cv.DrawString(l.geom.MarginLeft, l.cur.y, "~ "+label)
	l.cur.advance(headingAdvance)
}

func (l *layout) drawExercise(ex models.Exercise) {
	l.cv.SetTextColor(bodyColor)
	l.cv.SetFont(nameFont)
	l.cv.DrawString(l.geom.MarginLeft+nameIndent, l.cur.y, "- Name: "+ex.Name)
	l.cur.advance(lineAdvance)

	l.cv.SetFont(durationFont)
	l.cv.DrawString(l.geom.MarginLeft+detailIndent, l.cur.y, "- Duration: "+ex.DurationOrDefault())
	l.cur.advance(lineAdvance)

	h := l.drawWrapped(
		"- Instructions: "+ex.InstructionsOrDefault(),
		l.geom.MarginLeft+detailIndent,
		l.geom.ContentWidth()-wrapInset,
	)
	l.cur.advance(h)
	l.cur.advance(exerciseGap)
}

// drawWrapped lays text out below the cursor within maxWidth and returns the
// height it occupied. It does not move the cursor.
func (l *layout) drawWrapped(text string, x, maxWidth float64) float64 {
	l.cv.SetFont(instructionFont)
	lines := wrapText(text, maxWidth, l.cv.StringWidth)
	for i, line := range lines {
		baseline := l.cur.y - instructionFont.Size - float64(i)*instructionLeading
		l.cv.DrawString(x, baseline, line)
	}
	return float64(len(lines)) * instructionLeading
}

// wrapText breaks text into lines no wider than maxWidth, splitting on
// whitespace. A single word wider than maxWidth gets a line of its own.
func wrapText(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		if line == "" {
			line = word
			continue
		}
		candidate := line + " " + word
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
