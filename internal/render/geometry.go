// Package render lays a workout plan out onto fixed-size PDF pages.
//
// Coordinates follow PDF convention: the origin is the bottom-left corner of
// the page and y grows upward, in points (1/72 inch). The layout cursor
// starts at the top margin and moves down; a block is never started when the
// cursor has dropped below the bottom margin plus a fixed reserve.
package render

// Geometry is the fixed page configuration.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// A4 page size in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// DefaultGeometry returns the A4 page with margins L50 R50 T80 B50.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:    A4Width,
		PageHeight:   A4Height,
		MarginLeft:   50,
		MarginRight:  50,
		MarginTop:    80,
		MarginBottom: 50,
	}
}

// ContentWidth is the page width inside the left and right margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// ContentHeight is the page height inside the top and bottom margins.
func (g Geometry) ContentHeight() float64 {
	return g.PageHeight - g.MarginTop - g.MarginBottom
}

// top is the y of the top margin line.
func (g Geometry) top() float64 {
	return g.PageHeight - g.MarginTop
}
