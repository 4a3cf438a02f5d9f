package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// color is an RGB triple.
type color struct {
	R, G, B int
}

// hexColor parses "#RRGGBB". Only used on constants.
func hexColor(s string) color {
	var c color
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		panic(fmt.Sprintf("render: bad color %q", s))
	}
	return c
}

// font selects a core font face.
type font struct {
	Family string
	Style  string // "", "B"
	Size   float64
}

// canvas is the drawing primitive the layout is written against. y is
// measured from the bottom edge of the page, and text is placed by baseline.
type canvas interface {
	AddPage()
	FillPage(c color)
	SetFont(f font)
	SetTextColor(c color)
	DrawString(x, y float64, s string)
	DrawCentredString(y float64, s string)
	StringWidth(s string) float64
	Output() ([]byte, error)
}

// fixedDate is stamped as creation and modification date so identical plans
// produce identical bytes.
var fixedDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// pdfCanvas draws with go-pdf/fpdf core fonts. Strings are translated from
// UTF-8 to cp1252, which is what the core fonts are encoded in.
type pdfCanvas struct {
	pdf  *fpdf.Fpdf
	geom Geometry
	tr   func(string) string
}

func newPDFCanvas(geom Geometry, opts Options) canvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geom.PageWidth, Ht: geom.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(opts.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(fixedDate)
	pdf.SetModificationDate(fixedDate)
	pdf.SetTitle(opts.Title, true)
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	pdf.SetCreator("Aithlete", true)

	return &pdfCanvas{
		pdf:  pdf,
		geom: geom,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *pdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *pdfCanvas) FillPage(col color) {
	c.pdf.SetFillColor(col.R, col.G, col.B)
	c.pdf.Rect(0, 0, c.geom.PageWidth, c.geom.PageHeight, "F")
}

func (c *pdfCanvas) SetFont(f font) {
	c.pdf.SetFont(f.Family, f.Style, f.Size)
}

func (c *pdfCanvas) SetTextColor(col color) {
	c.pdf.SetTextColor(col.R, col.G, col.B)
}

func (c *pdfCanvas) DrawString(x, y float64, s string) {
	c.pdf.Text(x, c.geom.PageHeight-y, c.tr(s))
}

func (c *pdfCanvas) DrawCentredString(y float64, s string) {
	t := c.tr(s)
	x := (c.geom.PageWidth - c.pdf.GetStringWidth(t)) / 2
	c.pdf.Text(x, c.geom.PageHeight-y, t)
}

func (c *pdfCanvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.tr(s))
}

func (c *pdfCanvas) Output() ([]byte, error) {
	if err := c.pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
