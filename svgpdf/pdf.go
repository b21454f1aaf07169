// Implements a PDF backend to render SVG documents,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"errors"
	"image/color"
	"io"
	"time"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgdraw"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

var _ svgdraw.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer writes paths to one page of a PDF document.
// PDF user space is in points, used here as a 1:1 mapping
// of SVG user units.
type Renderer struct {
	pdf *gofpdf.Fpdf

	useNonZeroWinding bool
}

// NewRenderer returns a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf, useNonZeroWinding: true}
}

// RenderToPDF renders the document as a one page PDF document,
// sized from its view box, and writes it to `out`.
func RenderToPDF(doc *svgdom.Document, out io.Writer, errMode svgdom.ErrorMode) error {
	vb := doc.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		return errors.New("document has an empty view box")
	}
	list, err := svgdraw.Flatten(doc, errMode)
	if err != nil {
		return err
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: vb.W, Ht: vb.H},
	})
	// a fixed creation date keeps the output byte-identical
	// between runs (the zero time would mean "now" to gofpdf)
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	rd := NewRenderer(pdf)
	pdf.ClipRect(0, 0, vb.W, vb.H, false)
	list.Draw(rd, svgdom.Identity.Translate(-vb.X, -vb.Y))
	pdf.ClipEnd()

	return pdf.Output(out)
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// Clear is a no-op: DrawPath consumes the current path.
func (r *Renderer) Clear() {}

func (r *Renderer) Start(a fixed.Point26_6) {
	r.pdf.MoveTo(fixedTof(a))
}

func (r *Renderer) Line(b fixed.Point26_6) {
	r.pdf.LineTo(fixedTof(b))
}

func (r *Renderer) QuadBezier(b, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	r.pdf.CurveTo(cx, cy, x, y)
}

func (r *Renderer) CubeBezier(b, c, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	r.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (r *Renderer) Stop(closeLoop bool) {
	if closeLoop {
		r.pdf.ClosePath()
	}
}

func (r *Renderer) SetWinding(useNonZeroWinding bool) {
	r.useNonZeroWinding = useNonZeroWinding
}

func (r *Renderer) SetFillColor(c color.RGBA) {
	r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	r.pdf.SetAlpha(float64(c.A)/255, "")
}

func (r *Renderer) SetStrokeColor(c color.RGBA) {
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	r.pdf.SetAlpha(float64(c.A)/255, "")
}

func (r *Renderer) SetStrokeOptions(width float64, cap svgdraw.CapMode, join svgdraw.JoinMode, dash []float64, dashOffset float64) {
	r.pdf.SetLineWidth(width)
	switch cap {
	case svgdraw.RoundCap:
		r.pdf.SetLineCapStyle("round")
	case svgdraw.SquareCap:
		r.pdf.SetLineCapStyle("square")
	default:
		r.pdf.SetLineCapStyle("butt")
	}
	switch join {
	case svgdraw.RoundJoin:
		r.pdf.SetLineJoinStyle("round")
	case svgdraw.BevelJoin:
		r.pdf.SetLineJoinStyle("bevel")
	default:
		r.pdf.SetLineJoinStyle("miter")
	}
	r.pdf.SetDashPattern(dash, dashOffset)
}

func (r *Renderer) Fill() {
	if r.useNonZeroWinding {
		r.pdf.DrawPath("f")
	} else {
		r.pdf.DrawPath("f*")
	}
}

func (r *Renderer) Stroke() {
	r.pdf.DrawPath("D")
}
