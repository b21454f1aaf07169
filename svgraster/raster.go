// Implements a raster backend to render SVG documents,
// by wrapping rasterx.
package svgraster

import (
	"errors"
	"image"
	"image/color"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgdraw"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var _ svgdraw.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer accumulates paths into a rasterx scanner.
type Renderer struct {
	dasher *rasterx.Dasher // strokes, with dash support
	filler *rasterx.Filler // fills
}

// NewRenderer returns a renderer with default stroke values.
// If scanner is nil, a default rasterx.ScannerGV is used.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{
		dasher: rasterx.NewDasher(width, height, scanner),
		filler: rasterx.NewFiller(width, height, scanner),
	}
}

// RenderToImage renders the document into a width x height image,
// mapping its view box onto the full image.
func RenderToImage(doc *svgdom.Document, width, height int, errMode svgdom.ErrorMode) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid raster dimensions")
	}
	vb := doc.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		return nil, errors.New("document has an empty view box")
	}
	list, err := svgdraw.Flatten(doc, errMode)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	rd := NewRenderer(width, height, scanner)
	view := svgdom.Identity.
		Scale(float64(width)/vb.W, float64(height)/vb.H).
		Translate(-vb.X, -vb.Y)
	list.Draw(rd, view)
	return img, nil
}

func (rd *Renderer) Clear() {
	rd.dasher.Clear()
	rd.filler.Clear()
}

func (rd *Renderer) Start(a fixed.Point26_6) {
	rd.filler.Start(a)
	rd.dasher.Start(a)
}

func (rd *Renderer) Line(b fixed.Point26_6) {
	rd.filler.Line(b)
	rd.dasher.Line(b)
}

func (rd *Renderer) QuadBezier(b, c fixed.Point26_6) {
	rd.filler.QuadBezier(b, c)
	rd.dasher.QuadBezier(b, c)
}

func (rd *Renderer) CubeBezier(b, c, d fixed.Point26_6) {
	rd.filler.CubeBezier(b, c, d)
	rd.dasher.CubeBezier(b, c, d)
}

func (rd *Renderer) Stop(closeLoop bool) {
	rd.filler.Stop(closeLoop)
	rd.dasher.Stop(closeLoop)
}

func (rd *Renderer) SetWinding(useNonZeroWinding bool) {
	rd.dasher.SetWinding(useNonZeroWinding)
	rd.filler.SetWinding(useNonZeroWinding)
}

func (rd *Renderer) SetFillColor(c color.RGBA) {
	rd.filler.Scanner.SetColor(c)
}

func (rd *Renderer) SetStrokeColor(c color.RGBA) {
	rd.dasher.Scanner.SetColor(c)
}

func (rd *Renderer) SetStrokeOptions(width float64, cap svgdraw.CapMode, join svgdraw.JoinMode, dash []float64, dashOffset float64) {
	capFunc := rasterx.ButtCap
	gap := rasterx.FlatGap
	switch cap {
	case svgdraw.RoundCap:
		capFunc, gap = rasterx.RoundCap, rasterx.RoundGap
	case svgdraw.SquareCap:
		capFunc = rasterx.SquareCap
	}
	joinMode := rasterx.Miter
	switch join {
	case svgdraw.RoundJoin:
		joinMode = rasterx.Round
	case svgdraw.BevelJoin:
		joinMode = rasterx.Bevel
	}
	rd.dasher.SetStroke(
		fixed.Int26_6(width*64), fixed.Int26_6(4*64),
		capFunc, capFunc, gap, joinMode,
		dash, dashOffset,
	)
}

func (rd *Renderer) Fill() {
	rd.filler.Draw()
}

func (rd *Renderer) Stroke() {
	rd.dasher.Draw()
}
