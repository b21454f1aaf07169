// Flattens a parsed SVG document into a list of styled paths,
// and replays it on a painting driver.
// The drivers implement the actual draw operations,
// such as a rasterizer to output .png images or a pdf writer.
package svgdraw

import (
	"image/color"
	"math"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgpath"
	"golang.org/x/image/math/fixed"
)

// CapMode styles the ends of open stroked subpaths.
// The zero value is the SVG default.
type CapMode uint8

const (
	ButtCap CapMode = iota
	RoundCap
	SquareCap
)

// JoinMode styles the corners of stroked paths.
// The zero value is the SVG default.
type JoinMode uint8

const (
	MiterJoin JoinMode = iota
	RoundJoin
	BevelJoin
)

// Style is the resolved paint state of one shape:
// inherited attributes are already applied, and Transform
// accumulates every transform from the document root.
type Style struct {
	FillColor, StrokeColor color.RGBA
	HasFill, HasStroke     bool

	FillOpacity, StrokeOpacity float64
	LineWidth                  float64
	LineCap                    CapMode
	LineJoin                   JoinMode
	Dash                       []float64
	DashOffset                 float64
	UseNonZeroWinding          bool

	Transform svgdom.Matrix2D
}

// Shape binds a style to a path, given in local coordinates.
type Shape struct {
	Path  svgpath.Path
	Style Style
}

// DrawList is the flattened form of a document.
type DrawList struct {
	ViewBox svgdom.Bounds
	Shapes  []Shape
}

// Driver knows how to do the actual draw operations
// but doesn't need any SVG knowledge: transformations
// are applied to the points before sending them out.
type Driver interface {
	// Clear resets the internal state, before starting a new path
	Clear()

	// Start starts a new path at the given point.
	Start(a fixed.Point26_6)

	// Line adds a line from the current point to `b`
	Line(b fixed.Point26_6)

	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)

	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)

	// Stop closes the path to the start point if `closeLoop` is true
	Stop(closeLoop bool)

	// SetWinding selects between the non-zero and even-odd fill rules
	SetWinding(useNonZeroWinding bool)

	// SetFillColor sets the color for the next Fill call
	SetFillColor(c color.RGBA)

	// SetStrokeColor sets the color for the next Stroke call
	SetStrokeColor(c color.RGBA)

	// SetStrokeOptions parametrizes the stroking style
	SetStrokeOptions(width float64, cap CapMode, join JoinMode, dash []float64, dashOffset float64)

	// Fill fills the accumulated path
	Fill()

	// Stroke strokes the accumulated path
	Stroke()
}

// Draw replays the list on the driver, with `view` mapping
// document coordinates to output coordinates.
func (dl DrawList) Draw(d Driver, view svgdom.Matrix2D) {
	for _, shape := range dl.Shapes {
		m := view.Mult(shape.Style.Transform)
		if shape.Style.HasFill {
			d.Clear()
			d.SetWinding(shape.Style.UseNonZeroWinding)
			replayFill(d, shape.Path, m)
			d.SetFillColor(applyOpacity(shape.Style.FillColor, shape.Style.FillOpacity))
			d.Fill()
		}
		if shape.Style.HasStroke {
			d.Clear()
			replayStroke(d, shape.Path, m)
			d.SetStrokeColor(applyOpacity(shape.Style.StrokeColor, shape.Style.StrokeOpacity))
			d.SetStrokeOptions(shape.Style.LineWidth*scaleOf(m),
				shape.Style.LineCap, shape.Style.LineJoin,
				shape.Style.Dash, shape.Style.DashOffset)
			d.Stroke()
		}
	}
}

// replayFill sends the path to the driver, adding the implicit
// closing line of every subpath, which fill operations require.
func replayFill(d Driver, p svgpath.Path, m svgdom.Matrix2D) {
	var first, cur fixed.Point26_6
	inPath := false
	closeSub := func() {
		if inPath && cur != first {
			d.Line(first)
		}
	}
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			closeSub()
			cur = m.TransformFixed(fixed.Point26_6(op))
			first = cur
			inPath = true
			d.Start(cur)
		case svgpath.LineTo:
			cur = m.TransformFixed(fixed.Point26_6(op))
			d.Line(cur)
		case svgpath.QuadTo:
			b, c := m.TransformFixed(op[0]), m.TransformFixed(op[1])
			d.QuadBezier(b, c)
			cur = c
		case svgpath.CubicTo:
			b, c, e := m.TransformFixed(op[0]), m.TransformFixed(op[1]), m.TransformFixed(op[2])
			d.CubeBezier(b, c, e)
			cur = e
		case svgpath.Close:
			closeSub()
			cur = first
		}
	}
	closeSub()
	d.Stop(false)
}

// replayStroke sends the path to the driver, closing only
// the explicitly closed subpaths.
func replayStroke(d Driver, p svgpath.Path, m svgdom.Matrix2D) {
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			d.Stop(false)
			d.Start(m.TransformFixed(fixed.Point26_6(op)))
		case svgpath.LineTo:
			d.Line(m.TransformFixed(fixed.Point26_6(op)))
		case svgpath.QuadTo:
			d.QuadBezier(m.TransformFixed(op[0]), m.TransformFixed(op[1]))
		case svgpath.CubicTo:
			d.CubeBezier(m.TransformFixed(op[0]), m.TransformFixed(op[1]), m.TransformFixed(op[2]))
		case svgpath.Close:
			d.Stop(true)
		}
	}
	d.Stop(false)
}

func applyOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	c.A = uint8(float64(c.A) * opacity)
	return c
}

func toFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// scaleOf estimates the scale factor of a transform,
// used to keep stroke widths consistent under scaling.
func scaleOf(m svgdom.Matrix2D) float64 {
	det := math.Abs(m.A*m.D - m.B*m.C)
	if det == 0 {
		return 1
	}
	return math.Sqrt(det)
}
