// Implements an abstract representation of
// svg paths, which can then be consumed
// by painting drivers or bounding box estimations.
package svgpath

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"
)

// Operation is one basic SVG path command.
type Operation interface {
	// appends the control points of the command to `dst`
	controlPoints(dst []fixed.Point26_6) []fixed.Point26_6
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

func (op MoveTo) controlPoints(dst []fixed.Point26_6) []fixed.Point26_6 {
	return append(dst, fixed.Point26_6(op))
}

func (op LineTo) controlPoints(dst []fixed.Point26_6) []fixed.Point26_6 {
	return append(dst, fixed.Point26_6(op))
}

func (op QuadTo) controlPoints(dst []fixed.Point26_6) []fixed.Point26_6 {
	return append(dst, op[0], op[1])
}

func (op CubicTo) controlPoints(dst []fixed.Point26_6) []fixed.Point26_6 {
	return append(dst, op[0], op[1], op[2])
}

func (op Close) controlPoints(dst []fixed.Point26_6) []fixed.Point26_6 { return dst }

// Path describes a sequence of basic SVG operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64, float32(op[2].X)/64, float32(op[2].Y)/64)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo{a.X, a.Y})
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo{b.X, b.Y})
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// ControlPoints returns the control points of every command of the path.
// Since a bezier curve is contained in the convex hull of its control
// points, the resulting point cloud over-estimates the path extent,
// which is the conservative direction for intersection tests.
func (p Path) ControlPoints() []fixed.Point26_6 {
	var out []fixed.Point26_6
	for _, op := range p {
		out = op.controlPoints(out)
	}
	return out
}

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(x * 64)
	p.Y = fixed.Int26_6(y * 64)
	return
}
