package svgregion

import (
	"math"

	"github.com/benoitkugler/svgexport/svgdom"
)

// regions smaller than this are considered empty
const boundsEpsilon = 1e-6

// BoundingBox is an axis aligned box in document coordinates.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// overlaps uses closed intervals: touching boxes overlap.
func (b BoundingBox) overlaps(other BoundingBox) bool {
	return b.MinX <= other.MaxX && other.MinX <= b.MaxX &&
		b.MinY <= other.MaxY && other.MinY <= b.MaxY
}

func (b *BoundingBox) add(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

func emptyBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{MinX: inf, MinY: inf, MaxX: -inf, MaxY: -inf}
}

// RootTransform accumulates the transform chain from the element
// up to the document root. The chain is walked iteratively, so
// that deeply nested documents do not grow the stack.
func RootTransform(e *svgdom.Element) svgdom.Matrix2D {
	m := svgdom.Identity
	for ; e != nil; e = e.Parent {
		m = e.Transform.Mult(m)
	}
	return m
}

// Resolve maps the marker to document coordinates. Rotated or
// skewed markers are reduced to the axis aligned bounding box of
// their four transformed corners.
func (mk Marker) Resolve() (BoundingBox, error) {
	m := RootTransform(mk.Element)
	box := emptyBox()
	for _, corner := range [4][2]float64{
		{mk.X, mk.Y},
		{mk.X + mk.W, mk.Y},
		{mk.X + mk.W, mk.Y + mk.H},
		{mk.X, mk.Y + mk.H},
	} {
		box.add(m.TransformPoint(corner[0], corner[1]))
	}
	if box.Width() <= boundsEpsilon || box.Height() <= boundsEpsilon {
		return box, DegenerateBoundsError{Index: mk.Index, Width: box.Width(), Height: box.Height()}
	}
	return box, nil
}
