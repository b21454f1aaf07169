package svgdom

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D is an affine transform:
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a times b: the resulting transform
// applies b first, then a.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Translate composes a translation by x, y.
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale composes a scale by x, y.
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate composes a rotation by `angle` radians around the origin.
func (a Matrix2D) Rotate(angle float64) Matrix2D {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return a.Mult(Matrix2D{cos, sin, -sin, cos, 0, 0})
}

// SkewX composes a skew along the x axis by `angle` radians.
func (a Matrix2D) SkewX(angle float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, math.Tan(angle), 1, 0, 0})
}

// SkewY composes a skew along the y axis by `angle` radians.
func (a Matrix2D) SkewY(angle float64) Matrix2D {
	return a.Mult(Matrix2D{1, math.Tan(angle), 0, 1, 0, 0})
}

// TransformPoint applies the transform to the point x, y.
func (a Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return a.A*x + a.C*y + a.E, a.B*x + a.D*y + a.F
}

// TransformFixed applies the transform to a fixed point.
func (a Matrix2D) TransformFixed(p fixed.Point26_6) fixed.Point26_6 {
	x, y := a.TransformPoint(float64(p.X)/64, float64(p.Y)/64)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// IsIdentity returns true for the identity transform.
func (a Matrix2D) IsIdentity() bool { return a == Identity }
