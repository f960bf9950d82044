// Package geom provides the 2D primitives used by outline extraction and packing.
package geom

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box2 is an axis-aligned bounding box in UV space. The zero value is not
// usable; start from EmptyBox2 so Add works from an empty box.
type Box2 struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// EmptyBox2 returns a null box that contains no points. Its dimensions are
// negative until at least one point is added.
func EmptyBox2() Box2 {
	return Box2{
		Min: mgl64.Vec2{gomath.Inf(1), gomath.Inf(1)},
		Max: mgl64.Vec2{gomath.Inf(-1), gomath.Inf(-1)},
	}
}

// Add grows the box to contain p.
func (b *Box2) Add(p mgl64.Vec2) {
	b.Min = mgl64.Vec2{gomath.Min(b.Min.X(), p.X()), gomath.Min(b.Min.Y(), p.Y())}
	b.Max = mgl64.Vec2{gomath.Max(b.Max.X(), p.X()), gomath.Max(b.Max.Y(), p.Y())}
}

// DimX returns the width of the box.
func (b Box2) DimX() float64 { return b.Max.X() - b.Min.X() }

// DimY returns the height of the box.
func (b Box2) DimY() float64 { return b.Max.Y() - b.Min.Y() }

// Area returns the area of the box.
func (b Box2) Area() float64 { return b.DimX() * b.DimY() }

// Valid reports whether both dimensions are finite and non-negative. An empty
// box and a box built from non-finite points are both invalid.
func (b Box2) Valid() bool {
	dx, dy := b.DimX(), b.DimY()
	if gomath.IsNaN(dx) || gomath.IsInf(dx, 0) || gomath.IsNaN(dy) || gomath.IsInf(dy, 0) {
		return false
	}
	return dx >= 0 && dy >= 0
}

// Outline is a closed polygon boundary in UV space. The last point connects
// back to the first implicitly.
type Outline []mgl64.Vec2

// Empty reports whether the outline has no points.
func (o Outline) Empty() bool { return len(o) == 0 }

// Box returns the bounding box of the outline.
func (o Outline) Box() Box2 {
	box := EmptyBox2()
	for _, p := range o {
		box.Add(p)
	}
	return box
}

// SignedArea returns the area of the polygon via the shoelace formula.
// Positive for counter-clockwise winding.
func (o Outline) SignedArea() float64 {
	area := 0.0
	for i, p := range o {
		q := o[(i+1)%len(o)]
		area += p.X()*q.Y() - q.X()*p.Y()
	}
	return area / 2
}

// Reverse flips the winding of the outline in place.
func (o Outline) Reverse() {
	for i, j := 0, len(o)-1; i < j; i, j = i+1, j-1 {
		o[i], o[j] = o[j], o[i]
	}
}

// Rotate rotates p by theta radians around the origin.
func Rotate(p mgl64.Vec2, theta float64) mgl64.Vec2 {
	sin, cos := gomath.Sincos(theta)
	return mgl64.Vec2{p.X()*cos - p.Y()*sin, p.X()*sin + p.Y()*cos}
}

// VecAngle returns the unsigned angle between a and b in [0, pi]. A zero
// vector yields pi, the worst possible residual, instead of NaN.
func VecAngle(a, b mgl64.Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return gomath.Pi
	}
	cos := a.Dot(b) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return gomath.Acos(cos)
}
