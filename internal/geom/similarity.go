package geom

import "github.com/go-gl/mathgl/mgl64"

// Similarity2 is a rotation + uniform scale + translation in 2D. It is the
// transform a packer reports for each placed outline.
type Similarity2 struct {
	Rot   float64 // radians, counter-clockwise
	Scale float64
	Tra   mgl64.Vec2
}

// Identity returns the identity transform.
func Identity() Similarity2 {
	return Similarity2{Scale: 1}
}

// Apply transforms p: rotate, scale, then translate.
func (s Similarity2) Apply(p mgl64.Vec2) mgl64.Vec2 {
	q := Rotate(p, s.Rot).Mul(s.Scale)
	return q.Add(s.Tra)
}
