// Package rasterpack places 2D polygon outlines into a rectangular container.
// Outlines are rasterized into per-column span profiles and packed on a
// skyline, so concave shapes can nest into each other instead of being
// treated as their bounding rectangles.
package rasterpack

import "fmt"

// CostFunc selects the placement scoring strategy.
type CostFunc int

const (
	// LowestHorizon scores a placement by the height of the skyline after
	// placing the outline, preferring placements that keep the horizon low.
	LowestHorizon CostFunc = iota
)

// Size is a container size in pixels.
type Size struct {
	W int
	H int
}

// String returns a string representation of the size.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Area returns the pixel area of the size.
func (s Size) Area() int {
	return s.W * s.H
}

// Params configures a packing call.
type Params struct {
	// Cost selects the placement scoring strategy.
	Cost CostFunc
	// RotationNum is the number of discrete rotation candidates tried per
	// outline, evenly spaced over a full turn. Values below 1 mean no rotation.
	RotationNum int
	// GutterWidth is the dilation in pixels applied around each rasterized
	// outline, keeping packed charts apart.
	GutterWidth int
	// Permutations enables trying several insertion orders and keeping the
	// best result. Quadratic in practice, so callers disable it for large
	// batches.
	Permutations bool
	// Scale is the uniform pre-scale converting outline units to pixels.
	Scale float64
}
