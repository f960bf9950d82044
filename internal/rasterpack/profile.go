package rasterpack

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshforge/atlaspack/internal/geom"
)

// profile is a rasterized outline: per-column vertical spans of the rotated,
// scaled and gutter-dilated shape, in the shape's local frame where the
// pre-dilation bounding box minimum sits at the origin.
type profile struct {
	bottom []float64 // lowest occupied y per column, gutter included
	top    []float64 // highest occupied y per column, gutter included
	width  int       // len(bottom), includes gutter columns on both sides
	minX   float64   // bbox min of the rotated scaled outline
	minY   float64
	gutter int
}

// rasterize builds the span profile of outline rotated by theta and scaled by
// scale, dilated by gutter pixels. Returns nil for outlines that cannot form
// an area.
func rasterize(outline geom.Outline, theta, scale float64, gutter int) *profile {
	if len(outline) < 3 {
		return nil
	}

	pts := make([]mgl64.Vec2, len(outline))
	box := geom.EmptyBox2()
	for i, p := range outline {
		q := geom.Rotate(p, theta).Mul(scale)
		pts[i] = q
		box.Add(q)
	}
	if !box.Valid() {
		return nil
	}

	w := int(gomath.Ceil(box.DimX()))
	if w < 1 {
		w = 1
	}
	bottom := make([]float64, w)
	top := make([]float64, w)
	for i := range bottom {
		bottom[i] = gomath.Inf(1)
		top[i] = gomath.Inf(-1)
	}

	for i := range pts {
		a := pts[i].Sub(box.Min)
		b := pts[(i+1)%len(pts)].Sub(box.Min)
		rasterizeEdge(a, b, bottom, top, w)
	}

	// Columns no edge touched are possible only for degenerate geometry;
	// fill them with the full vertical extent so they cannot be overlapped.
	for i := range bottom {
		if bottom[i] > top[i] {
			bottom[i] = 0
			top[i] = box.DimY()
		}
	}

	return dilate(bottom, top, w, gutter, box.Min.X(), box.Min.Y())
}

// rasterizeEdge updates the per-column spans with the segment a-b.
func rasterizeEdge(a, b mgl64.Vec2, bottom, top []float64, w int) {
	x0, x1 := a.X(), b.X()
	y0, y1 := a.Y(), b.Y()
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	c0 := clampCol(int(gomath.Floor(x0)), w)
	c1 := clampCol(int(gomath.Floor(x1)), w)

	if x1-x0 < 1e-12 {
		// Vertical (or near-vertical) segment occupies one column entirely.
		lo, hi := gomath.Min(y0, y1), gomath.Max(y0, y1)
		for c := c0; c <= c1; c++ {
			bottom[c] = gomath.Min(bottom[c], lo)
			top[c] = gomath.Max(top[c], hi)
		}
		return
	}

	slope := (y1 - y0) / (x1 - x0)
	for c := c0; c <= c1; c++ {
		xa := gomath.Max(x0, float64(c))
		xb := gomath.Min(x1, float64(c+1))
		ya := y0 + (xa-x0)*slope
		yb := y0 + (xb-x0)*slope
		bottom[c] = gomath.Min(bottom[c], gomath.Min(ya, yb))
		top[c] = gomath.Max(top[c], gomath.Max(ya, yb))
	}
}

func clampCol(c, w int) int {
	if c < 0 {
		return 0
	}
	if c >= w {
		return w - 1
	}
	return c
}

// dilate grows the spans by gutter pixels in every direction. Grown column j
// covers local x interval [j-gutter, j-gutter+1).
func dilate(bottom, top []float64, w, gutter int, minX, minY float64) *profile {
	if gutter < 0 {
		gutter = 0
	}
	gw := w + 2*gutter
	gb := make([]float64, gw)
	gt := make([]float64, gw)
	for j := 0; j < gw; j++ {
		lo, hi := gomath.Inf(1), gomath.Inf(-1)
		for i := j - 2*gutter; i <= j; i++ {
			if i < 0 || i >= w {
				continue
			}
			lo = gomath.Min(lo, bottom[i])
			hi = gomath.Max(hi, top[i])
		}
		gb[j] = lo - float64(gutter)
		gt[j] = hi + float64(gutter)
	}
	return &profile{
		bottom: gb,
		top:    gt,
		width:  gw,
		minX:   minX,
		minY:   minY,
		gutter: gutter,
	}
}
