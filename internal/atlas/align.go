package atlas

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshforge/atlaspack/internal/geom"
	"github.com/meshforge/atlaspack/internal/mesh"
)

// rotationAngles are the discrete rotations the packer may have applied,
// enumerated in the canonical order ties resolve to.
var rotationAngles = [4]float64{0, gomath.Pi / 2, gomath.Pi, 3 * gomath.Pi / 2}

// AlignTexels removes the sub-pixel drift the packing transform introduces.
// For every chart with an entry in anchors, it compares the anchor face's
// original fractional pixel offset against its post-packing offset and
// translates the whole chart so the two match, restoring pixel-grid phase
// across seams that were aligned before packing. Charts without an anchor are
// left exactly as packed.
//
// anchors maps a chart to the index of its anchor face in m; flipped records,
// by original face id, whether the chart's parameterization was mirrored.
// The mesh must have its original wedge texcoords captured. An anchor whose
// face references a container outside texsz is an internal-consistency
// violation and panics.
func AlignTexels(m *mesh.Mesh, charts []*mesh.Chart, texsz []TextureSize, anchors map[*mesh.Chart]int, flipped map[int]bool) {
	if !m.HasWedgeTexCoordStorage() {
		panic("atlas: original wedge texcoords were not captured before packing")
	}

	for _, c := range charts {
		fi, ok := anchors[c]
		if !ok {
			continue
		}
		f := &m.Faces[fi]
		flip, ok := flipped[f.InitialID]
		if !ok {
			panic(fmt.Sprintf("atlas: no flip record for anchor face %d (initial id %d)", fi, f.InitialID))
		}

		// Edge direction before and after packing determines which discrete
		// rotation the packer applied.
		d0 := m.OrigWT[fi][1].P.Sub(m.OrigWT[fi][0].P)
		d1 := f.WT[1].P.Sub(f.WT[0].P)
		if flip {
			d0 = mgl64.Vec2{-d0.X(), d0.Y()}
		}

		minResidual := 2 * gomath.Pi
		rotation := -1
		for i, a := range rotationAngles {
			if residual := geom.VecAngle(geom.Rotate(d0, a), d1); residual < minResidual {
				minResidual = residual
				rotation = i
			}
		}

		ti := f.WT[0].N
		if ti < 0 || ti >= len(texsz) {
			panic(fmt.Sprintf("atlas: anchor face %d references container %d, have %d", fi, ti, len(texsz)))
		}
		texW := float64(texsz[ti].W)
		texH := float64(texsz[ti].H)

		u0 := m.OrigWT[fi][0].P
		u1 := f.WT[0].P

		dx := frac(u0.X())
		dy := frac(u0.Y())
		if flip {
			dx = 1 - dx
		}

		// Permute the expected fractional offset to match the rotation the
		// packer applied.
		switch rotation {
		case 0:
		case 1:
			dx, dy = dy, dx
			dx = 1 - dx
		case 2:
			dx = 1 - dx
			dy = 1 - dy
		case 3:
			dx, dy = dy, dx
			dy = 1 - dy
		}

		dx1 := frac(u1.X() * texW)
		dy1 := frac(u1.Y() * texH)

		t := mgl64.Vec2{(dx - dx1) / texW, (dy - dy1) / texH}
		for _, fj := range c.Faces {
			face := &m.Faces[fj]
			for k := 0; k < 3; k++ {
				face.WT[k].P = face.WT[k].P.Add(t)
				m.Verts[face.V[k]].T.P = face.WT[k].P
			}
		}
	}
}

// frac returns the fractional part of x, keeping the sign of x.
func frac(x float64) float64 {
	_, f := gomath.Modf(x)
	return f
}
