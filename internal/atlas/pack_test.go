package atlas

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshforge/atlaspack/internal/geom"
	"github.com/meshforge/atlaspack/internal/mesh"
	"github.com/meshforge/atlaspack/internal/rasterpack"
)

// islandMesh builds a mesh of n disjoint unit-quad UV islands, one chart each.
func islandMesh(n int) (*mesh.Mesh, []*mesh.Chart) {
	m := &mesh.Mesh{}
	for i := 0; i < n; i++ {
		base := len(m.Verts)
		offset := float64(i * 2)
		uvs := [4]mgl64.Vec2{
			{offset, 0}, {offset + 1, 0}, {offset + 1, 1}, {offset, 1},
		}
		for range uvs {
			m.Verts = append(m.Verts, mesh.Vert{})
		}
		tris := [][3]int{{0, 1, 2}, {0, 2, 3}}
		for _, tri := range tris {
			f := mesh.Face{InitialID: len(m.Faces)}
			for k := 0; k < 3; k++ {
				f.V[k] = base + tri[k]
				f.VT[k] = base + tri[k]
				f.WT[k] = mesh.TexCoord{P: uvs[tri[k]]}
			}
			m.Faces = append(m.Faces, f)
		}
	}
	return m, mesh.BuildCharts(m)
}

// stubPacker scripts the bin packer: it fails the first `failures` calls and
// then places every outline with a plain pre-scale transform.
type stubPacker struct {
	failures   int
	calls      int
	lastParams rasterpack.Params
}

func (s *stubPacker) PackBestEffortAtScale(outlines []geom.Outline, container rasterpack.Size, params rasterpack.Params) (int, []geom.Similarity2, []int) {
	s.calls++
	s.lastParams = params

	transforms := make([]geom.Similarity2, len(outlines))
	slots := make([]int, len(outlines))
	for i := range transforms {
		transforms[i] = geom.Identity()
		slots[i] = rasterpack.NotPlaced
	}
	if s.calls <= s.failures {
		return 0, transforms, slots
	}
	for i := range outlines {
		transforms[i] = geom.Similarity2{Scale: params.Scale}
		slots[i] = 0
	}
	return len(outlines), transforms, slots
}

// hint1024 is a single destination texture of 1024x1024 pixels against the
// default 16384 reference resolution, yielding a packing scale of exactly 1.
func hint1024() []TextureHint {
	return []TextureHint{{
		WidthRatio:  1024.0 / 16384.0,
		HeightRatio: 1024.0 / 16384.0,
		Width:       1024,
		Height:      1024,
	}}
}

func TestPackSingleChart(t *testing.T) {
	m, charts := islandMesh(1)

	orch := New(rasterpack.Packer{}, DefaultParams(), nil)
	result, err := orch.Pack(m, charts, hint1024())
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if result.Packed != 1 {
		t.Fatalf("expected 1 packed chart, got %d", result.Packed)
	}
	if result.Scale != 1.0 {
		t.Errorf("expected packing scale 1.0, got %f", result.Scale)
	}
	if len(result.TextureSizes) != 1 {
		t.Fatalf("expected 1 texture size, got %d", len(result.TextureSizes))
	}
	if ts := result.TextureSizes[0]; ts.W != 1024 || ts.H != 1024 {
		t.Errorf("expected 1024x1024 texture, got %dx%d", ts.W, ts.H)
	}
	if result.Assignments[0] != 0 {
		t.Errorf("expected assignment to container 0, got %d", result.Assignments[0])
	}

	for fi := range m.Faces {
		f := &m.Faces[fi]
		for k := 0; k < 3; k++ {
			p := f.WT[k].P
			if p.X() < 0 || p.X() > 1 || p.Y() < 0 || p.Y() > 1 {
				t.Errorf("face %d corner %d uv %v outside [0,1]", fi, k, p)
			}
			if f.WT[k].N != 0 {
				t.Errorf("face %d corner %d texture index %d, want 0", fi, k, f.WT[k].N)
			}
			if m.Verts[f.V[k]].T != f.WT[k] {
				t.Errorf("vertex and wedge texcoords diverge on face %d", fi)
			}
		}
	}
}

func TestPackSkipsInvalidChart(t *testing.T) {
	m, charts := islandMesh(2)
	// Poison the second chart's parameterization.
	for _, fi := range charts[1].Faces {
		for k := 0; k < 3; k++ {
			m.Faces[fi].WT[k].P = mgl64.Vec2{gomath.NaN(), gomath.NaN()}
		}
	}
	charts[1].ParameterizationChanged()

	orch := New(rasterpack.Packer{}, DefaultParams(), nil)
	result, err := orch.Pack(m, charts, hint1024())
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if result.Packed != 1 {
		t.Errorf("expected 1 packed chart, got %d", result.Packed)
	}
	if result.Assignments[0] != 0 {
		t.Errorf("expected chart 0 in container 0, got %d", result.Assignments[0])
	}
	if result.Assignments[1] != SkipInvalidBox {
		t.Errorf("expected SkipInvalidBox, got %d", result.Assignments[1])
	}

	for _, fi := range charts[1].Faces {
		f := &m.Faces[fi]
		for k := 0; k < 3; k++ {
			if f.WT[k].P != (mgl64.Vec2{}) || f.WT[k].N != NoTexture {
				t.Errorf("skipped chart not zeroed: %+v", f.WT[k])
			}
			if m.Verts[f.V[k]].T.N != NoTexture {
				t.Errorf("skipped chart vertex keeps texture index %d", m.Verts[f.V[k]].T.N)
			}
		}
	}
}

func TestPackGrowthRetry(t *testing.T) {
	m, charts := islandMesh(2)

	stub := &stubPacker{failures: 2}
	orch := New(stub, DefaultParams(), nil)
	result, err := orch.Pack(m, charts, hint1024())
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if stub.calls != 3 {
		t.Errorf("expected 3 packing attempts, got %d", stub.calls)
	}
	// Two geometric growth steps: 1024 -> 1126 -> 1238.
	size := 1024.0
	size = float64(int(size * 1.1))
	want := int(size * 1.1)
	if ts := result.TextureSizes[0]; ts.W != want || ts.H != want {
		t.Errorf("expected %dx%d texture after growth, got %dx%d", want, want, ts.W, ts.H)
	}
	if result.Assignments[0] != 0 || result.Assignments[1] != 0 {
		t.Errorf("expected both charts in container 0, got %v", result.Assignments)
	}
}

func TestPackRetryLimit(t *testing.T) {
	m, charts := islandMesh(1)

	// A tiny 10px container grows too slowly to hit the size ceiling before
	// the attempt budget runs out.
	hints := []TextureHint{{
		WidthRatio:  10.0 / 16384.0,
		HeightRatio: 10.0 / 16384.0,
		Width:       10,
		Height:      10,
	}}

	stub := &stubPacker{failures: gomath.MaxInt32}
	orch := New(stub, DefaultParams(), nil)
	_, err := orch.Pack(m, charts, hints)
	if !errors.Is(err, ErrRetryLimit) {
		t.Fatalf("expected ErrRetryLimit, got %v", err)
	}
}

func TestPackCapacityExhaustion(t *testing.T) {
	m, charts := islandMesh(1)

	// Full-size container: growth passes the 20000 ceiling after a few
	// attempts, ending the round without an error.
	hints := []TextureHint{{WidthRatio: 1, HeightRatio: 1, Width: 16384, Height: 16384}}

	stub := &stubPacker{failures: gomath.MaxInt32}
	orch := New(stub, DefaultParams(), nil)
	result, err := orch.Pack(m, charts, hints)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if result.Packed != 0 {
		t.Errorf("expected 0 packed charts, got %d", result.Packed)
	}
	if len(result.TextureSizes) != 0 {
		t.Errorf("expected no finalized containers, got %d", len(result.TextureSizes))
	}
	if result.Assignments[0] != Unassigned {
		t.Errorf("expected Unassigned, got %d", result.Assignments[0])
	}
	for fi := range m.Faces {
		for k := 0; k < 3; k++ {
			if m.Faces[fi].WT[k].N != NoTexture {
				t.Errorf("unpacked chart keeps texture index %d", m.Faces[fi].WT[k].N)
			}
		}
	}
}

func TestPackPermutationCutoff(t *testing.T) {
	tests := []struct {
		charts int
		want   bool
	}{
		{49, true},
		{50, false},
		{51, false},
	}
	for _, tt := range tests {
		m, charts := islandMesh(tt.charts)
		stub := &stubPacker{}
		orch := New(stub, DefaultParams(), nil)
		if _, err := orch.Pack(m, charts, hint1024()); err != nil {
			t.Fatalf("Pack with %d charts: %v", tt.charts, err)
		}
		if stub.lastParams.Permutations != tt.want {
			t.Errorf("%d charts: permutations = %v, want %v", tt.charts, stub.lastParams.Permutations, tt.want)
		}
		if stub.lastParams.RotationNum != 4 {
			t.Errorf("%d charts: rotation count changed to %d", tt.charts, stub.lastParams.RotationNum)
		}
		if stub.lastParams.GutterWidth != 4 {
			t.Errorf("%d charts: gutter changed to %d", tt.charts, stub.lastParams.GutterWidth)
		}
	}
}

func TestPackAssignmentPartition(t *testing.T) {
	m, charts := islandMesh(6)

	orch := New(rasterpack.Packer{}, DefaultParams(), nil)
	result, err := orch.Pack(m, charts, hint1024())
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	for i, a := range result.Assignments {
		switch {
		case a >= 0:
			if a >= len(result.TextureSizes) {
				t.Errorf("chart %d assigned to unknown container %d", i, a)
			}
		case a == SkipEmpty || a == SkipTooLarge || a == SkipInvalidBox:
		default:
			t.Errorf("chart %d has non-terminal assignment %d", i, a)
		}
	}
	if result.Packed+countSkipped(result.Assignments) != len(charts) {
		t.Errorf("assignments do not partition the chart set: %v", result.Assignments)
	}
}

func countSkipped(assignments []int) int {
	n := 0
	for _, a := range assignments {
		if a < 0 && a != Unassigned {
			n++
		}
	}
	return n
}
