package atlas

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshforge/atlaspack/internal/mesh"
)

// quadChart builds a one-quad chart (two triangles sharing the diagonal) with
// the given corner UVs, ordered counter-clockwise.
func quadChart(uvs [4]mgl64.Vec2) (*mesh.Mesh, *mesh.Chart) {
	m := &mesh.Mesh{}
	for range uvs {
		m.Verts = append(m.Verts, mesh.Vert{})
	}
	tris := [][3]int{{0, 1, 2}, {0, 2, 3}}
	for fi, tri := range tris {
		f := mesh.Face{V: tri, VT: tri, InitialID: fi}
		for k := 0; k < 3; k++ {
			f.WT[k] = mesh.TexCoord{P: uvs[tri[k]]}
		}
		m.Faces = append(m.Faces, f)
	}
	return m, mesh.NewChart(m, 0, []int{0, 1})
}

var unitQuad = [4]mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func TestExtractOutlineQuad(t *testing.T) {
	_, c := quadChart(unitQuad)

	outline := ExtractOutline(c, nil)
	if len(outline) != 4 {
		t.Fatalf("expected 4 outline points, got %d", len(outline))
	}
	if area := outline.SignedArea(); area <= 0 {
		t.Errorf("expected positive signed area, got %f", area)
	}

	box := outline.Box()
	uvBox := c.UVBox()
	if box.Min != uvBox.Min || box.Max != uvBox.Max {
		t.Errorf("outline box %v-%v does not cover chart box %v-%v",
			box.Min, box.Max, uvBox.Min, uvBox.Max)
	}
}

func TestExtractOutlineIdempotent(t *testing.T) {
	_, c := quadChart(unitQuad)

	first := ExtractOutline(c, nil)
	second := ExtractOutline(c, nil)
	if len(first) != len(second) {
		t.Fatalf("outline length changed between runs: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d changed: %v != %v", i, first[i], second[i])
		}
	}
}

func TestExtractOutlineWindingNormalized(t *testing.T) {
	// Mirrored parameterization: the border walk runs clockwise.
	mirrored := [4]mgl64.Vec2{{0, 0}, {-1, 0}, {-1, 1}, {0, 1}}
	_, c := quadChart(mirrored)

	outline := ExtractOutline(c, nil)
	if area := outline.SignedArea(); area <= 0 {
		t.Errorf("expected normalized winding with positive area, got %f", area)
	}
}

func TestExtractOutlineFallback(t *testing.T) {
	// Duplicating every face pairs every edge, leaving no border to walk.
	m, _ := quadChart(unitQuad)
	m.Faces = append(m.Faces, m.Faces[0], m.Faces[1])
	c := mesh.NewChart(m, 7, []int{0, 1, 2, 3})

	outline := ExtractOutline(c, nil)
	if len(outline) != 4 {
		t.Fatalf("expected 4 fallback corners, got %d", len(outline))
	}
	box := c.UVBox()
	want := []mgl64.Vec2{
		box.Min,
		{box.Max.X(), box.Min.Y()},
		box.Max,
		{box.Min.X(), box.Max.Y()},
	}
	for i, p := range want {
		if outline[i] != p {
			t.Errorf("corner %d: got %v, want %v", i, outline[i], p)
		}
	}
}
