// Package mesh holds the triangle mesh model shared by the packing pipeline:
// per-vertex and per-wedge texture coordinates, charts, and OBJ import/export.
package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshforge/atlaspack/internal/geom"
)

// TexCoord is a UV position plus the index of the texture it samples.
type TexCoord struct {
	P mgl64.Vec2
	N int
}

// Vert is a mesh vertex with its position and per-vertex texture coordinate.
type Vert struct {
	Pos mgl64.Vec3
	T   TexCoord
}

// Face is a triangle. V indexes the vertex table, VT the texcoord pool the
// mesh was imported with (the UV-space identity of each corner), WT holds the
// wedge texture coordinates. InitialID identifies the face across pipeline
// stages that renumber or merge charts.
type Face struct {
	V         [3]int
	VT        [3]int
	WT        [3]TexCoord
	InitialID int
}

// Mesh is a triangle mesh with wedge texture coordinates.
type Mesh struct {
	Verts []Vert
	Faces []Face

	// OrigWT stores the wedge texcoords as they were before packing, one
	// entry per face. Nil until CaptureWedgeTexCoords is called.
	OrigWT [][3]TexCoord
}

// CaptureWedgeTexCoords snapshots the current wedge texcoords so later stages
// can compare packed UVs against the original parameterization.
func (m *Mesh) CaptureWedgeTexCoords() {
	m.OrigWT = make([][3]TexCoord, len(m.Faces))
	for i := range m.Faces {
		m.OrigWT[i] = m.Faces[i].WT
	}
}

// HasWedgeTexCoordStorage reports whether original wedge texcoords were captured.
func (m *Mesh) HasWedgeTexCoordStorage() bool {
	return m.OrigWT != nil
}

// Chart is a connected group of faces sharing one UV parameterization patch.
type Chart struct {
	ID    int
	Faces []int

	mesh       *Mesh
	box        geom.Box2
	boxValid   bool
	Generation int
}

// NewChart creates a chart over the given faces of m.
func NewChart(m *Mesh, id int, faces []int) *Chart {
	return &Chart{ID: id, Faces: faces, mesh: m}
}

// Mesh returns the mesh the chart's faces belong to.
func (c *Chart) Mesh() *Mesh { return c.mesh }

// FaceCount returns the number of faces in the chart.
func (c *Chart) FaceCount() int { return len(c.Faces) }

// UVBox returns the bounding box of the chart's wedge texture coordinates.
// The box is cached until ParameterizationChanged is called.
func (c *Chart) UVBox() geom.Box2 {
	if c.boxValid {
		return c.box
	}
	box := geom.EmptyBox2()
	for _, fi := range c.Faces {
		for k := 0; k < 3; k++ {
			box.Add(c.mesh.Faces[fi].WT[k].P)
		}
	}
	c.box = box
	c.boxValid = true
	return box
}

// ParameterizationChanged invalidates cached UV-derived state. Called once per
// chart after its texture coordinates have been rewritten.
func (c *Chart) ParameterizationChanged() {
	c.boxValid = false
	c.Generation++
}
