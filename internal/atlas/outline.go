package atlas

import (
	"go.uber.org/zap"

	"github.com/meshforge/atlaspack/internal/geom"
	"github.com/meshforge/atlaspack/internal/mesh"
)

type edgeRef struct {
	face int
	edge int
}

// ExtractOutline derives the closed boundary polygon of a chart in UV space.
// It never fails: when the chart has no walkable boundary, or the walked
// boundary does not cover the chart's UV extent, the chart's UV bounding box
// is returned instead.
//
// Candidate outlines are produced by following border edges; the candidate
// with the most vertices is kept and its winding normalized to non-negative
// signed area.
func ExtractOutline(c *mesh.Chart, log *zap.Logger) geom.Outline {
	if log == nil {
		log = zap.NewNop()
	}
	m := c.Mesh()

	borders := mesh.ChartBorders(m, c)
	byFrom := make(map[int][]mesh.BorderEdge)
	for _, b := range borders {
		byFrom[b.From] = append(byFrom[b.From], b)
	}

	visited := make(map[edgeRef]bool)
	var candidates []geom.Outline

	for _, start := range borders {
		if visited[edgeRef{start.Face, start.Edge}] {
			continue
		}
		cur := start
		var outline geom.Outline
		closed := false
		for {
			visited[edgeRef{cur.Face, cur.Edge}] = true
			outline = append(outline, m.Faces[cur.Face].WT[cur.Edge].P)

			next, ok := followBorder(cur, start, byFrom, visited)
			if !ok {
				break
			}
			if next == start {
				closed = true
				break
			}
			cur = next
		}
		if closed {
			candidates = append(candidates, outline)
		}
	}

	box := c.UVBox()
	useBox := false

	if len(candidates) == 0 {
		useBox = true
	} else {
		best := 0
		if len(candidates) > 1 {
			for i := 1; i < len(candidates); i++ {
				if len(candidates[i]) > len(candidates[best]) {
					best = i
				}
			}
		}
		outline := candidates[best]
		if outline.SignedArea() < 0 {
			outline.Reverse()
		}
		obox := outline.Box()
		if obox.DimX() < box.DimX() || obox.DimY() < box.DimY() {
			useBox = true
		} else {
			return outline
		}
	}

	if useBox {
		log.Warn("failed to compute outline for chart, falling back to UV bounding box",
			zap.Int("chart", c.ID),
			zap.Int("faces", c.FaceCount()),
			zap.Float64("bboxArea", box.Area()))
	}
	return geom.Outline{
		box.Min,
		{box.Max.X(), box.Min.Y()},
		box.Max,
		{box.Min.X(), box.Max.Y()},
	}
}

// followBorder finds the next border edge continuing the walk at cur's end
// vertex. Closing the walk back to start takes priority; otherwise the first
// unvisited continuation is taken.
func followBorder(cur, start mesh.BorderEdge, byFrom map[int][]mesh.BorderEdge, visited map[edgeRef]bool) (mesh.BorderEdge, bool) {
	for _, e := range byFrom[cur.To] {
		if e == start {
			return start, true
		}
	}
	for _, e := range byFrom[cur.To] {
		if !visited[edgeRef{e.Face, e.Edge}] {
			return e, true
		}
	}
	return mesh.BorderEdge{}, false
}
