package mesh

// BorderEdge is a directed face edge lying on a chart's UV-space boundary.
// The edge runs from corner Edge to corner (Edge+1)%3 of the face.
type BorderEdge struct {
	Face int
	Edge int
	From int // texcoord pool index at the edge start
	To   int // texcoord pool index at the edge end
}

type edgeKey struct {
	a, b int
}

func undirected(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// ChartBorders returns the directed border edges of a chart: face edges whose
// opposite edge is not paired with another face of the same chart. Pairing is
// done over texcoord indices, so UV seams count as borders even when the
// positions are welded.
func ChartBorders(m *Mesh, c *Chart) []BorderEdge {
	count := make(map[edgeKey]int)
	for _, fi := range c.Faces {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			count[undirected(f.VT[e], f.VT[(e+1)%3])]++
		}
	}

	var borders []BorderEdge
	for _, fi := range c.Faces {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			from, to := f.VT[e], f.VT[(e+1)%3]
			if count[undirected(from, to)] == 1 {
				borders = append(borders, BorderEdge{Face: fi, Edge: e, From: from, To: to})
			}
		}
	}
	return borders
}
