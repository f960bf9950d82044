package mesh

import "sort"

// BuildCharts groups faces into charts by UV connectivity: faces sharing a
// texcoord index belong to the same chart. This is a minimal stand-in for the
// upstream chart construction stage so the pipeline can run end to end on a
// plain mesh file.
func BuildCharts(m *Mesh) []*Chart {
	parent := make([]int, len(m.Faces))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	firstFace := make(map[int]int) // texcoord index -> first face seen
	for fi, f := range m.Faces {
		for k := 0; k < 3; k++ {
			if other, ok := firstFace[f.VT[k]]; ok {
				union(other, fi)
			} else {
				firstFace[f.VT[k]] = fi
			}
		}
	}

	groups := make(map[int][]int)
	for fi := range m.Faces {
		root := find(fi)
		groups[root] = append(groups[root], fi)
	}

	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	charts := make([]*Chart, 0, len(roots))
	for id, root := range roots {
		charts = append(charts, NewChart(m, id, groups[root]))
	}
	return charts
}
