package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// LoadOBJ reads a Wavefront OBJ file into a Mesh. Faces with more than three
// corners are fan-triangulated. Every face must carry texture coordinate
// indices, since the whole pipeline operates on UVs.
func LoadOBJ(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m := &Mesh{}
	var uvs []mgl64.Vec2

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: malformed vertex", lineNo)
			}
			x, err1 := strconv.ParseFloat(fields[1], 64)
			y, err2 := strconv.ParseFloat(fields[2], 64)
			z, err3 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("line %d: malformed vertex", lineNo)
			}
			m.Verts = append(m.Verts, Vert{Pos: mgl64.Vec3{x, y, z}})
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed texcoord", lineNo)
			}
			u, err1 := strconv.ParseFloat(fields[1], 64)
			v, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: malformed texcoord", lineNo)
			}
			uvs = append(uvs, mgl64.Vec2{u, v})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with fewer than 3 corners", lineNo)
			}
			type corner struct{ v, vt int }
			corners := make([]corner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				parts := strings.Split(tok, "/")
				vi, err := resolveIndex(parts[0], len(m.Verts))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				if len(parts) < 2 || parts[1] == "" {
					return nil, fmt.Errorf("line %d: face corner has no texture coordinate", lineNo)
				}
				ti, err := resolveIndex(parts[1], len(uvs))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, corner{vi, ti})
			}
			for i := 1; i+1 < len(corners); i++ {
				tri := [3]corner{corners[0], corners[i], corners[i+1]}
				f := Face{InitialID: len(m.Faces)}
				for k := 0; k < 3; k++ {
					f.V[k] = tri[k].v
					f.VT[k] = tri[k].vt
					f.WT[k] = TexCoord{P: uvs[tri[k].vt]}
				}
				m.Faces = append(m.Faces, f)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(m.Faces) == 0 {
		return nil, fmt.Errorf("%s: no faces", path)
	}
	return m, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func resolveIndex(tok string, n int) (int, error) {
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("malformed index %q", tok)
	}
	if idx < 0 {
		idx = n + idx
	} else {
		idx--
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("index %q out of range", tok)
	}
	return idx, nil
}

// SaveOBJ writes the mesh back out with its current wedge texture coordinates.
// Wedge UVs are deduplicated into a fresh texcoord pool.
func SaveOBJ(m *Mesh, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	for _, v := range m.Verts {
		fmt.Fprintf(w, "v %g %g %g\n", v.Pos.X(), v.Pos.Y(), v.Pos.Z())
	}

	uvIndex := make(map[mgl64.Vec2]int)
	faceUV := make([][3]int, len(m.Faces))
	for fi := range m.Faces {
		for k := 0; k < 3; k++ {
			p := m.Faces[fi].WT[k].P
			idx, ok := uvIndex[p]
			if !ok {
				idx = len(uvIndex)
				uvIndex[p] = idx
				fmt.Fprintf(w, "vt %g %g\n", p.X(), p.Y())
			}
			faceUV[fi][k] = idx
		}
	}

	for fi := range m.Faces {
		f := &m.Faces[fi]
		fmt.Fprintf(w, "f %d/%d %d/%d %d/%d\n",
			f.V[0]+1, faceUV[fi][0]+1,
			f.V[1]+1, faceUV[fi][1]+1,
			f.V[2]+1, faceUV[fi][2]+1)
	}

	return w.Flush()
}
