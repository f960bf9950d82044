// Package preview renders packed atlas containers as wireframe PNG images for
// visual inspection of packing results.
package preview

import (
	"image"
	"image/color"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/meshforge/atlaspack/internal/atlas"
	"github.com/meshforge/atlaspack/internal/mesh"
)

var background = color.RGBA{R: 24, G: 24, B: 28, A: 255}

// palette assigns stable colors by chart id.
var palette = []color.RGBA{
	{R: 230, G: 90, B: 80, A: 255},
	{R: 90, G: 200, B: 120, A: 255},
	{R: 100, G: 140, B: 240, A: 255},
	{R: 240, G: 200, B: 80, A: 255},
	{R: 200, G: 100, B: 220, A: 255},
	{R: 90, G: 210, B: 210, A: 255},
	{R: 240, G: 150, B: 90, A: 255},
	{R: 160, G: 220, B: 90, A: 255},
}

// Render draws the post-packing UV wireframe of every chart assigned to the
// given container. The image preserves the container's aspect ratio with its
// longer side at most maxDim pixels; drawing happens at double resolution and
// is downscaled for smoother edges.
func Render(m *mesh.Mesh, charts []*mesh.Chart, result *atlas.Result, container, maxDim int) *image.RGBA {
	if maxDim <= 0 {
		maxDim = 1024
	}
	texW, texH := 1, 1
	if container >= 0 && container < len(result.TextureSizes) {
		texW = result.TextureSizes[container].W
		texH = result.TextureSizes[container].H
	}
	longest := gomath.Max(float64(texW), float64(texH))
	outW := int(gomath.Round(float64(maxDim) * float64(texW) / longest))
	outH := int(gomath.Round(float64(maxDim) * float64(texH) / longest))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	over := image.NewRGBA(image.Rect(0, 0, outW*2, outH*2))
	draw.Draw(over, over.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, c := range charts {
		if result.Assignments[i] != container {
			continue
		}
		col := palette[c.ID%len(palette)]
		for _, fi := range c.Faces {
			f := &m.Faces[fi]
			for k := 0; k < 3; k++ {
				a := f.WT[k].P
				b := f.WT[(k+1)%3].P
				drawLine(over,
					a.X()*float64(outW*2), (1-a.Y())*float64(outH*2),
					b.X()*float64(outW*2), (1-b.Y())*float64(outH*2),
					col)
			}
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), over, over.Bounds(), draw.Src, nil)
	return out
}

// drawLine plots a line segment with a simple DDA walk.
func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, col color.RGBA) {
	steps := int(gomath.Max(gomath.Abs(x1-x0), gomath.Abs(y1-y0))) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(x0 + (x1-x0)*t)
		y := int(y0 + (y1-y0)*t)
		if image.Pt(x, y).In(img.Bounds()) {
			img.SetRGBA(x, y, col)
		}
	}
}

// Save writes the image as a PNG, creating parent directories as needed.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
