// Package atlas orchestrates chart packing: it extracts chart outlines, drives
// the geometric bin packer over a growable set of containers, rewrites the
// mesh's texture coordinates, and realigns packed charts to the texel grid.
package atlas

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/meshforge/atlaspack/internal/geom"
	"github.com/meshforge/atlaspack/internal/mesh"
	"github.com/meshforge/atlaspack/internal/rasterpack"
)

// Assignment sentinels. Non-negative values are container indices; the
// negative values record why a chart will never be packed.
const (
	Unassigned     = -1
	SkipEmpty      = -2 // outline has no points
	SkipTooLarge   = -3 // scaled outline exceeds the rasterizer limit
	SkipInvalidBox = -4 // non-finite or negative UV bounding box
)

// NoTexture is the texture index stamped on charts that were never packed.
const NoTexture = -1

// ErrRetryLimit reports that a packing round could not make progress within
// the attempt budget. It indicates geometry or parameters that cannot
// converge; the whole packing operation is aborted.
var ErrRetryLimit = errors.New("packing retry limit exceeded")

// TextureSize is the raster resolution of a finalized container in
// texture-pixel units.
type TextureSize struct {
	W int
	H int
}

// TextureHint describes one destination texture before packing: its size
// relative to the reference resolution and its source size in pixels.
type TextureHint struct {
	WidthRatio  float64
	HeightRatio float64
	Width       int
	Height      int
}

// Params bounds the packing process. DefaultParams returns the values that
// are part of the observable contract.
type Params struct {
	// ReferenceResolution is the pixel size containers start at.
	ReferenceResolution int
	// GutterWidth is the inter-chart spacing handed to the packer, in pixels.
	GutterWidth int
	// RotationNum is the number of rotation candidates per outline.
	RotationNum int
	// PermutationCutoff disables the packer's permutation search when the
	// chart count reaches it.
	PermutationCutoff int
	// MaxRasterDim is the hard pixel ceiling of the rasterizer; charts whose
	// scaled bounding-box diagonal exceeds it are skipped permanently.
	MaxRasterDim float64
	// MaxContainerSize caps container growth within a packing round.
	MaxContainerSize int
	// MaxPackAttempts bounds the grow-and-retry loop per round.
	MaxPackAttempts int
	// Growth is the multiplicative container growth factor on a failed attempt.
	Growth float64
}

// DefaultParams returns the contract parameters.
func DefaultParams() Params {
	return Params{
		ReferenceResolution: 16384,
		GutterWidth:         4,
		RotationNum:         4,
		PermutationCutoff:   50,
		MaxRasterDim:        32766,
		MaxContainerSize:    20000,
		MaxPackAttempts:     50,
		Growth:              1.1,
	}
}

// Packer is the geometric bin packer the orchestrator drives. It must be
// deterministic for fixed inputs and never place an outline outside the
// container. rasterpack.Packer implements it.
type Packer interface {
	PackBestEffortAtScale(outlines []geom.Outline, container rasterpack.Size, params rasterpack.Params) (n int, transforms []geom.Similarity2, slots []int)
}

// Result is the outcome of a packing operation.
type Result struct {
	// Packed is the number of charts successfully placed into a container.
	Packed int
	// TextureSizes holds the final raster resolution per container.
	TextureSizes []TextureSize
	// Assignments records, per chart, the container index or the terminal
	// skip sentinel.
	Assignments []int
	// Transforms holds the packing transform per chart; identity for charts
	// that were not packed.
	Transforms []geom.Similarity2
	// Scale is the global UV-to-pixel packing scale that was used.
	Scale float64
}

// Orchestrator runs the packing algorithm. It is not safe for concurrent use
// on the same mesh.
type Orchestrator struct {
	packer Packer
	params Params
	log    *zap.Logger
}

// New creates an orchestrator. A nil logger disables logging.
func New(packer Packer, params Params, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{packer: packer, params: params, log: log}
}

// Pack places every chart into a container or marks it permanently skipped,
// then rewrites the mesh's texture coordinates: packed charts get their
// transform applied and normalized to [0,1] over their container, skipped
// charts are zeroed and stamped with NoTexture.
//
// The returned error is non-nil only for the unrecoverable case of exceeding
// the retry budget; partial capacity problems end the round and leave the
// remaining charts unpacked.
func (o *Orchestrator) Pack(m *mesh.Mesh, charts []*mesh.Chart, hints []TextureHint) (*Result, error) {
	outlines := make([]geom.Outline, len(charts))
	for i, c := range charts {
		outlines[i] = ExtractOutline(c, o.log)
	}

	ref := o.params.ReferenceResolution
	containers := make([]rasterpack.Size, 0, len(hints))
	for _, h := range hints {
		containers = append(containers, rasterpack.Size{
			W: int(float64(ref) * h.WidthRatio),
			H: int(float64(ref) * h.HeightRatio),
		})
	}

	packingArea, textureArea := 0, 0
	for i := range containers {
		packingArea += containers[i].Area()
		textureArea += hints[i].Width * hints[i].Height
	}
	packingScale := 1.0
	if textureArea > 0 {
		packingScale = gomath.Sqrt(float64(packingArea) / float64(textureArea))
	}
	if gomath.IsNaN(packingScale) || gomath.IsInf(packingScale, 0) || packingScale <= 0 {
		o.log.Warn("invalid packing scale computed, resetting to 1.0",
			zap.Float64("scale", packingScale),
			zap.Int("packingArea", packingArea),
			zap.Int("textureArea", textureArea))
		packingScale = 1.0
	}
	o.log.Info("packing scale factor",
		zap.Float64("scale", packingScale),
		zap.Int("packingArea", packingArea),
		zap.Int("textureArea", textureArea))

	packParams := rasterpack.Params{
		Cost:         rasterpack.LowestHorizon,
		RotationNum:  o.params.RotationNum,
		GutterWidth:  o.params.GutterWidth,
		Permutations: len(charts) < o.params.PermutationCutoff,
		Scale:        packingScale,
	}

	assignments := make([]int, len(charts))
	transforms := make([]geom.Similarity2, len(charts))
	for i := range assignments {
		assignments[i] = Unassigned
		transforms[i] = geom.Identity()
	}

	var texsz []TextureSize
	settled := 0 // charts with a terminal assignment, packed or skipped
	nc := 0      // current container index

	for settled < len(charts) {
		if nc >= len(containers) {
			containers = append(containers, rasterpack.Size{W: ref, H: ref})
		}

		var batch []int
		for i := range assignments {
			if assignments[i] == Unassigned {
				batch = append(batch, i)
			}
		}
		if len(batch) == 0 {
			break
		}

		// Filter charts the rasterizer can never handle; they are settled
		// permanently, not retried.
		var filtered []int
		for _, idx := range batch {
			if outlines[idx].Empty() {
				o.log.Warn("skipping chart with empty outline", zap.Int("chart", charts[idx].ID))
				assignments[idx] = SkipEmpty
				settled++
				continue
			}
			box := outlines[idx].Box()
			if !box.Valid() {
				o.log.Warn("skipping chart with invalid UV bounding box", zap.Int("chart", charts[idx].ID))
				assignments[idx] = SkipInvalidBox
				settled++
				continue
			}
			w := box.DimX() * packingScale
			h := box.DimY() * packingScale
			if diagonal := gomath.Hypot(w, h); diagonal > o.params.MaxRasterDim {
				o.log.Warn("skipping chart larger than the rasterizer limit",
					zap.Int("chart", charts[idx].ID),
					zap.Float64("diagonal", diagonal))
				assignments[idx] = SkipTooLarge
				settled++
				continue
			}
			filtered = append(filtered, idx)
		}
		if len(filtered) == 0 {
			continue
		}

		batchOutlines := make([]geom.Outline, len(filtered))
		largest, maxArea := filtered[0], 0.0
		for bi, idx := range filtered {
			batchOutlines[bi] = outlines[idx]
			if a := outlines[idx].Box().Area(); a > maxArea {
				maxArea = a
				largest = idx
			}
		}
		o.log.Info("largest chart in packing batch",
			zap.Int("chart", charts[largest].ID),
			zap.Float64("uvArea", maxArea))

		n, batchTransforms, slots, err := o.packBatch(batchOutlines, containers, nc, packParams)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Capacity exhausted even at the maximum container size.
			break
		}

		settled += n
		textureScale := 1.0 / packingScale
		texsz = append(texsz, TextureSize{
			W: int(float64(containers[nc].W) * textureScale),
			H: int(float64(containers[nc].H) * textureScale),
		})
		for bi, idx := range filtered {
			if slots[bi] == rasterpack.NotPlaced {
				continue
			}
			if slots[bi] != 0 {
				panic("atlas: packer reported a container other than the one provided")
			}
			if assignments[idx] != Unassigned {
				panic("atlas: chart assigned to two containers")
			}
			assignments[idx] = nc
			transforms[idx] = batchTransforms[bi]
		}
		nc++
	}

	o.applyTransforms(m, charts, containers, assignments, transforms)

	for _, c := range charts {
		c.ParameterizationChanged()
	}

	packed := 0
	for _, a := range assignments {
		if a >= 0 {
			packed++
		}
	}
	return &Result{
		Packed:       packed,
		TextureSizes: texsz,
		Assignments:  assignments,
		Transforms:   transforms,
		Scale:        packingScale,
	}, nil
}

// packBatch drives the grow-and-retry loop for one container round. A zero
// count with a nil error means the container hit its growth ceiling without
// fitting anything.
func (o *Orchestrator) packBatch(outlines []geom.Outline, containers []rasterpack.Size, nc int, packParams rasterpack.Params) (int, []geom.Similarity2, []int, error) {
	attempts := 0
	for {
		attempts++
		if attempts > o.params.MaxPackAttempts {
			return 0, nil, nil, fmt.Errorf("packing %d charts into %s grid: %d attempts without progress: %w",
				len(outlines), containers[nc], attempts-1, ErrRetryLimit)
		}
		o.log.Info("packing batch",
			zap.Int("charts", len(outlines)),
			zap.Int("gridW", containers[nc].W),
			zap.Int("gridH", containers[nc].H),
			zap.Int("attempt", attempts))
		n, transforms, slots := o.packer.PackBestEffortAtScale(outlines, containers[nc], packParams)
		o.log.Info("packing attempt finished", zap.Int("packed", n))
		if n > 0 {
			return n, transforms, slots, nil
		}

		o.log.Warn("failed to pack any chart in batch", zap.Int("charts", len(outlines)))
		containers[nc].W = int(float64(containers[nc].W) * o.params.Growth)
		containers[nc].H = int(float64(containers[nc].H) * o.params.Growth)
		if containers[nc].W > o.params.MaxContainerSize || containers[nc].H > o.params.MaxContainerSize {
			return 0, nil, nil, nil
		}
	}
}

// applyTransforms rewrites every chart's texture coordinates: skipped charts
// are zeroed with the NoTexture index, packed charts get the packing transform
// applied and are normalized by their container's pixel dimensions.
func (o *Orchestrator) applyTransforms(m *mesh.Mesh, charts []*mesh.Chart, containers []rasterpack.Size, assignments []int, transforms []geom.Similarity2) {
	for i, c := range charts {
		ic := assignments[i]
		for _, fi := range c.Faces {
			f := &m.Faces[fi]
			if ic < 0 {
				for j := 0; j < 3; j++ {
					m.Verts[f.V[j]].T = mesh.TexCoord{N: NoTexture}
					f.WT[j] = mesh.TexCoord{N: NoTexture}
				}
				continue
			}
			grid := containers[ic]
			for j := 0; j < 3; j++ {
				p := transforms[i].Apply(f.WT[j].P)
				p = mgl64.Vec2{p.X() / float64(grid.W), p.Y() / float64(grid.H)}
				m.Verts[f.V[j]].T = mesh.TexCoord{P: p, N: ic}
				f.WT[j] = m.Verts[f.V[j]].T
			}
		}
	}
}
