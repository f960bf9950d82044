package rasterpack

import (
	gomath "math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshforge/atlaspack/internal/geom"
)

// NotPlaced marks an outline the packer could not fit.
const NotPlaced = -1

// placement is a committed position for one outline.
type placement struct {
	rotation int
	x        int
	y        float64 // container y of the shape's local origin
}

// Packer packs polygon outlines into a single container. The zero value is
// ready to use.
type Packer struct{}

// PackBestEffortAtScale packs as many outlines as possible into the container.
// It returns the number of outlines placed, one similarity transform per input
// outline mapping the unscaled outline into container pixel space, and a
// per-outline container slot: 0 if placed, NotPlaced otherwise.
//
// The result is deterministic for fixed inputs, and no outline is ever placed
// outside the container.
func (Packer) PackBestEffortAtScale(outlines []geom.Outline, container Size, params Params) (int, []geom.Similarity2, []int) {
	n := len(outlines)
	transforms := make([]geom.Similarity2, n)
	slots := make([]int, n)
	for i := range transforms {
		transforms[i] = geom.Identity()
		slots[i] = NotPlaced
	}
	if n == 0 || container.W <= 0 || container.H <= 0 {
		return 0, transforms, slots
	}

	rotations := params.RotationNum
	if rotations < 1 {
		rotations = 1
	}
	scale := params.Scale
	if scale <= 0 {
		scale = 1
	}

	// Rasterize every outline at every candidate rotation up front.
	profiles := make([][]*profile, n)
	for i, o := range outlines {
		profiles[i] = make([]*profile, rotations)
		for r := 0; r < rotations; r++ {
			theta := float64(r) * 2 * gomath.Pi / float64(rotations)
			profiles[i][r] = rasterize(o, theta, scale, params.GutterWidth)
		}
	}

	bestPlaced := -1
	bestPeak := gomath.Inf(1)
	var bestResult map[int]placement

	for _, order := range insertionOrders(outlines, params.Permutations) {
		placed, peak := greedyPack(profiles, order, container)
		if len(placed) > bestPlaced || (len(placed) == bestPlaced && peak < bestPeak) {
			bestPlaced = len(placed)
			bestPeak = peak
			bestResult = placed
		}
	}

	count := 0
	for i, pl := range bestResult {
		prof := profiles[i][pl.rotation]
		theta := float64(pl.rotation) * 2 * gomath.Pi / float64(rotations)
		transforms[i] = geom.Similarity2{
			Rot:   theta,
			Scale: scale,
			Tra: mgl64.Vec2{
				float64(pl.x) + float64(prof.gutter) - prof.minX,
				pl.y - prof.minY,
			},
		}
		slots[i] = 0
		count++
	}
	return count, transforms, slots
}

// greedyPack inserts outlines in the given order, each at its best scoring
// rotation and position. Returns the committed placements and the peak
// skyline height.
func greedyPack(profiles [][]*profile, order []int, container Size) (map[int]placement, float64) {
	horizon := make([]float64, container.W)
	placed := make(map[int]placement)
	peak := 0.0

	for _, i := range order {
		best := placement{rotation: -1}
		bestCost := gomath.Inf(1)

		for r, prof := range profiles[i] {
			if prof == nil || prof.width > container.W {
				continue
			}
			for px := 0; px+prof.width <= container.W; px++ {
				y := 0.0
				for j := 0; j < prof.width; j++ {
					if need := horizon[px+j] - prof.bottom[j]; need > y {
						y = need
					}
				}
				top := gomath.Inf(-1)
				for j := 0; j < prof.width; j++ {
					if t := y + prof.top[j]; t > top {
						top = t
					}
				}
				if top > float64(container.H) {
					continue
				}
				// Lowest horizon: keep the resulting skyline as low as
				// possible, ties resolved to the leftmost position and the
				// earliest rotation.
				if top < bestCost {
					bestCost = top
					best = placement{rotation: r, x: px, y: y}
				}
			}
		}

		if best.rotation < 0 {
			continue
		}
		prof := profiles[i][best.rotation]
		for j := 0; j < prof.width; j++ {
			if t := best.y + prof.top[j]; t > horizon[best.x+j] {
				horizon[best.x+j] = t
			}
		}
		if bestCost > peak {
			peak = bestCost
		}
		placed[i] = best
	}
	return placed, peak
}

// insertionOrders returns the candidate insertion orders. The primary order is
// by descending bounding-box area; with permutations enabled a few alternative
// sortings are tried as well.
func insertionOrders(outlines []geom.Outline, permutations bool) [][]int {
	boxes := make([]geom.Box2, len(outlines))
	for i, o := range outlines {
		boxes[i] = o.Box()
	}

	byDesc := func(key func(geom.Box2) float64) []int {
		order := make([]int, len(outlines))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return key(boxes[order[a]]) > key(boxes[order[b]])
		})
		return order
	}

	orders := [][]int{byDesc(geom.Box2.Area)}
	if permutations {
		orders = append(orders,
			byDesc(func(b geom.Box2) float64 { return gomath.Max(b.DimX(), b.DimY()) }),
			byDesc(geom.Box2.DimX),
			byDesc(geom.Box2.DimY),
			byDesc(func(b geom.Box2) float64 { return b.DimX() + b.DimY() }),
		)
	}
	return orders
}
