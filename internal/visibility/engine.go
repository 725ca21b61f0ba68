package visibility

import (
	"math"
	"sort"

	"github.com/sightline-data/sightline/internal/geom"
	"github.com/sightline-data/sightline/internal/scene"
)

// Compute returns the visibility polygon for one sensor against a snapshot of
// obstacles and scene bounds. It is pure and total: identical input yields an
// identical vertex sequence, and every well-formed sensor produces a result
// even with zero obstacles (the FOV sector capped at max distance).
//
// The sweep works in three passes: collect occluding segments (obstacle edges
// plus an inflated boundary rectangle that guarantees ray termination),
// gather candidate ray angles (segment endpoint angles grazed on both sides,
// uniform fill angles, the exact FOV edges), then cast each ray, keep the
// nearest intersection and cap it at the sensor's max distance.
func Compute(sensor scene.Sensor, obstacles []scene.Obstacle, bounds scene.Bounds, params Params) Result {
	p := params.withDefaults()
	segs := collectSegments(obstacles, bounds, p.BoundaryMargin)

	halfFOV := sensor.FOVDeg / 2
	fullCircle := sensor.FOVDeg >= 360

	// Candidate angles are tracked as signed offsets from the facing
	// direction, normalized to (-180, 180]. Sorting offsets instead of
	// absolute angles keeps the fan ordered even when the cone crosses the
	// ±180° seam.
	offsets := make([]float64, 0, 2*p.RayCount)
	addAbsolute := func(absDeg float64) {
		off := geom.AngleDiffDeg(absDeg, sensor.AngleDeg)
		if fullCircle || math.Abs(off) <= halfFOV {
			offsets = append(offsets, off)
		}
	}

	for _, s := range segs {
		if s.IsDegenerate() {
			continue
		}
		for _, end := range [2]geom.Point{s.P1, s.P2} {
			if end == sensor.Pos {
				continue
			}
			a := sensor.Pos.AngleTo(end)
			addAbsolute(a - p.AngleEpsilonDeg)
			addAbsolute(a + p.AngleEpsilonDeg)
		}
	}
	for i := 0; i < p.RayCount; i++ {
		addAbsolute(float64(i) * 360 / float64(p.RayCount))
	}
	// The cone edges are re-added unconditionally so the polygon closes
	// exactly at the FOV boundary regardless of filtering.
	offsets = append(offsets, -halfFOV, halfFOV)

	sort.Float64s(offsets)
	offsets = dedupeSorted(offsets)

	// The ray must out-reach both the sensor range and the boundary
	// rectangle so a nearest hit always exists.
	diag := math.Hypot(bounds.Width, bounds.Height)
	rayLen := 2 * (sensor.MaxDistance + p.BoundaryMargin + diag)

	result := Result{
		SensorID:      sensor.ID,
		Origin:        sensor.Pos,
		FacingDeg:     sensor.AngleDeg,
		FOVDeg:        sensor.FOVDeg,
		MaxDistance:   sensor.MaxDistance,
		ClearDistance: sensor.ClearDistance,
		Vertices:      make([]Vertex, 0, len(offsets)),
	}

	for _, off := range offsets {
		absDeg := sensor.AngleDeg + off
		ray := geom.Segment{P1: sensor.Pos, P2: sensor.Pos.PointAt(absDeg, rayLen)}

		best := math.Inf(1)
		var bestPt geom.Point
		for _, s := range segs {
			if s.IsDegenerate() {
				continue
			}
			pt, _, ok := ray.Intersect(s, p.ParallelEps)
			if !ok {
				continue
			}
			if d := sensor.Pos.Dist(pt); d < best {
				best = d
				bestPt = pt
			}
		}
		if math.IsInf(best, 1) {
			// Unreachable while the boundary rectangle encloses the
			// sensor; degrade to a max-distance hit rather than drop
			// the ray.
			best = sensor.MaxDistance
			bestPt = sensor.Pos.PointAt(absDeg, best)
		}
		if best > sensor.MaxDistance {
			best = sensor.MaxDistance
			bestPt = sensor.Pos.PointAt(absDeg, best)
		}

		result.Vertices = append(result.Vertices, Vertex{
			Point:    bestPt,
			AngleDeg: geom.NormalizeDeg(absDeg),
			Distance: best,
		})
	}
	return result
}

// collectSegments flattens the obstacle set into occluding segments and adds
// the four edges of the scene boundary inflated by margin.
func collectSegments(obstacles []scene.Obstacle, bounds scene.Bounds, margin float64) []geom.Segment {
	segs := make([]geom.Segment, 0, 4+len(obstacles)*4)

	minX, minY := -margin, -margin
	maxX, maxY := bounds.Width+margin, bounds.Height+margin
	segs = append(segs,
		geom.Seg(minX, minY, maxX, minY),
		geom.Seg(maxX, minY, maxX, maxY),
		geom.Seg(maxX, maxY, minX, maxY),
		geom.Seg(minX, maxY, minX, minY),
	)

	for _, o := range obstacles {
		segs = append(segs, o.Segments()...)
	}
	return segs
}

// dedupeSorted collapses near-identical consecutive angles. Duplicate rays
// would only produce duplicate vertices, but collapsing them keeps vertex
// counts stable across inputs that differ only by float noise.
func dedupeSorted(sorted []float64) []float64 {
	if len(sorted) == 0 {
		return sorted
	}
	const mergeTol = 1e-9
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v-out[len(out)-1] > mergeTol {
			out = append(out, v)
		}
	}
	return out
}
