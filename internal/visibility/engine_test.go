package visibility

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/sightline-data/sightline/internal/geom"
	"github.com/sightline-data/sightline/internal/scene"
)

func testSensor() scene.Sensor {
	return scene.Sensor{
		ID:            "cam-1",
		Pos:           geom.Point{X: 100, Y: 100},
		AngleDeg:      0,
		FOVDeg:        90,
		MaxDistance:   300,
		ClearDistance: 150,
	}
}

func testBounds() scene.Bounds {
	return scene.Bounds{Width: 800, Height: 600}
}

// vertexNear returns the vertex whose angle is closest to wantDeg.
func vertexNear(t *testing.T, r Result, wantDeg float64) Vertex {
	t.Helper()
	if len(r.Vertices) == 0 {
		t.Fatal("result has no vertices")
	}
	best := r.Vertices[0]
	bestDiff := math.Abs(geom.AngleDiffDeg(best.AngleDeg, wantDeg))
	for _, v := range r.Vertices[1:] {
		if d := math.Abs(geom.AngleDiffDeg(v.AngleDeg, wantDeg)); d < bestDiff {
			best = v
			bestDiff = d
		}
	}
	return best
}

func TestNoObstacleSector(t *testing.T) {
	s := testSensor()
	r := Compute(s, nil, testBounds(), Params{})

	if len(r.Vertices) == 0 {
		t.Fatal("empty result")
	}
	// With nothing to hit inside range, every ray caps at max distance.
	for _, v := range r.Vertices {
		if !scalar.EqualWithinAbs(v.Distance, 300, 1e-6) {
			t.Fatalf("vertex at %v° has distance %v, want 300", v.AngleDeg, v.Distance)
		}
		if d := s.Pos.Dist(v.Point); !scalar.EqualWithinAbs(d, 300, 1e-6) {
			t.Fatalf("vertex point at distance %v from sensor, want on the 300 arc", d)
		}
	}
	// The fan spans exactly the cone edges.
	first := r.Vertices[0]
	last := r.Vertices[len(r.Vertices)-1]
	if !scalar.EqualWithinAbs(first.AngleDeg, -45, 1e-9) {
		t.Errorf("first vertex at %v°, want -45", first.AngleDeg)
	}
	if !scalar.EqualWithinAbs(last.AngleDeg, 45, 1e-9) {
		t.Errorf("last vertex at %v°, want 45", last.AngleDeg)
	}
}

func TestOcclusionShortensRay(t *testing.T) {
	s := testSensor()
	wall := &scene.Line{P1: geom.Point{X: 150, Y: 50}, P2: geom.Point{X: 150, Y: 150}}
	r := Compute(s, []scene.Obstacle{wall}, testBounds(), Params{})

	v := vertexNear(t, r, 0)
	if !scalar.EqualWithinAbs(v.Distance, 50, 1e-6) {
		t.Errorf("ray at 0° reports distance %v, want 50", v.Distance)
	}
	if !scalar.EqualWithinAbs(v.Point.X, 150, 1e-6) || !scalar.EqualWithinAbs(v.Point.Y, 100, 1e-6) {
		t.Errorf("ray at 0° hits %v, want (150, 100)", v.Point)
	}
}

func TestObstacleBeyondRangeIsCapped(t *testing.T) {
	s := testSensor()
	wall := &scene.Line{P1: geom.Point{X: 500, Y: -500}, P2: geom.Point{X: 500, Y: 500}}
	r := Compute(s, []scene.Obstacle{wall}, testBounds(), Params{})

	v := vertexNear(t, r, 0)
	if !scalar.EqualWithinAbs(v.Distance, 300, 1e-6) {
		t.Errorf("obstacle beyond max distance influenced the ray: distance %v, want 300", v.Distance)
	}
	if !scalar.EqualWithinAbs(v.Point.X, 400, 1e-6) {
		t.Errorf("capped hit at x=%v, want 400", v.Point.X)
	}
}

func TestFOVContainment(t *testing.T) {
	s := testSensor()
	s.AngleDeg = 160 // cone crosses the ±180° seam
	obstacles := []scene.Obstacle{
		&scene.Line{P1: geom.Point{X: 0, Y: 80}, P2: geom.Point{X: 0, Y: 120}},
		&scene.Rect{C1: geom.Point{X: 20, Y: 90}, C2: geom.Point{X: 60, Y: 140}, AngleDeg: 30},
		&scene.Freehand{Points: []geom.Point{{X: 40, Y: 200}, {X: 80, Y: 180}, {X: 90, Y: 160}}},
	}
	r := Compute(s, obstacles, testBounds(), Params{})

	const eps = 1e-6
	for _, v := range r.Vertices {
		off := geom.AngleDiffDeg(v.AngleDeg, s.AngleDeg)
		if math.Abs(off) > s.FOVDeg/2+eps {
			t.Errorf("vertex at %v° is %v° off the facing direction, outside ±%v",
				v.AngleDeg, off, s.FOVDeg/2)
		}
		if v.Distance > s.MaxDistance+eps {
			t.Errorf("vertex distance %v exceeds max distance", v.Distance)
		}
	}
	// Offsets must be sorted ascending: the fan is star-shaped around the
	// sensor with no angular backtracking.
	for i := 1; i < len(r.Vertices); i++ {
		prev := geom.AngleDiffDeg(r.Vertices[i-1].AngleDeg, s.AngleDeg)
		cur := geom.AngleDiffDeg(r.Vertices[i].AngleDeg, s.AngleDeg)
		if cur < prev {
			t.Fatalf("vertices not in angular order at index %d: %v after %v", i, cur, prev)
		}
	}
}

func TestDeterminism(t *testing.T) {
	s := testSensor()
	obstacles := []scene.Obstacle{
		&scene.Line{P1: geom.Point{X: 150, Y: 50}, P2: geom.Point{X: 150, Y: 150}},
		&scene.Rect{C1: geom.Point{X: 200, Y: 60}, C2: geom.Point{X: 260, Y: 160}, AngleDeg: 17},
	}
	a := Compute(s, obstacles, testBounds(), Params{})
	b := Compute(s, obstacles, testBounds(), Params{})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("identical input produced different results (-first +second):\n%s", diff)
	}
}

func TestRotationChangesOcclusion(t *testing.T) {
	s := testSensor()
	rect := &scene.Rect{C1: geom.Point{X: 140, Y: 95}, C2: geom.Point{X: 160, Y: 105}}

	before := Compute(s, []scene.Obstacle{rect}, testBounds(), Params{})
	if v := vertexNear(t, before, 0); !scalar.EqualWithinAbs(v.Distance, 40, 1e-6) {
		t.Fatalf("unrotated rect: ray at 0° distance %v, want 40", v.Distance)
	}

	// Rotating 90° around the center (150,100) swaps the half-extents, so
	// the near face moves from x=140 to x=145.
	rect.AngleDeg = 90
	after := Compute(s, []scene.Obstacle{rect}, testBounds(), Params{})
	if v := vertexNear(t, after, 0); !scalar.EqualWithinAbs(v.Distance, 45, 1e-6) {
		t.Errorf("rotated rect: ray at 0° distance %v, want 45", v.Distance)
	}
}

func TestSilhouetteDiscontinuity(t *testing.T) {
	s := testSensor()
	// Wall starts exactly on the 0° ray and extends clockwise. Grazing rays
	// on either side of its endpoint must land on opposite sides of the
	// discontinuity.
	wall := &scene.Line{P1: geom.Point{X: 150, Y: 100}, P2: geom.Point{X: 150, Y: 150}}
	r := Compute(s, []scene.Obstacle{wall}, testBounds(), Params{})

	p := DefaultParams()
	past := vertexNear(t, r, -p.AngleEpsilonDeg)
	blocked := vertexNear(t, r, p.AngleEpsilonDeg)

	if !scalar.EqualWithinAbs(past.Distance, 300, 1e-6) {
		t.Errorf("ray grazing past the endpoint stopped at %v, want 300", past.Distance)
	}
	if !scalar.EqualWithinAbs(blocked.Distance, 50, 1e-3) {
		t.Errorf("ray grazing onto the wall reports %v, want ~50", blocked.Distance)
	}
}

func TestFullCircleFOV(t *testing.T) {
	s := testSensor()
	s.FOVDeg = 360
	r := Compute(s, nil, testBounds(), Params{})

	if len(r.Vertices) < DefaultRayCount {
		t.Fatalf("360° fan has %d vertices, want at least %d", len(r.Vertices), DefaultRayCount)
	}
	minOff, maxOff := math.Inf(1), math.Inf(-1)
	for _, v := range r.Vertices {
		off := geom.AngleDiffDeg(v.AngleDeg, s.AngleDeg)
		minOff = math.Min(minOff, off)
		maxOff = math.Max(maxOff, off)
		if !scalar.EqualWithinAbs(v.Distance, 300, 1e-6) {
			t.Fatalf("vertex at %v° has distance %v, want 300", v.AngleDeg, v.Distance)
		}
	}
	if maxOff-minOff < 359 {
		t.Errorf("fan covers %v° to %v°, want the full circle", minOff, maxOff)
	}
}

func TestDegenerateSegmentsTolerated(t *testing.T) {
	s := testSensor()
	obstacles := []scene.Obstacle{
		&scene.Freehand{Points: []geom.Point{{X: 150, Y: 90}, {X: 150, Y: 90}, {X: 150, Y: 110}}},
	}
	r := Compute(s, obstacles, testBounds(), Params{})
	if v := vertexNear(t, r, 0); !scalar.EqualWithinAbs(v.Distance, 50, 1e-6) {
		t.Errorf("duplicate consecutive points broke the sweep: distance %v, want 50", v.Distance)
	}
}

func TestPolygonClosesAtSensor(t *testing.T) {
	s := testSensor()
	r := Compute(s, nil, testBounds(), Params{})
	poly := r.Polygon()
	if poly[0] != s.Pos || poly[len(poly)-1] != s.Pos {
		t.Errorf("polygon must start and end at the sensor position")
	}
	if len(poly) != len(r.Vertices)+2 {
		t.Errorf("polygon has %d points for %d vertices", len(poly), len(r.Vertices))
	}
}
