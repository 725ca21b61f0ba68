// Package visibility computes the region of a 2D scene a sensor can observe
// and keeps those results current while the scene is edited. The engine
// (Compute) is a pure function over a scene snapshot; the Scheduler coalesces
// edit bursts into debounced recomputations and owns the per-sensor result
// cache.
package visibility

// Defaults for the engine tunables and the scheduler debounce window.
const (
	// DefaultRayCount is the number of uniformly spaced fill rays cast
	// around the full circle, in addition to the obstacle feature angles.
	DefaultRayCount = 360

	// DefaultAngleEpsilonDeg is the graze offset applied on both sides of
	// every segment endpoint angle so rays resolve the silhouette
	// discontinuity at a blocking edge. The value is a tuning constant with
	// no deeper derivation; it only needs to be small against the uniform
	// ray spacing.
	DefaultAngleEpsilonDeg = 0.01

	// DefaultParallelEps is the absolute denominator threshold below which
	// a ray and a segment are treated as parallel. Fixed, not scaled by
	// segment length.
	DefaultParallelEps = 1e-9

	// DefaultBoundaryMargin inflates the scene bounds so the enclosing
	// boundary rectangle terminates every ray regardless of sensor range.
	DefaultBoundaryMargin = 10000.0
)

// Params are the engine tunables. The zero value of any field selects its
// default, so Params{} behaves like DefaultParams().
type Params struct {
	RayCount        int     `json:"ray_count"`
	AngleEpsilonDeg float64 `json:"angle_epsilon_deg"`
	ParallelEps     float64 `json:"parallel_eps"`
	BoundaryMargin  float64 `json:"boundary_margin"`
}

// DefaultParams returns the engine defaults.
func DefaultParams() Params {
	return Params{
		RayCount:        DefaultRayCount,
		AngleEpsilonDeg: DefaultAngleEpsilonDeg,
		ParallelEps:     DefaultParallelEps,
		BoundaryMargin:  DefaultBoundaryMargin,
	}
}

func (p Params) withDefaults() Params {
	if p.RayCount <= 0 {
		p.RayCount = DefaultRayCount
	}
	if p.AngleEpsilonDeg <= 0 {
		p.AngleEpsilonDeg = DefaultAngleEpsilonDeg
	}
	if p.ParallelEps <= 0 {
		p.ParallelEps = DefaultParallelEps
	}
	if p.BoundaryMargin <= 0 {
		p.BoundaryMargin = DefaultBoundaryMargin
	}
	return p
}
