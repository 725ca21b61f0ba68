// Package monitor provides debug tooling around computed visibility results:
// range statistics, a PNG polygon plotter and an HTML chart server. Nothing
// here is consulted by the engine or the scheduler.
package monitor

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sightline-data/sightline/internal/visibility"
)

// RangeStats summarizes the per-vertex hit distances of one result.
type RangeStats struct {
	SensorID    string  `json:"sensor_id"`
	VertexCount int     `json:"vertex_count"`
	MinDistance float64 `json:"min_distance"`
	MaxDistance float64 `json:"max_distance"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	P95         float64 `json:"p95"`
	// CappedFraction is the share of rays that reached the sensor's max
	// distance unobstructed; ClearFraction the share terminating within
	// the clear sub-range.
	CappedFraction float64 `json:"capped_fraction"`
	ClearFraction  float64 `json:"clear_fraction"`
}

// Summarize computes range statistics for a result. Results with no
// vertices produce a zero-valued summary.
func Summarize(r *visibility.Result) RangeStats {
	s := RangeStats{SensorID: r.SensorID, VertexCount: len(r.Vertices)}
	if len(r.Vertices) == 0 {
		return s
	}

	const capTol = 1e-9
	dists := make([]float64, 0, len(r.Vertices))
	capped := 0
	clear := 0
	for _, v := range r.Vertices {
		dists = append(dists, v.Distance)
		if v.Distance >= r.MaxDistance-capTol {
			capped++
		}
		if v.Distance <= r.ClearDistance {
			clear++
		}
	}
	sort.Float64s(dists)

	n := float64(len(dists))
	s.MinDistance = dists[0]
	s.MaxDistance = dists[len(dists)-1]
	s.Mean = stat.Mean(dists, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, dists, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, dists, nil)
	s.CappedFraction = float64(capped) / n
	s.ClearFraction = float64(clear) / n
	return s
}
