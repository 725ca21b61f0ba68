package visibility

import "github.com/sightline-data/sightline/internal/geom"

// Vertex is one hit point of the visibility fan: where a cast ray terminated,
// its absolute angle from the sensor and the distance along the ray. The
// renderer interpolates its fog gradient between the sensor's clear distance
// and max distance using Distance.
type Vertex struct {
	Point    geom.Point `json:"point"`
	AngleDeg float64    `json:"angle_deg"`
	Distance float64    `json:"distance"`
}

// Result is the visibility polygon for one sensor. Vertices are ordered by
// ascending angular offset from the sensor's facing direction, so together
// with Origin they form a star-shaped fan. Every vertex lies within the
// sensor's field of view and at or before its max distance.
//
// Results are derived data: they hold copies of computed geometry and no
// references back into the scene.
type Result struct {
	SensorID      string     `json:"sensor_id"`
	Origin        geom.Point `json:"origin"`
	FacingDeg     float64    `json:"facing_deg"`
	FOVDeg        float64    `json:"fov_deg"`
	MaxDistance   float64    `json:"max_distance"`
	ClearDistance float64    `json:"clear_distance"`
	Vertices      []Vertex   `json:"vertices"`
}

// Polygon returns the closed fan outline: the sensor position, every hit
// point in angular order, then the sensor position again.
func (r *Result) Polygon() []geom.Point {
	pts := make([]geom.Point, 0, len(r.Vertices)+2)
	pts = append(pts, r.Origin)
	for _, v := range r.Vertices {
		pts = append(pts, v.Point)
	}
	pts = append(pts, r.Origin)
	return pts
}
