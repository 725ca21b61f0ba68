// Package geom provides the 2D primitives used by the visibility engine:
// points, segments, angle arithmetic and ray/segment intersection.
//
// Coordinates are screen-space: the Y axis points down, so angles measured
// with math.Atan2 on raw coordinates increase clockwise on screen. 0° points
// along +X and 90° along +Y, matching the sensor facing convention.
package geom

import "math"

// Point is a position in the plane. Value type, no identity.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// AngleTo returns the angle in degrees of the vector from p to q,
// normalized to (-180, 180].
func (p Point) AngleTo(q Point) float64 {
	return NormalizeDeg(math.Atan2(q.Y-p.Y, q.X-p.X) * 180 / math.Pi)
}

// PointAt returns the point at the given distance from p along the given
// angle in degrees.
func (p Point) PointAt(angleDeg, dist float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{p.X + dist*math.Cos(rad), p.Y + dist*math.Sin(rad)}
}

// RotateAround returns p rotated by angleDeg degrees around center.
// Rotation is clockwise on screen (consistent with the angle convention).
func (p Point) RotateAround(center Point, angleDeg float64) Point {
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}
