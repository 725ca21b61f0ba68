package geom

// Segment is an undirected pair of endpoints. Obstacle edges and the scene
// boundary are reduced to segments before ray casting.
type Segment struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Seg is shorthand for constructing a segment from coordinates.
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{Point{x1, y1}, Point{x2, y2}}
}

// Length returns the segment length.
func (s Segment) Length() float64 { return s.P1.Dist(s.P2) }

// IsDegenerate reports whether both endpoints coincide. Degenerate segments
// occur when a freehand path repeats a point; they never produce an
// intersection and are tolerated everywhere.
func (s Segment) IsDegenerate() bool { return s.P1 == s.P2 }

// Intersect computes the intersection of two segments using the standard
// two-line parametric form. It solves for parameters t along s and u along
// o; the intersection is valid only when both lie in [0, 1].
//
// parallelEps is the fixed denominator threshold below which the segments
// are treated as parallel and skipped. It is an absolute constant, not
// scaled by segment length, so behavior stays predictable across scenes.
func (s Segment) Intersect(o Segment, parallelEps float64) (Point, float64, bool) {
	rx := s.P2.X - s.P1.X
	ry := s.P2.Y - s.P1.Y
	qx := o.P2.X - o.P1.X
	qy := o.P2.Y - o.P1.Y

	denom := rx*qy - ry*qx
	if denom < parallelEps && denom > -parallelEps {
		return Point{}, 0, false
	}

	dx := o.P1.X - s.P1.X
	dy := o.P1.Y - s.P1.Y
	t := (dx*qy - dy*qx) / denom
	u := (dx*ry - dy*rx) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, 0, false
	}
	return Point{s.P1.X + t*rx, s.P1.Y + t*ry}, t, true
}

// RotatedRectCorners returns the four world-space corners of the rectangle
// whose axis-aligned opposite corners are c1 and c2, rotated by angleDeg
// around its center. Corners are returned in edge order so consecutive pairs
// (wrapping) form the rectangle's sides.
func RotatedRectCorners(c1, c2 Point, angleDeg float64) [4]Point {
	center := Point{(c1.X + c2.X) / 2, (c1.Y + c2.Y) / 2}
	corners := [4]Point{
		{c1.X, c1.Y},
		{c2.X, c1.Y},
		{c2.X, c2.Y},
		{c1.X, c2.Y},
	}
	if angleDeg != 0 {
		for i := range corners {
			corners[i] = corners[i].RotateAround(center, angleDeg)
		}
	}
	return corners
}
