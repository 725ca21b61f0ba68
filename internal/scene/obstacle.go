// Package scene holds the editor-facing data model: opaque obstacles, sensors
// and the scene container that owns them. The visibility engine only ever sees
// read-only snapshots taken from here.
package scene

import "github.com/sightline-data/sightline/internal/geom"

// ObstacleKind discriminates the obstacle variants.
type ObstacleKind string

const (
	KindFreehand ObstacleKind = "freehand"
	KindLine     ObstacleKind = "line"
	KindRect     ObstacleKind = "rect"
)

// Obstacle is a closed variant over {freehand path, line, rectangle}. Every
// variant is opaque: each of its edges blocks line of sight. The interface is
// sealed so the set of variants cannot grow outside this package.
type Obstacle interface {
	// Kind returns the variant tag.
	Kind() ObstacleKind
	// Segments returns the occluding edges of the obstacle in world
	// coordinates. Degenerate (zero length) segments may be included; the
	// engine tolerates them.
	Segments() []geom.Segment
	// Clone returns a deep copy for snapshots.
	Clone() Obstacle

	sealed()
}

// Freehand is a drawn path: one occluding segment per consecutive point pair.
type Freehand struct {
	Points []geom.Point `json:"points"`
}

func (f *Freehand) Kind() ObstacleKind { return KindFreehand }

func (f *Freehand) Segments() []geom.Segment {
	if len(f.Points) < 2 {
		return nil
	}
	segs := make([]geom.Segment, 0, len(f.Points)-1)
	for i := 1; i < len(f.Points); i++ {
		segs = append(segs, geom.Segment{P1: f.Points[i-1], P2: f.Points[i]})
	}
	return segs
}

func (f *Freehand) Clone() Obstacle {
	pts := make([]geom.Point, len(f.Points))
	copy(pts, f.Points)
	return &Freehand{Points: pts}
}

func (f *Freehand) sealed() {}

// Line is a single two-point occluding segment.
type Line struct {
	P1 geom.Point `json:"p1"`
	P2 geom.Point `json:"p2"`
}

func (l *Line) Kind() ObstacleKind { return KindLine }

func (l *Line) Segments() []geom.Segment {
	return []geom.Segment{{P1: l.P1, P2: l.P2}}
}

func (l *Line) Clone() Obstacle {
	c := *l
	return &c
}

func (l *Line) sealed() {}

// Rect is a rectangle stored as two opposite corners plus a rotation angle in
// degrees around its center. Its four rotated edges occlude.
type Rect struct {
	C1       geom.Point `json:"c1"`
	C2       geom.Point `json:"c2"`
	AngleDeg float64    `json:"angle_deg"`
}

func (r *Rect) Kind() ObstacleKind { return KindRect }

// Corners returns the rectangle's world-space corners after rotation, in edge
// order.
func (r *Rect) Corners() [4]geom.Point {
	return geom.RotatedRectCorners(r.C1, r.C2, r.AngleDeg)
}

func (r *Rect) Segments() []geom.Segment {
	c := r.Corners()
	return []geom.Segment{
		{P1: c[0], P2: c[1]},
		{P1: c[1], P2: c[2]},
		{P1: c[2], P2: c[3]},
		{P1: c[3], P2: c[0]},
	}
}

func (r *Rect) Clone() Obstacle {
	c := *r
	return &c
}

func (r *Rect) sealed() {}
