package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sightline-data/sightline/internal/geom"
)

// File is the on-disk scene snapshot format consumed by the analysis CLI.
// Obstacles are stored in a flat kind-tagged envelope so the variant can be
// reconstructed without field-presence guessing.
type File struct {
	Bounds    Bounds             `json:"bounds"`
	Sensors   []Sensor           `json:"sensors"`
	Obstacles []ObstacleEnvelope `json:"obstacles"`
}

// ObstacleEnvelope is the serialized form of an Obstacle variant. Only the
// fields for the tagged kind are set.
type ObstacleEnvelope struct {
	Kind     ObstacleKind `json:"kind"`
	Points   []geom.Point `json:"points,omitempty"`
	P1       *geom.Point  `json:"p1,omitempty"`
	P2       *geom.Point  `json:"p2,omitempty"`
	C1       *geom.Point  `json:"c1,omitempty"`
	C2       *geom.Point  `json:"c2,omitempty"`
	AngleDeg float64      `json:"angle_deg,omitempty"`
}

// Envelope converts an obstacle to its serialized form.
func Envelope(o Obstacle) ObstacleEnvelope {
	switch v := o.(type) {
	case *Freehand:
		return ObstacleEnvelope{Kind: KindFreehand, Points: v.Points}
	case *Line:
		p1, p2 := v.P1, v.P2
		return ObstacleEnvelope{Kind: KindLine, P1: &p1, P2: &p2}
	case *Rect:
		c1, c2 := v.C1, v.C2
		return ObstacleEnvelope{Kind: KindRect, C1: &c1, C2: &c2, AngleDeg: v.AngleDeg}
	}
	return ObstacleEnvelope{}
}

// Obstacle reconstructs the variant from its envelope.
func (e ObstacleEnvelope) Obstacle() (Obstacle, error) {
	switch e.Kind {
	case KindFreehand:
		return &Freehand{Points: e.Points}, nil
	case KindLine:
		if e.P1 == nil || e.P2 == nil {
			return nil, fmt.Errorf("line obstacle missing endpoints")
		}
		return &Line{P1: *e.P1, P2: *e.P2}, nil
	case KindRect:
		if e.C1 == nil || e.C2 == nil {
			return nil, fmt.Errorf("rect obstacle missing corners")
		}
		return &Rect{C1: *e.C1, C2: *e.C2, AngleDeg: e.AngleDeg}, nil
	}
	return nil, fmt.Errorf("unknown obstacle kind %q", e.Kind)
}

// EncodeSnapshot serializes a snapshot to the scene file format.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	f := File{
		Bounds:    snap.Bounds,
		Sensors:   snap.Sensors,
		Obstacles: make([]ObstacleEnvelope, 0, len(snap.Obstacles)),
	}
	for _, o := range snap.Obstacles {
		f.Obstacles = append(f.Obstacles, Envelope(o))
	}
	return json.MarshalIndent(f, "", "  ")
}

// DecodeSnapshot parses the scene file format.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return Snapshot{}, fmt.Errorf("parse scene file: %w", err)
	}
	snap := Snapshot{
		Bounds:    f.Bounds,
		Sensors:   f.Sensors,
		Obstacles: make([]Obstacle, 0, len(f.Obstacles)),
	}
	for i, env := range f.Obstacles {
		o, err := env.Obstacle()
		if err != nil {
			return Snapshot{}, fmt.Errorf("obstacle %d: %w", i, err)
		}
		snap.Obstacles = append(snap.Obstacles, o)
	}
	for i := range snap.Sensors {
		snap.Sensors[i].Clamp()
	}
	return snap, nil
}

// LoadFile reads a scene file from disk and builds a live Scene from it.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	sc := New(snap.Bounds)
	for _, o := range snap.Obstacles {
		sc.obstacles = append(sc.obstacles, o)
	}
	for i := range snap.Sensors {
		s := snap.Sensors[i]
		if s.ID == "" {
			s = *NewSensor(s.Pos)
			s.AngleDeg = snap.Sensors[i].AngleDeg
			s.FOVDeg = snap.Sensors[i].FOVDeg
			s.MaxDistance = snap.Sensors[i].MaxDistance
			s.ClearDistance = snap.Sensors[i].ClearDistance
			s.Clamp()
		}
		sc.sensors = append(sc.sensors, &s)
	}
	return sc, nil
}
