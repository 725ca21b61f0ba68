package scene

import (
	"github.com/google/uuid"
	"github.com/sightline-data/sightline/internal/geom"
)

// Default parameters for newly placed sensors.
const (
	DefaultFOVDeg        = 60.0
	DefaultMaxDistance   = 300.0
	DefaultClearDistance = 150.0
)

// Sensor is a point sensor with a bounded sensing cone. The facing angle is
// in degrees (0° = +X, 90° = +Y, clockwise on screen) and the cone spans
// (AngleDeg - FOVDeg/2, AngleDeg + FOVDeg/2). ClearDistance marks the
// high-confidence sub-range within MaxDistance; the renderer uses it to fade
// between clear and degraded coverage.
//
// Identity is the ID field, stable across position and parameter edits.
type Sensor struct {
	ID            string     `json:"id"`
	Pos           geom.Point `json:"pos"`
	AngleDeg      float64    `json:"angle_deg"`
	FOVDeg        float64    `json:"fov_deg"`
	MaxDistance   float64    `json:"max_distance"`
	ClearDistance float64    `json:"clear_distance"`
}

// NewSensor creates a sensor at the given position with a fresh id and
// default cone parameters.
func NewSensor(pos geom.Point) *Sensor {
	return &Sensor{
		ID:            uuid.NewString(),
		Pos:           pos,
		FOVDeg:        DefaultFOVDeg,
		MaxDistance:   DefaultMaxDistance,
		ClearDistance: DefaultClearDistance,
	}
}

// Clamp forces the sensor's parameters into the ranges the engine assumes:
// fov in (0, 360], max distance > 0, 0 < clear distance <= max distance.
// Clamping happens at the edit boundary so the engine never validates.
func (s *Sensor) Clamp() {
	if s.FOVDeg <= 0 {
		s.FOVDeg = 1
	}
	if s.FOVDeg > 360 {
		s.FOVDeg = 360
	}
	if s.MaxDistance <= 0 {
		s.MaxDistance = 1
	}
	if s.ClearDistance <= 0 {
		s.ClearDistance = 1
	}
	if s.ClearDistance > s.MaxDistance {
		s.ClearDistance = s.MaxDistance
	}
	s.AngleDeg = geom.NormalizeDeg(s.AngleDeg)
}

// Clone returns a copy of the sensor.
func (s *Sensor) Clone() *Sensor {
	c := *s
	return &c
}
