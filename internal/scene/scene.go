package scene

import (
	"sync"

	"github.com/sightline-data/sightline/internal/geom"
)

// Bounds is the rectangular drawing surface being edited. It becomes the
// default enclosing boundary for ray termination.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Snapshot is an immutable copy of the scene contents taken at one instant.
// The visibility engine reads snapshots only and never touches live editor
// state.
type Snapshot struct {
	Bounds    Bounds
	Sensors   []Sensor
	Obstacles []Obstacle
}

// Scene owns the obstacle and sensor collections on behalf of the editor.
// Every mutating method clamps sensor parameters and fires the change
// listener, which the wiring layer points at the scheduler's
// RequestRecalculation.
type Scene struct {
	mu        sync.Mutex
	bounds    Bounds
	sensors   []*Sensor
	obstacles []Obstacle
	onChange  func()
}

// New creates an empty scene with the given bounds.
func New(bounds Bounds) *Scene {
	return &Scene{bounds: bounds}
}

// SetOnChange registers the listener invoked after every mutation. Pass nil
// to detach.
func (sc *Scene) SetOnChange(fn func()) {
	sc.mu.Lock()
	sc.onChange = fn
	sc.mu.Unlock()
}

// notify must be called without the lock held.
func (sc *Scene) notify() {
	sc.mu.Lock()
	fn := sc.onChange
	sc.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetBounds resizes the drawing surface.
func (sc *Scene) SetBounds(b Bounds) {
	sc.mu.Lock()
	sc.bounds = b
	sc.mu.Unlock()
	sc.notify()
}

// AddObstacle appends an obstacle to the scene.
func (sc *Scene) AddObstacle(o Obstacle) {
	sc.mu.Lock()
	sc.obstacles = append(sc.obstacles, o)
	sc.mu.Unlock()
	sc.notify()
}

// RemoveObstacle removes an obstacle by identity. Returns false when the
// obstacle is not in the scene.
func (sc *Scene) RemoveObstacle(o Obstacle) bool {
	sc.mu.Lock()
	removed := false
	for i, cur := range sc.obstacles {
		if cur == o {
			sc.obstacles = append(sc.obstacles[:i], sc.obstacles[i+1:]...)
			removed = true
			break
		}
	}
	sc.mu.Unlock()
	if removed {
		sc.notify()
	}
	return removed
}

// UpdateObstacle applies an in-place edit (move, resize, rotate) to an
// obstacle already in the scene, then fires the change listener. Returns
// false when the obstacle is not in the scene; the edit is not applied.
func (sc *Scene) UpdateObstacle(o Obstacle, mutate func(Obstacle)) bool {
	sc.mu.Lock()
	found := false
	for _, cur := range sc.obstacles {
		if cur == o {
			found = true
			break
		}
	}
	if found {
		mutate(o)
	}
	sc.mu.Unlock()
	if found {
		sc.notify()
	}
	return found
}

// AddSensor places a sensor in the scene, clamping its parameters first.
func (sc *Scene) AddSensor(s *Sensor) {
	s.Clamp()
	sc.mu.Lock()
	sc.sensors = append(sc.sensors, s)
	sc.mu.Unlock()
	sc.notify()
}

// RemoveSensor deletes the sensor with the given id.
func (sc *Scene) RemoveSensor(id string) bool {
	sc.mu.Lock()
	removed := false
	for i, s := range sc.sensors {
		if s.ID == id {
			sc.sensors = append(sc.sensors[:i], sc.sensors[i+1:]...)
			removed = true
			break
		}
	}
	sc.mu.Unlock()
	if removed {
		sc.notify()
	}
	return removed
}

// Sensor returns a copy of the sensor with the given id.
func (sc *Scene) Sensor(id string) (Sensor, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, s := range sc.sensors {
		if s.ID == id {
			return *s, true
		}
	}
	return Sensor{}, false
}

// UpdateSensor applies an edit to the sensor with the given id, clamps the
// result and fires the change listener.
func (sc *Scene) UpdateSensor(id string, mutate func(*Sensor)) bool {
	sc.mu.Lock()
	var target *Sensor
	for _, s := range sc.sensors {
		if s.ID == id {
			target = s
			break
		}
	}
	if target != nil {
		mutate(target)
		target.ID = id // identity is not editable
		target.Clamp()
	}
	sc.mu.Unlock()
	if target == nil {
		return false
	}
	sc.notify()
	return true
}

// DuplicateSensor clones the sensor with the given id under a fresh id,
// offset slightly so the copy is visible next to the original.
func (sc *Scene) DuplicateSensor(id string) (*Sensor, bool) {
	sc.mu.Lock()
	var dup *Sensor
	for _, s := range sc.sensors {
		if s.ID == id {
			dup = s.Clone()
			dup.ID = ""
			break
		}
	}
	if dup != nil {
		fresh := NewSensor(dup.Pos.Add(geom.Point{X: 20, Y: 20}))
		fresh.AngleDeg = dup.AngleDeg
		fresh.FOVDeg = dup.FOVDeg
		fresh.MaxDistance = dup.MaxDistance
		fresh.ClearDistance = dup.ClearDistance
		fresh.Clamp()
		sc.sensors = append(sc.sensors, fresh)
		dup = fresh
	}
	sc.mu.Unlock()
	if dup == nil {
		return nil, false
	}
	sc.notify()
	return dup, true
}

// Snapshot returns a deep copy of the scene contents. Sensors are returned
// by value and obstacles are cloned, so the engine can read the snapshot
// while the editor keeps mutating the live scene.
func (sc *Scene) Snapshot() Snapshot {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	snap := Snapshot{
		Bounds:    sc.bounds,
		Sensors:   make([]Sensor, 0, len(sc.sensors)),
		Obstacles: make([]Obstacle, 0, len(sc.obstacles)),
	}
	for _, s := range sc.sensors {
		snap.Sensors = append(snap.Sensors, *s)
	}
	for _, o := range sc.obstacles {
		snap.Obstacles = append(snap.Obstacles, o.Clone())
	}
	return snap
}
