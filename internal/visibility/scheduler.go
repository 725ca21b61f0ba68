package visibility

import (
	"log"
	"sync"
	"time"

	"github.com/sightline-data/sightline/internal/scene"
	"github.com/sightline-data/sightline/internal/timeutil"
)

// DefaultDebounce is the quiet period after the last edit before an
// automatic recomputation fires.
const DefaultDebounce = 400 * time.Millisecond

// SceneSource supplies the scene snapshot a recomputation runs against.
// *scene.Scene implements it.
type SceneSource interface {
	Snapshot() scene.Snapshot
}

// Scheduler owns the per-sensor result cache and keeps it consistent with a
// continuously edited scene. Bursts of RequestRecalculation calls collapse
// into a single recomputation fired one debounce window after the last call:
// each request cancels and replaces the previous pending timer, so at most
// one timer is ever armed and there is no queue of pending computations.
//
// The cache is exclusively owned here. Consumers read results through Result
// and must treat them as immutable.
type Scheduler struct {
	source SceneSource
	params Params
	clock  timeutil.Clock
	delay  time.Duration
	logger *log.Logger

	mu      sync.Mutex
	enabled bool
	pending timeutil.Timer
	seq     uint64
	results map[string]*Result
}

// SchedulerConfig configures a Scheduler. Zero fields take defaults: real
// clock, DefaultDebounce delay, DefaultParams, log.Default().
type SchedulerConfig struct {
	// Source supplies scene snapshots. Required.
	Source SceneSource
	// Params are the engine tunables for every computation.
	Params Params
	// Delay is the debounce window.
	Delay time.Duration
	// Clock is swapped for a MockClock in tests.
	Clock timeutil.Clock
	// Logger is optional.
	Logger *log.Logger
}

// NewScheduler creates an enabled scheduler with an empty cache.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		source:  cfg.Source,
		params:  cfg.Params,
		clock:   clock,
		delay:   delay,
		logger:  logger,
		enabled: true,
		results: make(map[string]*Result),
	}
}

// RequestRecalculation restarts the shared debounce timer. N calls within
// the window produce exactly one recomputation, fired one delay after the
// last call. No-op while disabled.
func (s *Scheduler) RequestRecalculation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.cancelPendingLocked()
	seq := s.seq
	s.pending = s.clock.AfterFunc(s.delay, func() { s.debounceFired(seq) })
}

func (s *Scheduler) debounceFired(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A timer that lost the race with its own cancellation arrives here
	// with a stale sequence; a newer request owns the window now.
	if seq != s.seq {
		return
	}
	s.pending = nil
	if !s.enabled {
		return
	}
	s.recalculateLocked()
}

// RecalculateAll synchronously recomputes every sensor against the current
// scene snapshot, replacing the whole cache before returning. Any pending
// debounced recomputation is canceled since this call subsumes it.
func (s *Scheduler) RecalculateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
	s.recalculateLocked()
}

func (s *Scheduler) recalculateLocked() {
	start := s.clock.Now()

	// Invalidate first: a consumer blocked on the mutex during the
	// computation must never read results for a stale scene.
	s.results = make(map[string]*Result)

	snap := s.source.Snapshot()
	for _, sensor := range snap.Sensors {
		r := Compute(sensor, snap.Obstacles, snap.Bounds, s.params)
		s.results[sensor.ID] = &r
	}
	s.logger.Printf("visibility: recomputed %d sensors against %d obstacles in %v",
		len(snap.Sensors), len(snap.Obstacles), s.clock.Now().Sub(start))
}

func (s *Scheduler) cancelPendingLocked() {
	s.seq++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Result returns the cached visibility result for a sensor, or false when
// none exists (unknown sensor, disabled scheduler, or no completed pass
// yet). The returned result must not be modified.
func (s *Scheduler) Result(sensorID string) (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[sensorID]
	return r, ok
}

// Results returns the current cache as a copy of the map. The results
// themselves are shared and must not be modified.
func (s *Scheduler) Results() map[string]*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Result, len(s.results))
	for id, r := range s.results {
		out[id] = r
	}
	return out
}

// SetEnabled toggles automatic recomputation. Disabling cancels any pending
// timer and clears the cache; enabling schedules a debounced recomputation.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	if s.enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled
	if !enabled {
		s.cancelPendingLocked()
		s.results = make(map[string]*Result)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.RequestRecalculation()
}

// Enabled reports whether automatic recomputation is active. Renderers skip
// visibility overlays while disabled.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}
