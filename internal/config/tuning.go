// Package config loads the JSON tuning file controlling the visibility
// engine and the recomputation scheduler.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sightline-data/sightline/internal/visibility"
)

// TuningConfig is the root tuning schema. Fields are pointers so a partial
// JSON file only overrides what it names; everything omitted keeps its
// default via the Get* accessors.
type TuningConfig struct {
	// Engine params
	RayCount        *int     `json:"ray_count,omitempty"`
	AngleEpsilonDeg *float64 `json:"angle_epsilon_deg,omitempty"`
	ParallelEps     *float64 `json:"parallel_eps,omitempty"`
	BoundaryMargin  *float64 `json:"boundary_margin,omitempty"`

	// Scheduler params
	DebounceDelay *string `json:"debounce_delay,omitempty"` // duration string like "400ms"
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Partial configs
// are safe: omitted fields fall back to defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.RayCount != nil && *c.RayCount < 1 {
		return fmt.Errorf("ray_count must be at least 1, got %d", *c.RayCount)
	}
	if c.AngleEpsilonDeg != nil && *c.AngleEpsilonDeg <= 0 {
		return fmt.Errorf("angle_epsilon_deg must be positive, got %f", *c.AngleEpsilonDeg)
	}
	if c.ParallelEps != nil && *c.ParallelEps <= 0 {
		return fmt.Errorf("parallel_eps must be positive, got %g", *c.ParallelEps)
	}
	if c.BoundaryMargin != nil && *c.BoundaryMargin <= 0 {
		return fmt.Errorf("boundary_margin must be positive, got %f", *c.BoundaryMargin)
	}
	if c.DebounceDelay != nil && *c.DebounceDelay != "" {
		if _, err := time.ParseDuration(*c.DebounceDelay); err != nil {
			return fmt.Errorf("invalid debounce_delay '%s': %w", *c.DebounceDelay, err)
		}
	}
	return nil
}

// GetDebounceDelay parses and returns the debounce window.
func (c *TuningConfig) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == nil || *c.DebounceDelay == "" {
		return visibility.DefaultDebounce
	}
	d, err := time.ParseDuration(*c.DebounceDelay)
	if err != nil {
		return visibility.DefaultDebounce
	}
	return d
}

// GetRayCount returns the ray_count value or the default.
func (c *TuningConfig) GetRayCount() int {
	if c.RayCount == nil {
		return visibility.DefaultRayCount
	}
	return *c.RayCount
}

// GetAngleEpsilonDeg returns the angle_epsilon_deg value or the default.
func (c *TuningConfig) GetAngleEpsilonDeg() float64 {
	if c.AngleEpsilonDeg == nil {
		return visibility.DefaultAngleEpsilonDeg
	}
	return *c.AngleEpsilonDeg
}

// GetParallelEps returns the parallel_eps value or the default.
func (c *TuningConfig) GetParallelEps() float64 {
	if c.ParallelEps == nil {
		return visibility.DefaultParallelEps
	}
	return *c.ParallelEps
}

// GetBoundaryMargin returns the boundary_margin value or the default.
func (c *TuningConfig) GetBoundaryMargin() float64 {
	if c.BoundaryMargin == nil {
		return visibility.DefaultBoundaryMargin
	}
	return *c.BoundaryMargin
}

// EngineParams assembles the engine tunables from the config.
func (c *TuningConfig) EngineParams() visibility.Params {
	return visibility.Params{
		RayCount:        c.GetRayCount(),
		AngleEpsilonDeg: c.GetAngleEpsilonDeg(),
		ParallelEps:     c.GetParallelEps(),
		BoundaryMargin:  c.GetBoundaryMargin(),
	}
}
