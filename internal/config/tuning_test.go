package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sightline-data/sightline/internal/visibility"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetRayCount(); got != visibility.DefaultRayCount {
		t.Errorf("GetRayCount = %d, want %d", got, visibility.DefaultRayCount)
	}
	if got := cfg.GetDebounceDelay(); got != visibility.DefaultDebounce {
		t.Errorf("GetDebounceDelay = %v, want %v", got, visibility.DefaultDebounce)
	}
	p := cfg.EngineParams()
	if p.AngleEpsilonDeg != visibility.DefaultAngleEpsilonDeg {
		t.Errorf("AngleEpsilonDeg = %v, want default", p.AngleEpsilonDeg)
	}
	if p.BoundaryMargin != visibility.DefaultBoundaryMargin {
		t.Errorf("BoundaryMargin = %v, want default", p.BoundaryMargin)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"ray_count": 720, "debounce_delay": "250ms"}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if got := cfg.GetRayCount(); got != 720 {
		t.Errorf("GetRayCount = %d, want 720", got)
	}
	if got := cfg.GetDebounceDelay(); got != 250*time.Millisecond {
		t.Errorf("GetDebounceDelay = %v, want 250ms", got)
	}
	// Unspecified fields keep their defaults.
	if got := cfg.GetParallelEps(); got != visibility.DefaultParallelEps {
		t.Errorf("GetParallelEps = %v, want default", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad_ray_count": `{"ray_count": 0}`,
		"bad_epsilon":   `{"angle_epsilon_deg": -1}`,
		"bad_delay":     `{"debounce_delay": "soon"}`,
		"bad_margin":    `{"boundary_margin": 0}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "tuning.json", content)
			if _, err := LoadTuningConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `{}`)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected extension error")
	}
}
