package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/simrec/internal/episode"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Duration != 1.2 || cfg.FPS != 30 || cfg.Repetitions != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Scenario.CueBody != "object0" || cfg.Scenario.TargetBody != "object1" {
		t.Errorf("unexpected bodies %s %s", cfg.Scenario.CueBody, cfg.Scenario.TargetBody)
	}
	if cfg.Render.Width != 800 || cfg.Render.Height != 800 {
		t.Errorf("unexpected render size %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2.5", 2.5, true},
		{"  10", 10, true},
		{"3abc", 3, true},
		{"1e2x", 100, true},
		{"-0.5s", -0.5, true},
		{".25", 0.25, true},
		{"1_000", 1, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"inf", 0, false},
		{"nan", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFloatPrefix(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseFloatPrefix(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestApplyArgs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyArgs("fast", "10", "4")

	if cfg.Duration != DefaultDuration {
		t.Errorf("malformed duration should keep default, got %f", cfg.Duration)
	}
	if cfg.FPS != 10 || cfg.Repetitions != 4 {
		t.Errorf("unexpected fps/repetitions %f %f", cfg.FPS, cfg.Repetitions)
	}
}

func TestEpisodeCount(t *testing.T) {
	tests := []struct {
		n    float64
		want int
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{2, 2},
		{2.5, 3},
		{0.1, 1},
		{1e12, maxEpisodes},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Repetitions = tt.n
		if got := cfg.EpisodeCount(); got != tt.want {
			t.Errorf("EpisodeCount(%v) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLoadOverridesBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	content := `fps: 15
scenario:
  slope_range: [0, 0.5]
render:
  width: 64
  camera:
    elevation: -30
manifest:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithBase(path, GetPreset("near_miss"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.FPS != 15 || cfg.Duration != DefaultDuration {
		t.Errorf("unexpected fps/duration %f %f", cfg.FPS, cfg.Duration)
	}
	if cfg.Scenario.SlopeRange != (episode.Range{0, 0.5}) {
		t.Errorf("slope range not loaded: %v", cfg.Scenario.SlopeRange)
	}
	if cfg.Scenario.TargetX != (episode.Range{0.6, 0.8}) {
		t.Errorf("preset target range lost: %v", cfg.Scenario.TargetX)
	}
	if cfg.Render.Width != 64 || cfg.Render.Height != DefaultHeight {
		t.Errorf("unexpected render size %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.Camera.Elevation == nil || *cfg.Render.Camera.Elevation != -30 {
		t.Error("camera elevation not loaded")
	}
	if cfg.Render.Camera.Azimuth != nil {
		t.Error("unset azimuth should stay nil")
	}
	if cfg.Manifest.Enabled {
		t.Error("manifest should be disabled")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("frames_per_second: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != DefaultFPS {
		t.Errorf("expected defaults, got fps %f", cfg.FPS)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Seed = 99
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 99 || loaded.Scenario != cfg.Scenario {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Width = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty viewport")
	}

	cfg = DefaultConfig()
	cfg.Scenario.TargetBody = cfg.Scenario.CueBody
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for identical bodies")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("steep")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scenario.SlopeRange[0] != 0.5 {
		t.Errorf("expected slope from 0.5, got %f", cfg.Scenario.SlopeRange[0])
	}
	if cfg.FPS != DefaultFPS {
		t.Error("preset should keep default capture settings")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"default", "near_miss", "shallow", "steep"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}
}
