// Package config holds recorder settings: YAML files, named presets and the
// permissive positional arguments of the record command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/simrec/internal/episode"
)

const (
	DefaultDuration    = 1.2
	DefaultFPS         = 30.0
	DefaultRepetitions = 1.0
	DefaultKeyFile     = "mjkey.txt"
	DefaultOutputDir   = "."
	DefaultDataDir     = ".simrec"
	DefaultWidth       = 800
	DefaultHeight      = 800
	DefaultMaxGeom     = 2000

	// maxEpisodes bounds the episode count derived from a float argument.
	maxEpisodes = math.MaxInt32
)

type Config struct {
	Duration    float64          `yaml:"duration"`
	FPS         float64          `yaml:"fps"`
	Repetitions float64          `yaml:"repetitions"`
	KeyFile     string           `yaml:"key_file"`
	OutputDir   string           `yaml:"output_dir"`
	Seed        int64            `yaml:"seed"`
	Scenario    episode.Scenario `yaml:"scenario"`
	Render      RenderConfig     `yaml:"render"`
	Manifest    ManifestConfig   `yaml:"manifest"`
}

type RenderConfig struct {
	Width   int          `yaml:"width"`
	Height  int          `yaml:"height"`
	MaxGeom int          `yaml:"max_geom"`
	Camera  CameraConfig `yaml:"camera"`
}

// CameraConfig overrides the model-derived default camera; nil keeps it.
type CameraConfig struct {
	Azimuth   *float64 `yaml:"azimuth,omitempty"`
	Elevation *float64 `yaml:"elevation,omitempty"`
	Distance  *float64 `yaml:"distance,omitempty"`
	Fovy      *float64 `yaml:"fovy,omitempty"`
}

type ManifestConfig struct {
	Enabled bool   `yaml:"enabled"`
	DataDir string `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Duration:    DefaultDuration,
		FPS:         DefaultFPS,
		Repetitions: DefaultRepetitions,
		KeyFile:     DefaultKeyFile,
		OutputDir:   DefaultOutputDir,
		Scenario:    episode.DefaultScenario(),
		Render: RenderConfig{
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			MaxGeom: DefaultMaxGeom,
		},
		Manifest: ManifestConfig{
			Enabled: true,
			DataDir: DefaultDataDir,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithBase(path, DefaultConfig())
}

// LoadWithBase reads path over a copy of base; keys absent from the file
// keep the base values. Unknown keys are an error.
func LoadWithBase(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := *base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Manifest.Enabled && c.Manifest.DataDir == "" {
		return fmt.Errorf("manifest data_dir is required when the manifest is enabled")
	}
	return c.Scenario.Validate()
}

// ApplyArgs sets duration, fps and repetitions from positional strings.
// Each value is read like scanf's %lf: the longest numeric prefix counts,
// and a value without one keeps the current setting.
func (c *Config) ApplyArgs(duration, fps, repetitions string) {
	if v, ok := ParseFloatPrefix(duration); ok {
		c.Duration = v
	}
	if v, ok := ParseFloatPrefix(fps); ok {
		c.FPS = v
	}
	if v, ok := ParseFloatPrefix(repetitions); ok {
		c.Repetitions = v
	}
}

// EpisodeCount is the number of indices i >= 0 with i < Repetitions.
func (c *Config) EpisodeCount() int {
	n := c.Repetitions
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	if n >= maxEpisodes {
		return maxEpisodes
	}
	return int(math.Ceil(n))
}

// ParseFloatPrefix parses the longest leading finite float in s after
// leading white space.
func ParseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[:i]
	}
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err != nil {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
