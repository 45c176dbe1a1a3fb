// Package config loads the session settings of the effect pipeline.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/esimov/illusion/dispatch"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds the session settings. Durations are Go duration strings.
type Config struct {
	CaptureWidth   int     `json:"capture_width"`
	CaptureHeight  int     `json:"capture_height"`
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
	Seed           int64   `json:"seed"`
	Mode           string  `json:"mode"`
	MaxParticles   int     `json:"max_particles"`
	CameraSmooth   float64 `json:"camera_smoothing"`

	DetectInterval string `json:"detect_interval"`
	FaceCascade    string `json:"face_cascade"`
	PuplocCascade  string `json:"puploc_cascade"`

	BloomRadius uint32 `json:"bloom_radius"`
	SnapshotDir string `json:"snapshot_dir"`
	FPS         int    `json:"fps"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		CaptureWidth:   160,
		CaptureHeight:  120,
		ViewportWidth:  640,
		ViewportHeight: 480,
		Mode:           dispatch.Fiber.String(),
		MaxParticles:   3000,
		CameraSmooth:   0.1,
		DetectInterval: "100ms",
		FaceCascade:    "cascade/facefinder",
		PuplocCascade:  "cascade/puploc",
		BloomRadius:    0,
		SnapshotDir:    ".",
		FPS:            30,
	}
}

// Load reads a JSON file over the defaults. The file must have a .json
// extension and be under 1MB. Omitted fields keep their default value;
// unknown fields are rejected.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes JSON settings over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.CaptureWidth <= 0 || c.CaptureHeight <= 0 {
		return fmt.Errorf("%w: capture size must be positive, got %dx%d", ErrInvalid, c.CaptureWidth, c.CaptureHeight)
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("%w: viewport size must be positive, got %dx%d", ErrInvalid, c.ViewportWidth, c.ViewportHeight)
	}
	if c.MaxParticles <= 0 {
		return fmt.Errorf("%w: max_particles must be positive, got %d", ErrInvalid, c.MaxParticles)
	}
	if c.CameraSmooth <= 0 || c.CameraSmooth > 1 {
		return fmt.Errorf("%w: camera_smoothing must be in (0, 1], got %f", ErrInvalid, c.CameraSmooth)
	}
	if _, ok := dispatch.ParseMode(c.Mode); !ok {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Mode)
	}
	if d, err := time.ParseDuration(c.DetectInterval); err != nil {
		return fmt.Errorf("%w: detect_interval %q: %v", ErrInvalid, c.DetectInterval, err)
	} else if d <= 0 {
		return fmt.Errorf("%w: detect_interval must be positive, got %s", ErrInvalid, d)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("%w: fps must be in [1, 240], got %d", ErrInvalid, c.FPS)
	}
	return nil
}

// StartMode returns the configured mode.
func (c *Config) StartMode() dispatch.Mode {
	m, _ := dispatch.ParseMode(c.Mode)
	return m
}

// Interval returns the detection re-poll interval.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.DetectInterval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// FrameDelay returns the delay between two ticks of a native preview.
func (c *Config) FrameDelay() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FPS)
}
