package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/illusion/dispatch"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, dispatch.Fiber, cfg.StartMode())
	assert.Equal(t, 100*time.Millisecond, cfg.Interval())
	assert.Equal(t, time.Second/30, cfg.FrameDelay())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "illusion.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode": "FAILURE", "seed": 42, "detect_interval": "250ms"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Mode = "FAILURE"
	want.Seed = 42
	want.DetectInterval = "250ms"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, dispatch.GlyphChaos, cfg.StartMode())
	assert.Equal(t, 250*time.Millisecond, cfg.Interval())
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	_, err := Load(write("illusion.yaml", `{}`))
	assert.ErrorContains(t, err, ".json extension")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = Load(write("unknown.json", `{"colour": "red"}`))
	assert.ErrorContains(t, err, "unknown field")

	_, err = Load(write("bad.json", `{"mode": "disco"}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"capture", func(c *Config) { c.CaptureWidth = 0 }},
		{"viewport", func(c *Config) { c.ViewportHeight = -1 }},
		{"particles", func(c *Config) { c.MaxParticles = 0 }},
		{"smoothing", func(c *Config) { c.CameraSmooth = 1.5 }},
		{"interval", func(c *Config) { c.DetectInterval = "soon" }},
		{"negative interval", func(c *Config) { c.DetectInterval = "-1s" }},
		{"fps", func(c *Config) { c.FPS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
