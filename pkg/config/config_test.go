package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/docscan-go/pkg/scanner"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.Resolution)
	assert.Equal(t, "color", cfg.Mode)
	assert.Equal(t, scanner.DefaultGeometry, cfg.Geometry.Scanner())
	assert.Equal(t, time.Second, cfg.Discovery.Settle)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
device: Epson2
mode: grayscale
resolution: 300
format: png
geometry:
  width: 100
discovery:
  settle: 3s
  interface: en0
escl:
  poll_interval: 250ms
  insecure: true
`))
	require.NoError(t, err)

	assert.Equal(t, "Epson2", cfg.Device)
	assert.Equal(t, "grayscale", cfg.Mode)
	assert.Equal(t, 300, cfg.Resolution)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, 100.0, cfg.Geometry.Width)
	assert.Equal(t, 297.0, cfg.Geometry.Height, "unset keys keep their default")
	assert.Equal(t, 3*time.Second, cfg.Discovery.Settle)
	assert.Equal(t, 250*time.Millisecond, cfg.Discovery.Quiet)
	assert.Equal(t, "en0", cfg.Discovery.Interface)
	assert.Equal(t, 250*time.Millisecond, cfg.ESCL.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.ESCL.Timeout)
	assert.True(t, cfg.ESCL.Insecure)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "colour: red\n"},
		{"bad resolution", "resolution: 0\n"},
		{"bad format", "format: bmp\n"},
		{"negative offset", "geometry:\n  left: -1\n"},
		{"zero height", "geometry:\n  height: 0\n"},
		{"negative duration", "discovery:\n  settle: -1s\n"},
		{"bad log level", "log_level: loud\n"},
		{"not yaml", "resolution: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var le *LoadError
			assert.True(t, errors.As(err, &le), "got %v", err)
		})
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolution: 600\n"), 0o644))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 600, cfg.Resolution)
}

func TestLoad_ExplicitFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Load(filepath.Join(dir, "missing.yaml"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("resolution: -5\n"), 0o644))
	_, _, err = Load(bad)
	require.True(t, errors.As(err, &le))
	assert.Equal(t, bad, le.File)
	assert.Contains(t, err.Error(), "resolution must be positive")
}

func TestValidate_DurationErrorsInFieldOrder(t *testing.T) {
	cfg := Default()
	cfg.Discovery.Settle = -time.Second
	cfg.Discovery.Quiet = -time.Second
	cfg.ESCL.Timeout = -time.Second
	cfg.ESCL.PollInterval = -time.Second

	want := "discovery.settle must not be negative\n" +
		"discovery.quiet must not be negative\n" +
		"escl.timeout must not be negative\n" +
		"escl.poll_interval must not be negative"
	for range 5 {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
	}
}
