package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/docscan-go/pkg/capability"
	"github.com/docscan/docscan-go/pkg/config"
	"github.com/docscan/docscan-go/pkg/scanner"
)

func TestOptionsApply_FlagsOverrideFile(t *testing.T) {
	file := config.Default()
	file.Device = "FromFile"
	file.Resolution = 300
	file.Mode = "gray"

	o := options{Device: "FromFlag", Resolution: "600", Mode: "lineart", Settle: 5 * time.Second}
	cfg, err := o.apply(file, map[string]bool{"d": true, "resolution": true, "settle": true})
	require.NoError(t, err)

	assert.Equal(t, "FromFlag", cfg.Device)
	assert.Equal(t, 600, cfg.Resolution)
	assert.Equal(t, "gray", cfg.Mode, "unset flag keeps file value")
	assert.Equal(t, 5*time.Second, cfg.Discovery.Settle)
}

func TestOptionsApply_ShortAndLongSpellings(t *testing.T) {
	o := options{Mode: "grey", Width: 100, Height: 150}
	cfg, err := o.apply(config.Default(), map[string]bool{"m": true, "width": true, "y": true})
	require.NoError(t, err)
	assert.Equal(t, "grey", cfg.Mode)
	assert.Equal(t, 100.0, cfg.Geometry.Width)
	assert.Equal(t, 150.0, cfg.Geometry.Height)
}

func TestOptionsApply_Invalid(t *testing.T) {
	o := options{Format: "bmp"}
	_, err := o.apply(config.Default(), map[string]bool{"format": true})
	assert.Error(t, err)

	o = options{Width: -1}
	_, err = o.apply(config.Default(), map[string]bool{"x": true})
	assert.Error(t, err)
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"300", 300},
		{" 150 ", 150},
		{"", capability.DefaultResolution},
		{"abc", capability.DefaultResolution},
		{"0", capability.DefaultResolution},
		{"-75", capability.DefaultResolution},
		{"12.5", capability.DefaultResolution},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseResolution(tt.in))
		})
	}
}

func TestBuildRequest(t *testing.T) {
	cfg := config.Default()
	cfg.Device = "Canon1"
	cfg.Mode = "Grayscale"

	req, err := buildRequest(cfg, "/tmp/out.png")
	require.NoError(t, err)
	assert.Equal(t, "Canon1", req.DeviceName)
	assert.Equal(t, scanner.ColorModeGrayscale, req.ColorMode)
	assert.Equal(t, scanner.FormatPNG, req.Format)
	assert.Equal(t, "/tmp/out.png", req.Destination)
	assert.Equal(t, cfg.Resolution, req.Resolution)
	assert.Equal(t, cfg.Geometry.Scanner(), req.Geometry)

	req, err = buildRequest(config.Default(), "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, scanner.FormatJPEG, req.Format)
	assert.Equal(t, scanner.ColorModeColor, req.ColorMode)

	req, err = buildRequest(config.Default(), "/tmp/out.xyz")
	require.NoError(t, err)
	assert.Equal(t, scanner.FormatJPEG, req.Format)

	cfg = config.Default()
	cfg.Format = "pdf"
	req, err = buildRequest(cfg, "/tmp/out.png")
	require.NoError(t, err)
	assert.Equal(t, scanner.FormatPDF, req.Format, "explicit format wins over extension")
}
