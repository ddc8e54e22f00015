package capability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/docscan-go/pkg/papersize"
	"github.com/docscan/docscan-go/pkg/scanner"
)

func TestResolveResolution(t *testing.T) {
	tests := []struct {
		name      string
		desired   int
		supported []int
		want      int
	}{
		{"exact", 300, []int{100, 200, 300, 600}, 300},
		{"round up", 250, []int{100, 200, 300, 600}, 300},
		{"below all", 50, []int{100, 200, 300}, 100},
		{"above all", 1200, []int{100, 200, 300, 600}, 600},
		{"unsorted input", 250, []int{600, 100, 300, 200}, 300},
		{"single", 200, []int{150}, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveResolution(tt.desired, tt.supported)
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("ResolveResolution(%d, %v): got %d, want %d", tt.desired, tt.supported, got, tt.want)
			}
		})
	}
}

func TestResolveResolution_Empty(t *testing.T) {
	_, err := ResolveResolution(200, nil)
	if !errors.Is(err, scanner.ErrCapability) {
		t.Fatalf("expected ErrCapability, got %v", err)
	}
}

func TestResolveResolution_DoesNotMutateInput(t *testing.T) {
	in := []int{600, 100, 300}
	_, err := ResolveResolution(200, in)
	require.NoError(t, err)
	assert.Equal(t, []int{600, 100, 300}, in)
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want scanner.ColorMode
	}{
		{"color", scanner.ColorModeColor},
		{"COLOR", scanner.ColorModeColor},
		{"grayscale", scanner.ColorModeGrayscale},
		{"GrayScale", scanner.ColorModeGrayscale},
		{"lineart", scanner.ColorModeLineart},
		{"LineArt", scanner.ColorModeLineart},
		{"sepia", scanner.ColorModeColor},
		{"", scanner.ColorModeColor},
	}
	for _, tt := range tests {
		if got := ParseColorMode(tt.in); got != tt.want {
			t.Errorf("ParseColorMode(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPixelFormat(t *testing.T) {
	p, d := PixelFormat(scanner.ColorModeColor)
	assert.Equal(t, scanner.PixelTypeRGB, p)
	assert.Equal(t, scanner.BitDepth8, d)

	p, d = PixelFormat(scanner.ColorModeGrayscale)
	assert.Equal(t, scanner.PixelTypeGray, p)
	assert.Equal(t, scanner.BitDepth8, d)

	p, d = PixelFormat(scanner.ColorModeLineart)
	assert.Equal(t, scanner.PixelTypeBW, p)
	assert.Equal(t, scanner.BitDepth1, d)
}

func platenCaps() scanner.Capabilities {
	return scanner.Capabilities{
		Resolutions:  []int{75, 150, 300, 600},
		UnitsPerInch: 72,
	}
}

func TestResolve_Platen(t *testing.T) {
	req := scanner.ScanRequest{
		ColorMode:  scanner.ColorModeGrayscale,
		Resolution: 200,
		Geometry:   scanner.DefaultGeometry,
	}
	cfg, err := Resolve(req, platenCaps(), "/tmp/scratch")
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Resolution)
	assert.Equal(t, scanner.PixelTypeGray, cfg.PixelType)
	assert.Equal(t, scanner.BitDepth8, cfg.BitDepth)
	assert.False(t, cfg.UseFeeder)
	assert.Equal(t, "/tmp/scratch", cfg.DownloadDir)
	assert.Equal(t, scanner.DefaultDocumentName, cfg.DocumentName)
	require.NotNil(t, cfg.Area)
	assert.InDelta(t, 595.27, cfg.Area.Width, 0.01)
	assert.InDelta(t, 841.89, cfg.Area.Height, 0.01)
}

func TestResolve_Feeder(t *testing.T) {
	caps := platenCaps()
	caps.HasFeeder = true
	req := scanner.ScanRequest{
		Resolution: 150,
		Geometry:   scanner.Geometry{Width: 215.9, Height: 279.4},
	}
	cfg, err := Resolve(req, caps, "/tmp/scratch")
	require.NoError(t, err)

	assert.True(t, cfg.UseFeeder)
	assert.Equal(t, papersize.CategoryLetter, cfg.DocumentSize)
	assert.Nil(t, cfg.Area)
	assert.Equal(t, 150, cfg.Resolution)
}

func TestResolve_DefaultResolution(t *testing.T) {
	cfg, err := Resolve(scanner.ScanRequest{Geometry: scanner.DefaultGeometry}, platenCaps(), "/tmp")
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Resolution)
}

func TestResolve_Errors(t *testing.T) {
	req := scanner.ScanRequest{Resolution: 200, Geometry: scanner.DefaultGeometry}

	_, err := Resolve(req, scanner.Capabilities{UnitsPerInch: 72}, "/tmp")
	assert.ErrorIs(t, err, scanner.ErrCapability)

	_, err = Resolve(req, platenCaps(), "")
	assert.ErrorIs(t, err, scanner.ErrConfiguration)

	_, err = Resolve(req, scanner.Capabilities{Resolutions: []int{300}}, "/tmp")
	assert.ErrorIs(t, err, scanner.ErrCapability)
}
