package scanner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrDiscoveryEmpty, "DiscoveryEmpty"},
		{fmt.Errorf("%w: paper jam", ErrScan), "ScanError"},
		{fmt.Errorf("%w: no destination", ErrConfiguration), "ConfigurationError"},
		{fmt.Errorf("outer: %w", fmt.Errorf("%w: busy", ErrSessionOpen)), "SessionOpenError"},
		{errors.New("something else"), "Error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want DocumentFormat
	}{
		{"jpeg", FormatJPEG},
		{".JPG", FormatJPEG},
		{"png", FormatPNG},
		{".pdf", FormatPDF},
		{"tif", FormatTIFF},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}

	_, err := ParseFormat("bmp")
	assert.Error(t, err)
}

func TestGeometry_ToUnits(t *testing.T) {
	r := DefaultGeometry.ToUnits(72)
	assert.InDelta(t, 595.27, r.Width, 0.01)
	assert.InDelta(t, 841.89, r.Height, 0.01)
	assert.Zero(t, r.X)

	r = Geometry{Left: 25.4, Top: 50.8, Width: 25.4, Height: 25.4}.ToUnits(300)
	assert.InDelta(t, 300, r.X, 1e-9)
	assert.InDelta(t, 600, r.Y, 1e-9)
	assert.InDelta(t, 300, r.Width, 1e-9)
}

func TestCapabilities_SupportsPixelType(t *testing.T) {
	assert.True(t, Capabilities{}.SupportsPixelType(PixelTypeBW))
	caps := Capabilities{PixelTypes: []PixelType{PixelTypeRGB}}
	assert.True(t, caps.SupportsPixelType(PixelTypeRGB))
	assert.False(t, caps.SupportsPixelType(PixelTypeGray))
}
