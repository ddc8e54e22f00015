package capability

import (
	"fmt"
	"slices"
	"strings"

	"github.com/docscan/docscan-go/pkg/papersize"
	"github.com/docscan/docscan-go/pkg/scanner"
)

// DefaultResolution is used when no resolution is requested.
const DefaultResolution = 200

// ResolveResolution returns the smallest supported resolution that is
// greater than or equal to desired. If none is, the largest supported
// resolution is returned. The supported set does not need to be sorted.
func ResolveResolution(desired int, supported []int) (int, error) {
	if len(supported) == 0 {
		return 0, fmt.Errorf("%w: device reports no supported resolutions", scanner.ErrCapability)
	}
	sorted := slices.Clone(supported)
	slices.Sort(sorted)
	for _, r := range sorted {
		if r >= desired {
			return r, nil
		}
	}
	return sorted[len(sorted)-1], nil
}

// ParseColorMode maps a user-supplied mode string to a ColorMode. Matching
// is case-insensitive and unknown strings map to colour.
func ParseColorMode(s string) scanner.ColorMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grayscale", "greyscale", "gray", "grey":
		return scanner.ColorModeGrayscale
	case "lineart", "bw":
		return scanner.ColorModeLineart
	default:
		return scanner.ColorModeColor
	}
}

// PixelFormat returns the pixel type and bit depth for a colour mode.
func PixelFormat(m scanner.ColorMode) (scanner.PixelType, scanner.BitDepth) {
	switch m {
	case scanner.ColorModeGrayscale:
		return scanner.PixelTypeGray, scanner.BitDepth8
	case scanner.ColorModeLineart:
		return scanner.PixelTypeBW, scanner.BitDepth1
	default:
		return scanner.PixelTypeRGB, scanner.BitDepth8
	}
}

// Resolve builds the configuration for req against caps. downloadDir is
// where the device should write produced files.
//
// With a feeder, the document size is classified from the requested
// geometry and no area is set. Without one, the geometry is converted to
// device units using caps.UnitsPerInch.
func Resolve(req scanner.ScanRequest, caps scanner.Capabilities, downloadDir string) (scanner.ResolvedConfiguration, error) {
	if downloadDir == "" {
		return scanner.ResolvedConfiguration{}, fmt.Errorf("%w: no download directory", scanner.ErrConfiguration)
	}

	desired := req.Resolution
	if desired <= 0 {
		desired = DefaultResolution
	}
	res, err := ResolveResolution(desired, caps.Resolutions)
	if err != nil {
		return scanner.ResolvedConfiguration{}, err
	}

	pixelType, bitDepth := PixelFormat(req.ColorMode)

	cfg := scanner.ResolvedConfiguration{
		TransferMode: scanner.TransferModeFile,
		DownloadDir:  downloadDir,
		DocumentName: scanner.DefaultDocumentName,
		Format:       req.Format,
		Resolution:   res,
		PixelType:    pixelType,
		BitDepth:     bitDepth,
	}

	if caps.HasFeeder {
		cfg.UseFeeder = true
		cfg.DocumentSize = papersize.Classify(req.Geometry.Width, req.Geometry.Height)
		return cfg, nil
	}

	if caps.UnitsPerInch <= 0 {
		return scanner.ResolvedConfiguration{}, fmt.Errorf("%w: device reports no measurement unit", scanner.ErrCapability)
	}
	area := req.Geometry.ToUnits(caps.UnitsPerInch)
	cfg.Area = &area
	return cfg, nil
}
