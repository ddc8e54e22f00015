package scanner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/docscan/docscan-go/pkg/papersize"
)

// MillimetresPerInch converts between millimetres and inches.
const MillimetresPerInch = 25.4

// Device is an opaque handle to a discovered scanner.
// It is immutable once published by a discovery provider.
type Device struct {
	// ID uniquely identifies the device within a process.
	ID string

	// Name is the human-readable display name.
	Name string

	// Locator is the transport-specific address (an eSCL base URL, for example).
	// Empty for simulated devices.
	Locator string

	// Capabilities is the descriptor known at discovery time. Transports
	// may refine it once a session is open.
	Capabilities Capabilities
}

// String returns the display name.
func (d Device) String() string {
	return d.Name
}

// Capabilities describes what a device can do.
type Capabilities struct {
	// Resolutions supported by the device in DPI, ascending.
	Resolutions []int

	// HasFeeder reports whether the device has a document feeder.
	HasFeeder bool

	// PixelTypes supported by the device.
	PixelTypes []PixelType

	// BitDepths supported by the device.
	BitDepths []BitDepth

	// UnitsPerInch is the device's native measurement unit for scan areas.
	UnitsPerInch float64
}

// SupportsPixelType reports whether p is in the advertised set. An empty
// set is treated as unknown and accepts anything.
func (c Capabilities) SupportsPixelType(p PixelType) bool {
	return len(c.PixelTypes) == 0 || slices.Contains(c.PixelTypes, p)
}

// ColorMode is the user's requested colour mode.
type ColorMode uint8

const (
	ColorModeColor ColorMode = iota
	ColorModeGrayscale
	ColorModeLineart
)

// String returns the lowercase mode name used on the command line.
func (m ColorMode) String() string {
	switch m {
	case ColorModeColor:
		return "color"
	case ColorModeGrayscale:
		return "grayscale"
	case ColorModeLineart:
		return "lineart"
	default:
		return "unknown"
	}
}

// PixelType is the device-level pixel representation.
type PixelType uint8

const (
	PixelTypeRGB PixelType = iota
	PixelTypeGray
	PixelTypeBW
)

// String returns the pixel type name.
func (p PixelType) String() string {
	switch p {
	case PixelTypeRGB:
		return "RGB"
	case PixelTypeGray:
		return "GRAY"
	case PixelTypeBW:
		return "BW"
	default:
		return "UNKNOWN"
	}
}

// BitDepth is the number of bits per channel.
type BitDepth uint8

const (
	BitDepth1 BitDepth = 1
	BitDepth8 BitDepth = 8
)

// DocumentFormat is the file format the device produces.
type DocumentFormat uint8

const (
	FormatJPEG DocumentFormat = iota
	FormatPNG
	FormatPDF
	FormatTIFF
)

// String returns the format name.
func (f DocumentFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatPDF:
		return "pdf"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// MIMEType returns the media type for the format.
func (f DocumentFormat) MIMEType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}

// Extension returns the file extension including the leading dot.
func (f DocumentFormat) Extension() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatPDF:
		return ".pdf"
	case FormatTIFF:
		return ".tiff"
	default:
		return ".jpg"
	}
}

// ParseFormat parses a format name or file extension (with or without the dot).
func ParseFormat(s string) (DocumentFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	default:
		return FormatJPEG, fmt.Errorf("unknown document format %q", s)
	}
}

// Geometry is a rectangle in millimetres, origin at the top-left of the platen.
type Geometry struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// DefaultGeometry is a full A4 page.
var DefaultGeometry = Geometry{Width: 210, Height: 297}

// ToUnits converts the geometry to device units.
func (g Geometry) ToUnits(unitsPerInch float64) Rect {
	conv := func(mm float64) float64 { return mm * unitsPerInch / MillimetresPerInch }
	return Rect{
		X:      conv(g.Left),
		Y:      conv(g.Top),
		Width:  conv(g.Width),
		Height: conv(g.Height),
	}
}

// Rect is a rectangle in device-native units.
type Rect struct {
	X, Y, Width, Height float64
}

// ScanRequest is the user's intent for a single scan.
type ScanRequest struct {
	// DeviceName selects a device; empty means the first one.
	DeviceName string

	ColorMode ColorMode

	// Resolution is the desired resolution in DPI.
	Resolution int

	// Destination is a file path, or a directory when it ends with a
	// separator or names an existing directory.
	Destination string

	Geometry Geometry

	Format DocumentFormat
}

// TransferMode selects how the device delivers documents.
type TransferMode uint8

const (
	// TransferModeFile delivers each document as a file in a download directory.
	TransferModeFile TransferMode = iota
)

// DefaultDocumentName is the base name the device uses for produced files.
const DefaultDocumentName = "scan"

// ResolvedConfiguration is the concrete parameter set applied to a device.
type ResolvedConfiguration struct {
	TransferMode TransferMode

	// DownloadDir is where the device writes produced files.
	DownloadDir string

	DocumentName string
	Format       DocumentFormat

	Resolution int
	PixelType  PixelType
	BitDepth   BitDepth

	// UseFeeder selects the document feeder. When set, DocumentSize is
	// meaningful and Area is nil.
	UseFeeder    bool
	DocumentSize papersize.Category

	// Area is the platen scan area in device units. Nil when UseFeeder is set.
	Area *Rect
}
