package escl

import (
	"encoding/xml"
	"fmt"
	"slices"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// XML namespaces used by eSCL documents.
const (
	NamespaceScan = "http://schemas.hp.com/imaging/escl/2011/05/03"
	NamespacePWG  = "http://www.pwg.org/schemas/2010/12/sm"
)

// UnitsPerInch is the eSCL ContentRegionUnits resolution (ThreeHundredthsOfInches).
const UnitsPerInch = 300

// Color modes as named by eSCL.
const (
	ColorModeRGB24          = "RGB24"
	ColorModeGrayscale8     = "Grayscale8"
	ColorModeBlackAndWhite1 = "BlackAndWhite1"
)

// Input sources as named by eSCL.
const (
	InputPlaten = "Platen"
	InputFeeder = "Feeder"
)

// ScannerCapabilities is the response of GET /ScannerCapabilities.
// Element names are matched without namespace.
type ScannerCapabilities struct {
	XMLName      xml.Name   `xml:"ScannerCapabilities"`
	Version      string     `xml:"Version"`
	MakeAndModel string     `xml:"MakeAndModel"`
	SerialNumber string     `xml:"SerialNumber"`
	UUID         string     `xml:"UUID"`
	Platen       *InputCaps `xml:"Platen>PlatenInputCaps"`
	Adf          *InputCaps `xml:"Adf>AdfSimplexInputCaps"`
}

// InputCaps describes one input source.
type InputCaps struct {
	MinWidth  int              `xml:"MinWidth"`
	MaxWidth  int              `xml:"MaxWidth"`
	MinHeight int              `xml:"MinHeight"`
	MaxHeight int              `xml:"MaxHeight"`
	Profiles  []SettingProfile `xml:"SettingProfiles>SettingProfile"`
}

// SettingProfile is a combination of modes, formats and resolutions.
type SettingProfile struct {
	ColorModes      []string             `xml:"ColorModes>ColorMode"`
	DocumentFormats []string             `xml:"DocumentFormats>DocumentFormat"`
	Discrete        []DiscreteResolution `xml:"SupportedResolutions>DiscreteResolutions>DiscreteResolution"`
	Range           *ResolutionRange     `xml:"SupportedResolutions>ResolutionRange"`
}

// DiscreteResolution is one supported resolution pair.
type DiscreteResolution struct {
	X int `xml:"XResolution"`
	Y int `xml:"YResolution"`
}

// ResolutionRange is a continuous resolution range.
type ResolutionRange struct {
	Min  int `xml:"XResolutionRange>Min"`
	Max  int `xml:"XResolutionRange>Max"`
	Step int `xml:"XResolutionRange>Step"`
}

// commonResolutions are offered from a ResolutionRange.
var commonResolutions = []int{75, 100, 150, 200, 300, 400, 600, 1200, 2400}

// ScannerStatus is the response of GET /ScannerStatus.
type ScannerStatus struct {
	XMLName  xml.Name `xml:"ScannerStatus"`
	Version  string   `xml:"Version"`
	State    string   `xml:"State"`
	AdfState string   `xml:"AdfState"`
}

// ParseCapabilities decodes a ScannerCapabilities document.
func ParseCapabilities(data []byte) (*ScannerCapabilities, error) {
	var caps ScannerCapabilities
	if err := xml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("escl: decode capabilities: %w", err)
	}
	return &caps, nil
}

// ParseStatus decodes a ScannerStatus document.
func ParseStatus(data []byte) (*ScannerStatus, error) {
	var st ScannerStatus
	if err := xml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("escl: decode status: %w", err)
	}
	return &st, nil
}

// Capabilities converts the device document into the shared model. The
// feeder's resolutions are used when the device has a feeder, the platen's
// otherwise.
func (c *ScannerCapabilities) Capabilities() scanner.Capabilities {
	out := scanner.Capabilities{
		HasFeeder:    c.Adf != nil,
		UnitsPerInch: UnitsPerInch,
	}
	input := c.Platen
	if c.Adf != nil {
		input = c.Adf
	}
	if input == nil {
		return out
	}

	for _, p := range input.Profiles {
		for _, r := range p.Discrete {
			if r.X > 0 && !slices.Contains(out.Resolutions, r.X) {
				out.Resolutions = append(out.Resolutions, r.X)
			}
		}
		if p.Range != nil {
			for _, r := range commonResolutions {
				if r >= p.Range.Min && r <= p.Range.Max && !slices.Contains(out.Resolutions, r) {
					out.Resolutions = append(out.Resolutions, r)
				}
			}
		}
		for _, m := range p.ColorModes {
			pt, depth, ok := pixelTypeFor(m)
			if !ok {
				continue
			}
			if !slices.Contains(out.PixelTypes, pt) {
				out.PixelTypes = append(out.PixelTypes, pt)
			}
			if !slices.Contains(out.BitDepths, depth) {
				out.BitDepths = append(out.BitDepths, depth)
			}
		}
	}
	slices.Sort(out.Resolutions)
	return out
}

// Formats returns the document formats offered by the selected input.
func (c *ScannerCapabilities) Formats() []string {
	input := c.Platen
	if c.Adf != nil {
		input = c.Adf
	}
	if input == nil {
		return nil
	}
	var out []string
	for _, p := range input.Profiles {
		for _, f := range p.DocumentFormats {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

func pixelTypeFor(mode string) (scanner.PixelType, scanner.BitDepth, bool) {
	switch mode {
	case ColorModeRGB24:
		return scanner.PixelTypeRGB, scanner.BitDepth8, true
	case ColorModeGrayscale8:
		return scanner.PixelTypeGray, scanner.BitDepth8, true
	case ColorModeBlackAndWhite1:
		return scanner.PixelTypeBW, scanner.BitDepth1, true
	default:
		return 0, 0, false
	}
}

// ColorModeFor returns the eSCL color mode for a pixel type.
func ColorModeFor(p scanner.PixelType) string {
	switch p {
	case scanner.PixelTypeGray:
		return ColorModeGrayscale8
	case scanner.PixelTypeBW:
		return ColorModeBlackAndWhite1
	default:
		return ColorModeRGB24
	}
}

// ScanSettings is the request body of POST /ScanJobs. The element names
// carry their prefixes literally because encoding/xml cannot emit prefixed
// names from namespace URLs.
type ScanSettings struct {
	XMLName           xml.Name `xml:"scan:ScanSettings"`
	XmlnsScan         string   `xml:"xmlns:scan,attr"`
	XmlnsPWG          string   `xml:"xmlns:pwg,attr"`
	Version           string   `xml:"pwg:Version"`
	Regions           []Region `xml:"pwg:ScanRegions>pwg:ScanRegion"`
	InputSource       string   `xml:"pwg:InputSource"`
	ColorMode         string   `xml:"scan:ColorMode"`
	XResolution       int      `xml:"scan:XResolution"`
	YResolution       int      `xml:"scan:YResolution"`
	DocumentFormat    string   `xml:"pwg:DocumentFormat"`
	DocumentFormatExt string   `xml:"scan:DocumentFormatExt"`
	Intent            string   `xml:"scan:Intent,omitempty"`
}

// Region is a scan region in ThreeHundredthsOfInches.
type Region struct {
	Height  int    `xml:"pwg:Height"`
	Units   string `xml:"pwg:ContentRegionUnits"`
	Width   int    `xml:"pwg:Width"`
	XOffset int    `xml:"pwg:XOffset"`
	YOffset int    `xml:"pwg:YOffset"`
}

// Marshal encodes the settings with an XML declaration.
func (s *ScanSettings) Marshal() ([]byte, error) {
	s.XmlnsScan = NamespaceScan
	s.XmlnsPWG = NamespacePWG
	body, err := xml.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("escl: encode settings: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
