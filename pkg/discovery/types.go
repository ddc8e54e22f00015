package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// Service types.
const (
	// ServiceTypeESCL is the plain HTTP eSCL service.
	ServiceTypeESCL = "_uscan._tcp"

	// ServiceTypeESCLSecure is the HTTPS eSCL service.
	ServiceTypeESCLSecure = "_uscans._tcp"

	// Domain is the mDNS domain.
	Domain = "local."
)

// Default values.
const (
	// BrowseTimeout is the default time a one-shot browse runs.
	BrowseTimeout = 3 * time.Second

	// DefaultResourcePath is used when a record carries no rs key.
	DefaultResourcePath = "eSCL"

	// UnitsPerInch of eSCL scan regions.
	UnitsPerInch = 300
)

// TXT record keys.
const (
	TXTKeyVersion      = "txtvers"
	TXTKeyVersionESCL  = "vers"
	TXTKeyModel        = "ty"
	TXTKeyResourcePath = "rs"
	TXTKeyUUID         = "UUID"
	TXTKeyColorSpaces  = "cs"
	TXTKeyInputSources = "is"
	TXTKeyFormats      = "pdl"
	TXTKeyDuplex       = "duplex"
	TXTKeyAdminURL     = "adminurl"
	TXTKeyNote         = "note"
)

var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingAddress   = errors.New("service has no usable address")
)

// ScannerInfo is the decoded TXT record of an eSCL service.
type ScannerInfo struct {
	Version      string
	Model        string
	ResourcePath string
	UUID         string
	ColorSpaces  []string
	InputSources []string
	Formats      []string
	Duplex       bool
	AdminURL     string
	Note         string
}

// HasFeeder reports whether the record advertises an automatic document feeder.
func (i *ScannerInfo) HasFeeder() bool {
	for _, s := range i.InputSources {
		if s == "adf" {
			return true
		}
	}
	return false
}

// PixelTypes maps the advertised color spaces onto pixel types.
func (i *ScannerInfo) PixelTypes() []scanner.PixelType {
	var out []scanner.PixelType
	for _, cs := range i.ColorSpaces {
		var pt scanner.PixelType
		switch cs {
		case "color":
			pt = scanner.PixelTypeRGB
		case "grayscale":
			pt = scanner.PixelTypeGray
		case "binary":
			pt = scanner.PixelTypeBW
		default:
			continue
		}
		out = appendUnique(out, pt)
	}
	return out
}

// ServiceEntry is a resolved mDNS instance, independent of the mDNS library.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ScannerService is a discovered eSCL scanner.
type ScannerService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string
	Secure       bool
	Info         *ScannerInfo
}

// ToScannerService converts an entry. Secure selects the https scheme.
func (e *ServiceEntry) ToScannerService(secure bool) (*ScannerService, error) {
	info, err := DecodeScannerTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}
	return &ScannerService{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    append([]string(nil), e.Addrs...),
		Secure:       secure,
		Info:         info,
	}, nil
}

// ID returns the identifier used in the device registry: the advertised
// UUID, or the instance name when the record has none.
func (s *ScannerService) ID() string {
	if s.Info != nil && s.Info.UUID != "" {
		return strings.ToLower(s.Info.UUID)
	}
	return s.InstanceName
}

// URL returns the eSCL base URL. The first IPv4 address is preferred over
// the host name, which is often unresolvable outside mDNS-aware resolvers.
func (s *ScannerService) URL() (string, error) {
	host := ""
	for _, a := range s.Addresses {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			host = a
			break
		}
	}
	if host == "" && len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	if host == "" {
		host = strings.TrimSuffix(s.Host, ".")
	}
	if host == "" || s.Port == 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingAddress, s.InstanceName)
	}

	scheme := "http"
	if s.Secure {
		scheme = "https"
	}
	path := DefaultResourcePath
	if s.Info != nil && s.Info.ResourcePath != "" {
		path = strings.Trim(s.Info.ResourcePath, "/")
	}
	return fmt.Sprintf("%s://%s/%s", scheme, net.JoinHostPort(host, strconv.Itoa(int(s.Port))), path), nil
}

// Device converts the service into a registry device. Resolutions are not
// advertised over mDNS and are filled in once a session reads the full
// capabilities.
func (s *ScannerService) Device() (scanner.Device, error) {
	locator, err := s.URL()
	if err != nil {
		return scanner.Device{}, err
	}
	dev := scanner.Device{
		ID:      s.ID(),
		Name:    s.InstanceName,
		Locator: locator,
		Capabilities: scanner.Capabilities{
			UnitsPerInch: UnitsPerInch,
		},
	}
	if s.Info != nil {
		dev.Capabilities.HasFeeder = s.Info.HasFeeder()
		dev.Capabilities.PixelTypes = s.Info.PixelTypes()
	}
	return dev, nil
}

func appendUnique[T comparable](s []T, v T) []T {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}
