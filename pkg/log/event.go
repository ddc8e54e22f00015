package log

import (
	"time"
)

// Event represents a trace event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID correlates all events of one scan session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID is the selected device's identifier.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// DeviceName is the selected device's display name.
	DeviceName string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"`
	Config      *ConfigEvent      `cbor:"11,keyasint,omitempty"`
	Transfer    *TransferEvent    `cbor:"12,keyasint,omitempty"`
	Request     *RequestEvent     `cbor:"13,keyasint,omitempty"`
	Discovery   *DiscoveryEvent   `cbor:"14,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"`
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerDiscovery is device discovery and the registry.
	LayerDiscovery Layer = 0
	// LayerSession is the session state machine.
	LayerSession Layer = 1
	// LayerDevice is the device transport (eSCL, simulator).
	LayerDevice Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerDiscovery:
		return "DISCOVERY"
	case LayerSession:
		return "SESSION"
	case LayerDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a state change.
	CategoryState Category = 0
	// CategoryConfig indicates an applied configuration.
	CategoryConfig Category = 1
	// CategoryTransfer indicates a document transfer.
	CategoryTransfer Category = 2
	// CategoryRequest indicates a device request/response.
	CategoryRequest Category = 3
	// CategoryDiscovery indicates a device added or removed.
	CategoryDiscovery Category = 4
	// CategoryError indicates an error event.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryConfig:
		return "CONFIG"
	case CategoryTransfer:
		return "TRANSFER"
	case CategoryRequest:
		return "REQUEST"
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of a device exchange.
type Direction uint8

const (
	// DirectionOut is a request sent to the device.
	DirectionOut Direction = 0
	// DirectionIn is a response received from the device.
	DirectionIn Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ConfigEvent captures the configuration applied to the device.
type ConfigEvent struct {
	Resolution int    `cbor:"1,keyasint"`
	PixelType  string `cbor:"2,keyasint"`
	BitDepth   uint8  `cbor:"3,keyasint"`
	Format     string `cbor:"4,keyasint"`
	UseFeeder  bool   `cbor:"5,keyasint,omitempty"`

	// DocumentSize is set for feeder scans.
	DocumentSize string `cbor:"6,keyasint,omitempty"`

	// Area is {x, y, width, height} in device units for platen scans.
	Area []float64 `cbor:"7,keyasint,omitempty"`

	DownloadDir string `cbor:"8,keyasint,omitempty"`
}

// TransferEvent captures a document delivered by the device.
type TransferEvent struct {
	// Page is the 1-based document number within the session.
	Page int `cbor:"1,keyasint"`

	// Source is where the device wrote the document.
	Source string `cbor:"2,keyasint"`

	// Destination is the final path (equal to Source when not relocated).
	Destination string `cbor:"3,keyasint"`

	// Bytes is the document size.
	Bytes int64 `cbor:"4,keyasint,omitempty"`

	// MIMEType is the detected content type.
	MIMEType string `cbor:"5,keyasint,omitempty"`
}

// RequestEvent captures one HTTP exchange with a device.
type RequestEvent struct {
	Direction Direction `cbor:"1,keyasint"`
	Method    string    `cbor:"2,keyasint"`
	URL       string    `cbor:"3,keyasint"`

	// Status is the HTTP status code (responses only).
	Status int `cbor:"4,keyasint,omitempty"`

	// Duration is the round-trip time (responses only).
	Duration *time.Duration `cbor:"5,keyasint,omitempty"`
}

// DiscoveryAction indicates whether a device appeared or disappeared.
type DiscoveryAction uint8

const (
	// DiscoveryAdded indicates a device was added.
	DiscoveryAdded DiscoveryAction = 0
	// DiscoveryRemoved indicates a device was removed.
	DiscoveryRemoved DiscoveryAction = 1
)

// String returns the action name.
func (a DiscoveryAction) String() string {
	switch a {
	case DiscoveryAdded:
		return "ADDED"
	case DiscoveryRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// DiscoveryEvent captures registry changes.
type DiscoveryEvent struct {
	Action  DiscoveryAction `cbor:"1,keyasint"`
	Name    string          `cbor:"2,keyasint,omitempty"`
	Locator string          `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the user-facing error kind (e.g. "ScanError").
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
