package scanner

import (
	"errors"
)

// Error kinds surfaced to the user. Transports and the state machine wrap
// these with fmt.Errorf("%w: ...") so the kind survives alongside the
// device-reported message.
var (
	// ErrDiscoveryEmpty is returned when the catalog holds no devices.
	ErrDiscoveryEmpty = errors.New("no scanners found")

	// ErrDeviceNotFound is returned by strict lookups for an unknown name.
	ErrDeviceNotFound = errors.New("scanner not found")

	// ErrSessionOpen is returned when the device refuses or fails to open a session.
	ErrSessionOpen = errors.New("session open failed")

	// ErrCapability is returned when a capability set is empty or unreadable.
	ErrCapability = errors.New("capability error")

	// ErrConfiguration is returned for invalid parameters or a missing destination.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransfer is returned when a produced document cannot be relocated.
	ErrTransfer = errors.New("transfer failed")

	// ErrScan is returned when the device reports a failed scan.
	ErrScan = errors.New("scan failed")

	// ErrSessionUsed is returned when a session machine is run twice.
	ErrSessionUsed = errors.New("session already used")

	// ErrTimeout is returned when the overall deadline expires.
	ErrTimeout = errors.New("scan timed out")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrDiscoveryEmpty, "DiscoveryEmpty"},
	{ErrDeviceNotFound, "DeviceNotFound"},
	{ErrSessionOpen, "SessionOpenError"},
	{ErrCapability, "CapabilityError"},
	{ErrConfiguration, "ConfigurationError"},
	{ErrTransfer, "TransferError"},
	{ErrScan, "ScanError"},
	{ErrSessionUsed, "SessionUsed"},
	{ErrTimeout, "Timeout"},
}

// Kind returns the error kind name for err, or "Error" if err does not wrap
// one of the package sentinels. Kind(nil) returns "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Error"
}
