package scanner

import (
	"context"
)

// Catalog is the read side of the device registry.
type Catalog interface {
	// List returns a snapshot of the currently known devices in discovery order.
	List() []Device

	// FindByName returns the first device with the given name.
	FindByName(name string) (Device, bool)
}

// Session is a single conversation with a device.
//
// Open and RequestScan return once the request has been issued; their
// outcomes arrive on the Notifier passed to Open, possibly from another
// goroutine. Close releases all device resources and may be called at any
// point after Open has returned nil.
type Session interface {
	// Open starts opening a session. Completion is reported with OpenCompleted.
	Open(ctx context.Context, dev Device, notify Notifier) error

	// Capabilities returns the capabilities of the open session. Called once
	// after a successful OpenCompleted.
	Capabilities() (Capabilities, error)

	// Configure applies a resolved configuration.
	Configure(ctx context.Context, cfg ResolvedConfiguration) error

	// RequestScan starts a scan. Each produced document is reported with
	// FileTransferred, followed by exactly one ScanCompleted.
	RequestScan(ctx context.Context) error

	// Close releases the session.
	Close() error
}

// SessionFactory creates a Session suitable for dev. sessionID is the
// correlation ID the caller stamps on its own trace events.
type SessionFactory func(dev Device, sessionID string) (Session, error)
