package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// Registry is a concurrency-safe, ordered device catalog.
type Registry struct {
	mu       sync.Mutex
	devices  []scanner.Device
	changed  chan struct{}
	complete chan struct{}
	doneOnce sync.Once
	logger   *slog.Logger
}

// Compile-time interface satisfaction check.
var _ scanner.Catalog = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		changed:  make(chan struct{}, 1),
		complete: make(chan struct{}),
	}
}

// SetLogger sets the logger for add/remove debug output.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Add appends dev. A device whose ID is already present is updated in place
// and keeps its position.
func (r *Registry) Add(dev scanner.Device) {
	r.mu.Lock()
	replaced := false
	for i := range r.devices {
		if r.devices[i].ID == dev.ID {
			r.devices[i] = dev
			replaced = true
			break
		}
	}
	if !replaced {
		r.devices = append(r.devices, dev)
	}
	logger := r.logger
	r.mu.Unlock()

	if logger != nil {
		logger.Debug("registry: device added", "id", dev.ID, "name", dev.Name, "updated", replaced)
	}
	r.signal()
}

// Remove deletes the device with the given ID. Removing an unknown device
// is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	removed := false
	for i := range r.devices {
		if r.devices[i].ID == id {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			removed = true
			break
		}
	}
	logger := r.logger
	r.mu.Unlock()

	if !removed {
		return
	}
	if logger != nil {
		logger.Debug("registry: device removed", "id", id)
	}
	r.signal()
}

func (r *Registry) signal() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

// List returns a copy of the current devices in discovery order.
func (r *Registry) List() []scanner.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]scanner.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of devices.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// FindByName returns the first device whose name matches exactly.
func (r *Registry) FindByName(name string) (scanner.Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.Name == name {
			return d, true
		}
	}
	return scanner.Device{}, false
}

// Lookup is FindByName returning ErrDeviceNotFound for an unknown name.
func (r *Registry) Lookup(name string) (scanner.Device, error) {
	if d, ok := r.FindByName(name); ok {
		return d, nil
	}
	return scanner.Device{}, fmt.Errorf("%w: %q", scanner.ErrDeviceNotFound, name)
}

// Selection is the result of Select.
type Selection struct {
	Device scanner.Device

	// Fallback is set when a name was requested but not found and the
	// first device was chosen instead.
	Fallback bool
}

// Select picks the device for a scan. An empty name selects the first
// device. An unknown name also selects the first device, with Fallback set.
// Returns ErrDiscoveryEmpty when no devices are known.
func (r *Registry) Select(name string) (Selection, error) {
	devices := r.List()
	if len(devices) == 0 {
		return Selection{}, scanner.ErrDiscoveryEmpty
	}
	if name == "" {
		return Selection{Device: devices[0]}, nil
	}
	for _, d := range devices {
		if d.Name == name {
			return Selection{Device: d}, nil
		}
	}
	return Selection{Device: devices[0], Fallback: true}, nil
}

// MarkComplete tells waiters that the provider has finished its initial
// enumeration. Safe to call more than once.
func (r *Registry) MarkComplete() {
	r.doneOnce.Do(func() { close(r.complete) })
}

// WaitSettled blocks until the device set can be considered stable and
// returns a snapshot of it. It returns when MarkComplete has been called,
// when no change has happened for quiet after at least one device was seen,
// when max has elapsed, or when ctx is done. A zero quiet disables the quiet
// window; a zero max means no upper bound.
func (r *Registry) WaitSettled(ctx context.Context, quiet, max time.Duration) []scanner.Device {
	var deadline <-chan time.Time
	if max > 0 {
		t := time.NewTimer(max)
		defer t.Stop()
		deadline = t.C
	}

	var quietC <-chan time.Time
	var quietTimer *time.Timer
	resetQuiet := func() {
		if quiet <= 0 || r.Len() == 0 {
			return
		}
		if quietTimer == nil {
			quietTimer = time.NewTimer(quiet)
		} else {
			quietTimer.Reset(quiet)
		}
		quietC = quietTimer.C
	}
	defer func() {
		if quietTimer != nil {
			quietTimer.Stop()
		}
	}()

	resetQuiet()
	for {
		select {
		case <-r.complete:
			return r.List()
		case <-r.changed:
			resetQuiet()
		case <-quietC:
			return r.List()
		case <-deadline:
			return r.List()
		case <-ctx.Done():
			return r.List()
		}
	}
}

// Watch feeds devices from the given channels into the registry until ctx
// is done or both channels are closed.
func (r *Registry) Watch(ctx context.Context, added <-chan scanner.Device, removed <-chan string) {
	for added != nil || removed != nil {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-added:
			if !ok {
				added = nil
				continue
			}
			r.Add(d)
		case id, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			r.Remove(id)
		}
	}
}
