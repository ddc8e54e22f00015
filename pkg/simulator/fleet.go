package simulator

import (
	"fmt"
	"sync"

	"github.com/go-git/go-billy/v5"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// Sink receives published devices. *registry.Registry satisfies it.
type Sink interface {
	Add(dev scanner.Device)
	MarkComplete()
}

// Fleet is a set of simulated devices sharing one filesystem.
type Fleet struct {
	fs       billy.Filesystem
	profiles []Profile

	mu       sync.Mutex
	sessions []*Scanner
}

// NewFleet creates a fleet from profiles, in discovery order.
func NewFleet(fs billy.Filesystem, profiles ...Profile) *Fleet {
	return &Fleet{fs: fs, profiles: profiles}
}

// DefaultProfiles returns a platen-only and a feeder device.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Device: scanner.Device{
				ID:   "sim-canon-1",
				Name: "Canon1",
				Capabilities: scanner.Capabilities{
					Resolutions:  []int{75, 150, 300, 600},
					PixelTypes:   []scanner.PixelType{scanner.PixelTypeRGB, scanner.PixelTypeGray, scanner.PixelTypeBW},
					BitDepths:    []scanner.BitDepth{scanner.BitDepth1, scanner.BitDepth8},
					UnitsPerInch: 72,
				},
			},
		},
		{
			Device: scanner.Device{
				ID:   "sim-epson-2",
				Name: "Epson2",
				Capabilities: scanner.Capabilities{
					Resolutions:  []int{100, 200, 300},
					HasFeeder:    true,
					PixelTypes:   []scanner.PixelType{scanner.PixelTypeRGB, scanner.PixelTypeGray},
					BitDepths:    []scanner.BitDepth{scanner.BitDepth8},
					UnitsPerInch: 300,
				},
			},
			Pages: 2,
		},
	}
}

// Devices returns the fleet's devices.
func (f *Fleet) Devices() []scanner.Device {
	out := make([]scanner.Device, len(f.profiles))
	for i, p := range f.profiles {
		out[i] = p.Device
	}
	return out
}

// Publish adds every device to sink and marks discovery complete.
func (f *Fleet) Publish(sink Sink) {
	for _, p := range f.profiles {
		sink.Add(p.Device)
	}
	sink.MarkComplete()
}

// NewSession returns a fresh simulated session for dev. It satisfies
// scanner.SessionFactory.
func (f *Fleet) NewSession(dev scanner.Device, _ string) (scanner.Session, error) {
	for _, p := range f.profiles {
		if p.Device.ID == dev.ID {
			s := New(f.fs, p)
			f.mu.Lock()
			f.sessions = append(f.sessions, s)
			f.mu.Unlock()
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not simulated", scanner.ErrDeviceNotFound, dev.Name)
}

// Sessions returns the sessions created so far.
func (f *Fleet) Sessions() []*Scanner {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Scanner, len(f.sessions))
	copy(out, f.sessions)
	return out
}
