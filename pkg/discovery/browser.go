package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/docscan/docscan-go/pkg/log"
	"github.com/docscan/docscan-go/pkg/scanner"
)

// Browser provides scanner browsing.
type Browser interface {
	// Browse searches for scanners. Devices are sent on added when first
	// seen and their IDs on removed when they disappear. Both channels are
	// closed when the context is cancelled or the browse timeout expires.
	Browse(ctx context.Context) (added <-chan scanner.Device, removed <-chan string, err error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds a Browse call. Zero browses until the context
	// is cancelled.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Secure also browses _uscans._tcp.
	Secure bool

	// Logger for operational messages. Nil disables.
	Logger *slog.Logger

	// EventLog receives DISCOVERY events. Nil disables.
	EventLog log.Logger
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Secure:        true,
	}
}

// tracker aggregates resolved entries into devices. Not safe for
// concurrent use.
type tracker struct {
	// services holds the record each device was first reported under.
	services map[string]*ScannerService

	// byKey maps every announced instance and service type to its device.
	byKey map[string]string

	// addrs holds the live addresses per instance and service type.
	addrs map[string][]string
}

func newTracker() *tracker {
	return &tracker{
		services: make(map[string]*ScannerService),
		byKey:    make(map[string]string),
		addrs:    make(map[string][]string),
	}
}

func entryKey(instance string, secure bool) string {
	if secure {
		return "s:" + instance
	}
	return "p:" + instance
}

// add merges entry and returns the device when it is new. A scanner
// advertising both service types is reported once, under the type seen
// first, and stays known while either type is announced.
func (t *tracker) add(entry *ServiceEntry, secure bool) (scanner.Device, bool, error) {
	svc, err := entry.ToScannerService(secure)
	if err != nil {
		return scanner.Device{}, false, err
	}
	id := svc.ID()
	key := entryKey(svc.InstanceName, secure)

	if existing, found := t.services[id]; found {
		t.byKey[key] = id
		t.addrs[key] = mergeAddresses(t.addrs[key], svc.Addresses)
		if existing.Secure == secure && existing.InstanceName == svc.InstanceName {
			existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
		}
		return scanner.Device{}, false, nil
	}

	dev, err := svc.Device()
	if err != nil {
		return scanner.Device{}, false, err
	}
	t.services[id] = svc
	t.byKey[key] = id
	t.addrs[key] = mergeAddresses(nil, svc.Addresses)
	return dev, true, nil
}

// remove drops the entry's addresses and returns the device ID once no
// address of any announced service type remains. An entry without
// addresses withdraws its service type entirely.
func (t *tracker) remove(entry *ServiceEntry, secure bool) (string, bool) {
	key := entryKey(entry.Instance, secure)
	id, found := t.byKey[key]
	if !found {
		return "", false
	}

	left := removeAddresses(t.addrs[key], entry.Addrs)
	if len(entry.Addrs) == 0 {
		left = nil
	}
	svc := t.services[id]
	if svc.Secure == secure && svc.InstanceName == entry.Instance {
		svc.Addresses = left
	}
	if len(left) > 0 {
		t.addrs[key] = left
		return "", false
	}
	delete(t.byKey, key)
	delete(t.addrs, key)

	for _, other := range t.byKey {
		if other == id {
			return "", false
		}
	}
	delete(t.services, id)
	return id, true
}

// mergeAddresses combines two address lists, removing duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	result := existing
	for _, addr := range added {
		if !seen[addr] {
			result = append(result, addr)
			seen[addr] = true
		}
	}
	return result
}

// removeAddresses filters out the given addresses.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, a := range gone {
		toRemove[a] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
