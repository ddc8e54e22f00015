package discovery

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/docscan/docscan-go/pkg/log"
	"github.com/docscan/docscan-go/pkg/scanner"
)

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	if config.EventLog == nil {
		config.EventLog = log.NoopLogger{}
	}
	return &MDNSBrowser{config: config}, nil
}

type serviceType struct {
	service string
	secure  bool
}

// resolved is an entry tagged with where it came from.
type resolved struct {
	entry   *ServiceEntry
	secure  bool
	removed bool
}

// Browse implements Browser.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan scanner.Device, <-chan string, error) {
	var cancel context.CancelFunc
	if b.config.BrowseTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	in := make(chan resolved)
	types := []serviceType{{ServiceTypeESCL, false}}
	if b.config.Secure {
		types = append(types, serviceType{ServiceTypeESCLSecure, true})
	}

	opts := b.browserOptions()
	for _, st := range types {
		go b.browseType(ctx, st.service, st.secure, in, opts)
	}

	added, removed := b.aggregate(ctx, in)
	return added, removed, nil
}

// browseType runs one zeroconf browse and forwards its entries.
func (b *MDNSBrowser) browseType(ctx context.Context, service string, secure bool, in chan<- resolved, opts []zeroconf.ClientOption) {
	entries := make(chan *zeroconf.ServiceEntry)
	gone := make(chan *zeroconf.ServiceEntry)

	go func() {
		if err := zeroconf.Browse(ctx, service, Domain, entries, gone, opts...); err != nil && b.config.Logger != nil {
			b.config.Logger.Warn("discovery: browse failed", "service", service, "error", err)
		}
	}()

	for {
		var r resolved
		select {
		case e, ok := <-entries:
			if !ok {
				return
			}
			r = resolved{entry: fromZeroconf(e), secure: secure}
		case e, ok := <-gone:
			if !ok {
				gone = nil
				continue
			}
			r = resolved{entry: fromZeroconf(e), secure: secure, removed: true}
		case <-ctx.Done():
			return
		}
		select {
		case in <- r:
		case <-ctx.Done():
			return
		}
	}
}

// aggregate turns resolved entries into registry updates until ctx ends.
func (b *MDNSBrowser) aggregate(ctx context.Context, in <-chan resolved) (<-chan scanner.Device, <-chan string) {
	added := make(chan scanner.Device)
	removed := make(chan string)

	go func() {
		defer close(added)
		defer close(removed)

		t := newTracker()
		for {
			select {
			case r := <-in:
				if r.removed {
					id, ok := t.remove(r.entry, r.secure)
					if !ok {
						continue
					}
					b.trace(log.DiscoveryRemoved, r.entry.Instance, id, "")
					select {
					case removed <- id:
					case <-ctx.Done():
						return
					}
					continue
				}

				dev, isNew, err := t.add(r.entry, r.secure)
				if err != nil {
					if b.config.Logger != nil {
						b.config.Logger.Debug("discovery: ignoring service", "instance", r.entry.Instance, "error", err)
					}
					continue
				}
				if !isNew {
					continue
				}
				b.trace(log.DiscoveryAdded, dev.Name, dev.ID, dev.Locator)
				select {
				case added <- dev:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	return added, removed
}

func (b *MDNSBrowser) trace(action log.DiscoveryAction, name, id, locator string) {
	if b.config.Logger != nil {
		b.config.Logger.Debug("discovery: "+action.String(), "name", name, "id", id, "locator", locator)
	}
	b.config.EventLog.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerDiscovery,
		Category:  log.CategoryDiscovery,
		DeviceID:  id,
		Discovery: &log.DiscoveryEvent{Action: action, Name: name, Locator: locator},
	})
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else if b.config.Logger != nil {
			b.config.Logger.Warn("discovery: unknown interface, using all", "interface", b.config.Interface, "error", err)
		}
	}

	return opts
}

// fromZeroconf converts a zeroconf entry.
func fromZeroconf(entry *zeroconf.ServiceEntry) *ServiceEntry {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return &ServiceEntry{
		Instance: entry.Instance,
		Service:  entry.Service,
		Domain:   entry.Domain,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
