package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docscan/docscan-go/pkg/config"
	"github.com/docscan/docscan-go/pkg/discovery"
	"github.com/docscan/docscan-go/pkg/escl"
	"github.com/docscan/docscan-go/pkg/log"
	"github.com/docscan/docscan-go/pkg/metrics"
	"github.com/docscan/docscan-go/pkg/registry"
	"github.com/docscan/docscan-go/pkg/scanner"
	"github.com/docscan/docscan-go/pkg/session"
	"github.com/docscan/docscan-go/pkg/simulator"
	"github.com/docscan/docscan-go/pkg/transfer"
)

// appOptions selects the device source and I/O.
type appOptions struct {
	// Simulate uses the built-in simulated scanners.
	Simulate bool

	// DeviceURL bypasses discovery.
	DeviceURL string

	// Continuous keeps browsing after the initial settle window.
	Continuous bool

	Out    io.Writer
	Logger *slog.Logger

	// Store overrides the native filesystem store.
	Store *transfer.Store

	// Fleet overrides the default simulated fleet.
	Fleet *simulator.Fleet
}

// App wires discovery, sessions and reporting for one docscan run.
type App struct {
	cfg    config.Config
	opts   appOptions
	logger *slog.Logger

	mu  sync.Mutex
	out io.Writer

	registry *registry.Registry
	store    *transfer.Store
	factory  scanner.SessionFactory
	fleet    *simulator.Fleet
	browser  *discovery.MDNSBrowser

	eventLog log.Logger
	fileLog  *log.FileLogger
	metrics  *metrics.Recorder

	settleOnce sync.Once
}

func newApp(cfg config.Config, opts appOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	a := &App{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		out:      out,
		registry: registry.New(),
		store:    opts.Store,
	}
	a.registry.SetLogger(logger)
	if a.store == nil {
		a.store = transfer.NewNative()
	}
	a.store.SetLogger(logger)

	loggers := []log.Logger{log.NewSlogAdapter(logger)}
	if cfg.EventLog != "" {
		fl, err := log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return nil, fmt.Errorf("event log: %w", err)
		}
		a.fileLog = fl
		loggers = append(loggers, fl)
	}
	a.eventLog = log.NewMultiLogger(loggers...)

	if cfg.MetricsTextfile != "" {
		a.metrics = metrics.New()
	}

	if opts.Simulate {
		a.fleet = opts.Fleet
		if a.fleet == nil {
			a.fleet = simulator.NewFleet(a.store.Filesystem(), simulator.DefaultProfiles()...)
		}
		a.factory = a.fleet.NewSession
	} else {
		a.factory = a.esclSession
	}
	return a, nil
}

// SetOutput redirects status lines.
func (a *App) SetOutput(w io.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.out = w
}

func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// StartDiscovery begins feeding the registry.
func (a *App) StartDiscovery(ctx context.Context) error {
	switch {
	case a.opts.Simulate:
		a.fleet.Publish(a.registry)
		return nil

	case a.opts.DeviceURL != "":
		dev, err := deviceFromURL(a.opts.DeviceURL, a.cfg.Device)
		if err != nil {
			return err
		}
		a.registry.Add(dev)
		a.registry.MarkComplete()
		return nil
	}

	bcfg := discovery.DefaultBrowserConfig()
	bcfg.Interface = a.cfg.Discovery.Interface
	bcfg.Logger = a.logger
	bcfg.EventLog = a.eventLog
	bcfg.BrowseTimeout = a.cfg.Discovery.Settle
	if a.opts.Continuous {
		bcfg.BrowseTimeout = 0
	}
	browser, err := discovery.NewMDNSBrowser(bcfg)
	if err != nil {
		return err
	}
	a.browser = browser

	added, removed, err := browser.Browse(ctx)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	go func() {
		a.registry.Watch(ctx, added, removed)
		a.registry.MarkComplete()
	}()
	return nil
}

// deviceFromURL describes a scanner given by its eSCL base URL.
func deviceFromURL(raw, name string) (scanner.Device, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return scanner.Device{}, fmt.Errorf("invalid device URL %q", raw)
	}
	if name == "" {
		name = u.Hostname()
	}
	return scanner.Device{
		ID:           raw,
		Name:         name,
		Locator:      raw,
		Capabilities: scanner.Capabilities{UnitsPerInch: escl.UnitsPerInch},
	}, nil
}

// Devices returns the known scanners. The first call waits for discovery
// to settle.
func (a *App) Devices(ctx context.Context) []scanner.Device {
	a.settleOnce.Do(func() {
		a.registry.WaitSettled(ctx, a.cfg.Discovery.Quiet, a.cfg.Discovery.Settle)
	})
	return a.registry.List()
}

// List prints the known scanners.
func (a *App) List(ctx context.Context) {
	devices := a.Devices(ctx)
	if len(devices) == 0 {
		a.printf("No scanners available.\n")
		return
	}
	a.printf("Available scanners:\n")
	for i, d := range devices {
		a.printf("%d: %s\n", i, d.Name)
	}
}

// ScanOnce runs a single scan with an optional overall deadline.
func (a *App) ScanOnce(ctx context.Context, req scanner.ScanRequest, timeout time.Duration) session.Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return a.Scan(ctx, req)
}

// Scan selects a device and runs one session for req.
func (a *App) Scan(ctx context.Context, req scanner.ScanRequest) session.Result {
	if len(a.Devices(ctx)) == 0 {
		a.printf("No scanners found.\n")
		return a.record(session.Result{State: session.StateFailed, Err: scanner.ErrDiscoveryEmpty})
	}

	sel, err := a.registry.Select(req.DeviceName)
	if err != nil {
		return a.report(session.Result{State: session.StateFailed, Err: err})
	}
	dev := sel.Device
	if sel.Fallback {
		a.logger.Warn("scanner not found, using first available", "requested", req.DeviceName, "using", dev.Name)
	}
	a.printf("Selected scanner: %s\n", dev.Name)

	id := uuid.NewString()
	sess, err := a.factory(dev, id)
	if err != nil {
		return a.report(session.Result{
			SessionID: id,
			State:     session.StateFailed,
			Device:    dev,
			Err:       fmt.Errorf("%w: %w", scanner.ErrSessionOpen, err),
		})
	}

	m := session.New(session.Config{
		Session:   sess,
		Storage:   a.store,
		Logger:    a.logger,
		EventLog:  a.eventLog,
		SessionID: id,
	})
	return a.report(m.Run(ctx, dev, req))
}

func (a *App) report(res session.Result) session.Result {
	switch {
	case res.OK() && res.DirMode:
		a.printf("Scan successfully saved to: %s\n", res.Destination)
		for _, f := range res.Files {
			a.printf("  %s\n", f)
		}
	case res.OK():
		for _, f := range res.Files {
			a.printf("Scan successfully saved to: %s\n", f)
		}
	default:
		a.printf("Scan failed: %s: %v\n", scanner.Kind(res.Err), res.Err)
	}
	return a.record(res)
}

func (a *App) record(res session.Result) session.Result {
	if a.metrics != nil {
		pages := 0
		if res.OK() {
			pages = len(res.Files)
		}
		a.metrics.Observe(res.Err, pages, res.Duration, time.Now())
	}
	return res
}

func (a *App) esclSession(dev scanner.Device, sessionID string) (scanner.Session, error) {
	client, err := escl.NewClient(dev.Locator, escl.ClientConfig{
		Timeout:   a.cfg.ESCL.Timeout,
		Insecure:  a.cfg.ESCL.Insecure,
		Logger:    a.logger,
		EventLog:  a.eventLog,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}
	return escl.NewSession(client, escl.SessionConfig{
		FS:           a.store.Filesystem(),
		PollInterval: a.cfg.ESCL.PollInterval,
		Logger:       a.logger,
	}), nil
}

// Close stops discovery and flushes the event log and metrics.
func (a *App) Close() {
	if a.browser != nil {
		a.browser.Stop()
	}
	if a.fileLog != nil {
		if n := a.fileLog.Dropped(); n > 0 {
			a.logger.Warn("event log dropped events", "count", n)
		}
		if err := a.fileLog.Close(); err != nil {
			a.logger.Warn("closing event log", "error", err)
		}
	}
	if a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.logger.Warn("writing metrics", "error", err)
		}
	}
}
