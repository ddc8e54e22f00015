package escl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/time/rate"

	"github.com/docscan/docscan-go/pkg/scanner"
	"github.com/docscan/docscan-go/pkg/transfer"
	"github.com/docscan/docscan-go/pkg/version"
)

var (
	// ErrFeederEmpty is reported when a feeder job produces no pages.
	ErrFeederEmpty = errors.New("escl: document feeder is empty")

	// ErrNotOpen is returned by operations that need an open session.
	ErrNotOpen = errors.New("escl: session not open")
)

// SessionConfig configures a Session.
type SessionConfig struct {
	// FS receives downloaded documents. Required.
	FS billy.Filesystem

	// PollInterval spaces NextDocument requests while the device is busy.
	// Zero means DefaultPollInterval.
	PollInterval time.Duration

	// BusyRetries bounds consecutive busy answers. Zero means DefaultBusyRetries.
	BusyRetries int

	// Logger for operational messages. Nil disables.
	Logger *slog.Logger
}

// Session implements scanner.Session over a Client.
type Session struct {
	client  *Client
	fs      billy.Filesystem
	limiter *rate.Limiter
	retries int
	logger  *slog.Logger

	mu      sync.Mutex
	notify  scanner.Notifier
	caps    *ScannerCapabilities
	version version.SpecVersion
	cfg     *scanner.ResolvedConfiguration
	jobURL  string
	jobDone bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Compile-time interface satisfaction check.
var _ scanner.Session = (*Session)(nil)

// NewSession creates a session that talks through client.
func NewSession(client *Client, cfg SessionConfig) *Session {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	retries := cfg.BusyRetries
	if retries <= 0 {
		retries = DefaultBusyRetries
	}
	return &Session{
		client:  client,
		fs:      cfg.FS,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		retries: retries,
		logger:  cfg.Logger,
	}
}

// Open implements scanner.Session. It reads the device capabilities in the
// background and reports the outcome with OpenCompleted.
func (s *Session) Open(ctx context.Context, dev scanner.Device, notify scanner.Notifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("escl: session closed")
	}
	if s.fs == nil {
		return fmt.Errorf("escl: no filesystem configured")
	}
	s.notify = notify
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.goAsync(func(ctx context.Context) {
		s.emit(scanner.OpenCompleted{Err: s.open(ctx, dev)})
	})
	return nil
}

func (s *Session) open(ctx context.Context, dev scanner.Device) error {
	if st, err := s.client.Status(ctx); err == nil {
		if st.State == "Stopped" || st.State == "Down" {
			return fmt.Errorf("escl: %s reports state %s", dev.Name, st.State)
		}
	} else if s.logger != nil {
		s.logger.Debug("escl: status unavailable", "device", dev.Name, "error", err)
	}

	caps, err := s.client.Capabilities(ctx)
	if err != nil {
		return err
	}

	v := version.MustParse(version.Current)
	if caps.Version != "" {
		nv, err := version.Negotiate(caps.Version)
		if err != nil {
			return err
		}
		v = nv
	}

	s.mu.Lock()
	s.caps = caps
	s.version = v
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Debug("escl: session open", "device", dev.Name, "model", caps.MakeAndModel, "version", v)
	}
	return nil
}

// Capabilities implements scanner.Session.
func (s *Session) Capabilities() (scanner.Capabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caps == nil {
		return scanner.Capabilities{}, ErrNotOpen
	}
	return s.caps.Capabilities(), nil
}

// Configure implements scanner.Session. The settings are sent with the
// scan request.
func (s *Session) Configure(ctx context.Context, cfg scanner.ResolvedConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caps == nil {
		return ErrNotOpen
	}
	if formats := s.caps.Formats(); len(formats) > 0 {
		want := cfg.Format.MIMEType()
		found := false
		for _, f := range formats {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("escl: device does not offer %s (offers %v)", want, formats)
		}
	}
	if err := s.fs.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("escl: download directory: %w", err)
	}
	s.cfg = &cfg
	return nil
}

// Settings builds the eSCL job settings for cfg.
func Settings(cfg scanner.ResolvedConfiguration, v version.SpecVersion) (*ScanSettings, error) {
	region := Region{Units: "escl:ThreeHundredthsOfInches"}
	input := InputPlaten

	if cfg.UseFeeder {
		input = InputFeeder
		short, long, ok := cfg.DocumentSize.Dimensions()
		if !ok {
			return nil, fmt.Errorf("escl: unknown document size %s", cfg.DocumentSize)
		}
		region.Width = toUnits(short)
		region.Height = toUnits(long)
	} else {
		if cfg.Area == nil {
			return nil, fmt.Errorf("escl: platen scan without area")
		}
		// Area is already in device units.
		region.XOffset = int(math.Round(cfg.Area.X))
		region.YOffset = int(math.Round(cfg.Area.Y))
		region.Width = int(math.Round(cfg.Area.Width))
		region.Height = int(math.Round(cfg.Area.Height))
	}

	mime := cfg.Format.MIMEType()
	return &ScanSettings{
		Version:           v.String(),
		Regions:           []Region{region},
		InputSource:       input,
		ColorMode:         ColorModeFor(cfg.PixelType),
		XResolution:       cfg.Resolution,
		YResolution:       cfg.Resolution,
		DocumentFormat:    mime,
		DocumentFormatExt: mime,
		Intent:            "Document",
	}, nil
}

func toUnits(mm float64) int {
	return int(math.Round(mm * UnitsPerInch / scanner.MillimetresPerInch))
}

// RequestScan implements scanner.Session. Documents are fetched in the
// background, each reported with FileTransferred, then ScanCompleted.
func (s *Session) RequestScan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil || s.caps == nil {
		return ErrNotOpen
	}
	settings, err := Settings(*s.cfg, s.version)
	if err != nil {
		return err
	}
	cfg := *s.cfg

	s.goAsync(func(ctx context.Context) {
		s.emit(scanner.ScanCompleted{Err: s.scan(ctx, settings, cfg)})
	})
	return nil
}

func (s *Session) scan(ctx context.Context, settings *ScanSettings, cfg scanner.ResolvedConfiguration) error {
	var jobURL string
	err := s.whileBusy(ctx, func() error {
		var err error
		jobURL, err = s.client.CreateJob(ctx, settings)
		return err
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobURL = jobURL
	s.mu.Unlock()

	cfg.DocumentName = transfer.FreeName(s.fs, cfg.DownloadDir, documentName(cfg), cfg.Format.Extension())
	page := 0
	for {
		var doc *Document
		err := s.whileBusy(ctx, func() error {
			var err error
			doc, err = s.client.NextDocument(ctx, jobURL)
			return err
		})
		if errors.Is(err, ErrNoMoreDocuments) {
			break
		}
		if err != nil {
			return err
		}

		page++
		path, err := s.save(doc, cfg, page)
		if err != nil {
			return err
		}
		if !s.emit(scanner.FileTransferred{Path: path}) {
			return ctx.Err()
		}
		if !cfg.UseFeeder {
			break
		}
	}

	s.mu.Lock()
	s.jobDone = true
	s.mu.Unlock()

	if page == 0 {
		if cfg.UseFeeder {
			return ErrFeederEmpty
		}
		return fmt.Errorf("escl: job finished without a document")
	}
	return nil
}

// whileBusy calls fn until it returns something other than ErrBusy,
// pacing attempts with the session limiter.
func (s *Session) whileBusy(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn()
		if !errors.Is(err, ErrBusy) {
			return err
		}
		if attempt >= s.retries {
			return err
		}
	}
}

func (s *Session) save(doc *Document, cfg scanner.ResolvedConfiguration, page int) (string, error) {
	defer doc.Body.Close()

	name := documentName(cfg)
	if page > 1 {
		name = fmt.Sprintf("%s-%d", name, page)
	}
	path := filepath.Join(cfg.DownloadDir, name+cfg.Format.Extension())

	f, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("escl: create %q: %w", path, err)
	}
	if _, err := io.Copy(f, doc.Body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("escl: write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("escl: close %q: %w", path, err)
	}
	return path, nil
}

func documentName(cfg scanner.ResolvedConfiguration) string {
	if cfg.DocumentName == "" {
		return scanner.DefaultDocumentName
	}
	return cfg.DocumentName
}

// Close implements scanner.Session. An unfinished job is cancelled on the
// device.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	jobURL, done := s.jobURL, s.jobDone
	s.mu.Unlock()
	if jobURL == "" || done {
		return nil
	}

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := s.client.DeleteJob(ctx, jobURL); err != nil {
		return fmt.Errorf("escl: cancel job: %w", err)
	}
	return nil
}

// goAsync runs fn with the session context. Caller holds s.mu.
func (s *Session) goAsync(fn func(ctx context.Context)) {
	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// emit delivers ev unless the session was closed.
func (s *Session) emit(ev scanner.Event) bool {
	s.mu.Lock()
	closed, notify := s.closed, s.notify
	s.mu.Unlock()
	if closed || notify == nil {
		return false
	}
	notify(ev)
	return true
}
