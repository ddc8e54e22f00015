package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/docscan/docscan-go/pkg/scanner"
	"github.com/docscan/docscan-go/pkg/transfer"
)

// maxSide caps generated images so simulated scans stay cheap.
const maxSide = 256

// ErrClosed is returned by operations on a closed simulator session.
var ErrClosed = errors.New("simulator: session closed")

// Profile describes how a simulated device behaves.
type Profile struct {
	Device scanner.Device

	// Pages is the number of documents a feeder scan produces. Platen
	// scans always produce one. Zero means one.
	Pages int

	// OpenErr is reported in OpenCompleted.
	OpenErr error

	// ScanErr is reported in ScanCompleted after the pages are delivered.
	ScanErr error

	// ConfigureErr is returned from Configure.
	ConfigureErr error

	// Delay is applied before each asynchronous notification.
	Delay time.Duration

	// SessionCapabilities, when set, replaces the discovery-time capabilities
	// once the session is open.
	SessionCapabilities *scanner.Capabilities
}

// Scanner is a simulated device session.
type Scanner struct {
	fs      billy.Filesystem
	profile Profile
	logger  *slog.Logger

	mu      sync.Mutex
	notify  scanner.Notifier
	cfg     *scanner.ResolvedConfiguration
	closed  bool
	closes  int
	written []string

	stop chan struct{}
	wg   sync.WaitGroup
}

// Compile-time interface satisfaction check.
var _ scanner.Session = (*Scanner)(nil)

// New creates a simulated session writing into fs.
func New(fs billy.Filesystem, p Profile) *Scanner {
	return &Scanner{
		fs:      fs,
		profile: p,
		stop:    make(chan struct{}),
	}
}

// SetLogger sets the logger.
func (s *Scanner) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Open implements scanner.Session.
func (s *Scanner) Open(ctx context.Context, dev scanner.Device, notify scanner.Notifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if notify == nil {
		return fmt.Errorf("simulator: nil notifier")
	}
	s.notify = notify

	s.async(func() {
		s.emit(scanner.OpenCompleted{Err: s.profile.OpenErr})
	})
	return nil
}

// Capabilities implements scanner.Session.
func (s *Scanner) Capabilities() (scanner.Capabilities, error) {
	if s.profile.SessionCapabilities != nil {
		return *s.profile.SessionCapabilities, nil
	}
	return s.profile.Device.Capabilities, nil
}

// Configure implements scanner.Session.
func (s *Scanner) Configure(ctx context.Context, cfg scanner.ResolvedConfiguration) error {
	if s.profile.ConfigureErr != nil {
		return s.profile.ConfigureErr
	}
	switch cfg.Format {
	case scanner.FormatJPEG, scanner.FormatPNG:
	default:
		return fmt.Errorf("simulator: unsupported document format %s", cfg.Format)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.cfg = &cfg
	return nil
}

// RequestScan implements scanner.Session.
func (s *Scanner) RequestScan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.cfg == nil {
		return fmt.Errorf("simulator: scan requested before configuration")
	}
	cfg := *s.cfg

	pages := 1
	if cfg.UseFeeder && s.profile.Pages > 1 {
		pages = s.profile.Pages
	}

	s.async(func() {
		name := cfg.DocumentName
		if name == "" {
			name = scanner.DefaultDocumentName
		}
		cfg.DocumentName = transfer.FreeName(s.fs, cfg.DownloadDir, name, cfg.Format.Extension())
		for i := 1; i <= pages; i++ {
			path, err := s.writePage(cfg, i)
			if err != nil {
				s.emit(scanner.ScanCompleted{Err: err})
				return
			}
			if !s.emit(scanner.FileTransferred{Path: path}) {
				return
			}
		}
		s.emit(scanner.ScanCompleted{Err: s.profile.ScanErr})
	})
	return nil
}

// Close implements scanner.Session. Pending notifications are abandoned.
func (s *Scanner) Close() error {
	s.mu.Lock()
	s.closes++
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// CloseCount returns how many times Close was called.
func (s *Scanner) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Written returns the paths of the documents written so far.
func (s *Scanner) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	copy(out, s.written)
	return out
}

// async runs fn on its own goroutine. Caller holds s.mu.
func (s *Scanner) async(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// emit delivers ev after the profile delay. It returns false if the
// session was closed first.
func (s *Scanner) emit(ev scanner.Event) bool {
	if s.profile.Delay > 0 {
		select {
		case <-time.After(s.profile.Delay):
		case <-s.stop:
			return false
		}
	}
	select {
	case <-s.stop:
		return false
	default:
	}
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Debug("simulator: notify", "device", s.profile.Device.Name, "event", fmt.Sprintf("%T", ev))
	}
	notify(ev)
	return true
}

func (s *Scanner) writePage(cfg scanner.ResolvedConfiguration, page int) (string, error) {
	name := cfg.DocumentName
	if name == "" {
		name = scanner.DefaultDocumentName
	}
	if page > 1 {
		name = fmt.Sprintf("%s-%d", name, page)
	}
	path := filepath.Join(cfg.DownloadDir, name+cfg.Format.Extension())

	data, err := render(cfg, page)
	if err != nil {
		return "", err
	}
	if err := util.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("simulator: write %q: %w", path, err)
	}

	s.mu.Lock()
	s.written = append(s.written, path)
	s.mu.Unlock()
	return path, nil
}

// render draws a gradient page sized from the configuration.
func render(cfg scanner.ResolvedConfiguration, page int) ([]byte, error) {
	w, h := pixelSize(cfg)
	bounds := image.Rect(0, 0, w, h)

	var img image.Image
	switch cfg.PixelType {
	case scanner.PixelTypeRGB:
		rgba := image.NewRGBA(bounds)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				rgba.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8(page * 40), A: 255})
			}
		}
		img = rgba
	default:
		gray := image.NewGray(bounds)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := uint8((x + y) * 255 / (w + h))
				if cfg.PixelType == scanner.PixelTypeBW {
					if v < 128 {
						v = 0
					} else {
						v = 255
					}
				}
				gray.SetGray(x, y, color.Gray{Y: v})
			}
		}
		img = gray
	}

	var buf bytes.Buffer
	var err error
	if cfg.Format == scanner.FormatPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75})
	}
	if err != nil {
		return nil, fmt.Errorf("simulator: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func pixelSize(cfg scanner.ResolvedConfiguration) (int, int) {
	w, h := 210.0, 297.0
	if cfg.Area != nil && cfg.Area.Width > 0 && cfg.Area.Height > 0 {
		// Area is in device units; only the aspect ratio matters here.
		w, h = cfg.Area.Width, cfg.Area.Height
	}
	scale := float64(maxSide) / max(w, h)
	pw, ph := int(w*scale), int(h*scale)
	return max(pw, 1), max(ph, 1)
}
