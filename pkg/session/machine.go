package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/docscan/docscan-go/pkg/capability"
	"github.com/docscan/docscan-go/pkg/log"
	"github.com/docscan/docscan-go/pkg/scanner"
	"github.com/docscan/docscan-go/pkg/transfer"
)

// scratchPrefix names the private download directories.
const scratchPrefix = "docscan-"

// Storage is the file access the machine needs. *transfer.Store satisfies it.
type Storage interface {
	IsDirDestination(dest string) bool
	EnsureDir(dir string) error
	ScratchDir(prefix string) (string, error)
	Move(src, dst string) (int64, error)
	RemoveAll(path string) error
	Sniff(path string) (string, error)
}

// Compile-time interface satisfaction check.
var _ Storage = (*transfer.Store)(nil)

// Config configures a Machine.
type Config struct {
	// Session is the device session to drive. Required.
	Session scanner.Session

	// Storage performs file operations. Required.
	Storage Storage

	// Logger for operational messages. Nil disables.
	Logger *slog.Logger

	// EventLog receives the structured trace. Nil disables.
	EventLog log.Logger

	// SessionID correlates trace events. Generated if empty.
	SessionID string

	// OnStateChange is called on the Run goroutine after every transition.
	OnStateChange func(from, to State)
}

// Result describes how a run ended.
type Result struct {
	SessionID string
	State     State
	Device    scanner.Device

	// Destination is the output file or directory.
	Destination string

	// DirMode is set when Destination is a directory the device wrote into.
	DirMode bool

	// Files are the final paths of all delivered documents, in order.
	Files []string

	// MIMEType is the detected type of the first document.
	MIMEType string

	// Config is the configuration applied to the device, if resolution
	// got that far.
	Config *scanner.ResolvedConfiguration

	// Err is set when State is StateFailed.
	Err error

	Duration time.Duration
}

// OK reports whether the run completed successfully.
func (r Result) OK() bool {
	return r.State == StateCompleted
}

// Machine runs one scan session.
type Machine struct {
	session  scanner.Session
	storage  Storage
	logger   *slog.Logger
	eventLog log.Logger
	onChange func(from, to State)
	id       string

	started atomic.Bool
	state   atomic.Uint32
	box     *mailbox

	// Owned by the Run goroutine.
	dev         scanner.Device
	req         scanner.ScanRequest
	dirMode     bool
	downloadDir string
	scratch     string
	opened      bool
	cfg         *scanner.ResolvedConfiguration
	files       []string
	mime        string
	err         error

	closeOnce sync.Once
}

// New creates a machine in StateIdle.
func New(cfg Config) *Machine {
	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	eventLog := cfg.EventLog
	if eventLog == nil {
		eventLog = log.NoopLogger{}
	}
	return &Machine{
		session:  cfg.Session,
		storage:  cfg.Storage,
		logger:   cfg.Logger,
		eventLog: eventLog,
		onChange: cfg.OnStateChange,
		id:       id,
		box:      newMailbox(),
	}
}

// ID returns the session ID.
func (m *Machine) ID() string {
	return m.id
}

// State returns the current state. Safe to call from any goroutine.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// Run performs the scan described by req on dev and blocks until a
// terminal state is reached or ctx is done. It may be called only once.
func (m *Machine) Run(ctx context.Context, dev scanner.Device, req scanner.ScanRequest) Result {
	if !m.started.CompareAndSwap(false, true) {
		return Result{SessionID: m.id, State: m.State(), Device: dev, Err: scanner.ErrSessionUsed}
	}
	start := time.Now()
	m.dev = dev
	m.req = req

	m.start(ctx)
	if !m.State().Terminal() {
		m.loop(ctx)
	}
	m.finish()

	res := Result{
		SessionID: m.id,
		State:     m.State(),
		Device:    dev,
		Files:     m.files,
		MIMEType:  m.mime,
		Config:    m.cfg,
		Err:       m.err,
		Duration:  time.Since(start),
		DirMode:   m.dirMode,
	}
	switch {
	case m.dirMode:
		res.Destination = req.Destination
	case len(m.files) > 0:
		res.Destination = m.files[0]
	default:
		res.Destination = req.Destination
	}
	return res
}

func (m *Machine) start(ctx context.Context) {
	if m.session == nil || m.storage == nil {
		m.fail(fmt.Errorf("%w: session machine missing collaborator", scanner.ErrConfiguration), "start")
		return
	}

	m.transition(StateOpening, "")
	m.dirMode = m.storage.IsDirDestination(m.req.Destination)
	if m.dirMode {
		if err := m.storage.EnsureDir(m.req.Destination); err != nil {
			m.fail(fmt.Errorf("%w: %w", scanner.ErrConfiguration, err), "prepare destination")
			return
		}
		m.downloadDir = m.req.Destination
	} else {
		dir, err := m.storage.ScratchDir(scratchPrefix)
		if err != nil {
			m.fail(fmt.Errorf("%w: %w", scanner.ErrTransfer, err), "prepare scratch directory")
			return
		}
		m.scratch = dir
		m.downloadDir = dir
	}

	if err := m.session.Open(ctx, m.dev, m.box.post); err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrSessionOpen, err), "open")
		return
	}
	m.opened = true
}

func (m *Machine) loop(ctx context.Context) {
	for {
		select {
		case <-m.box.ready:
			for _, ev := range m.box.drain() {
				m.handle(ctx, ev)
				if m.State().Terminal() {
					return
				}
			}
		case <-ctx.Done():
			err := ctx.Err()
			if errors.Is(err, context.DeadlineExceeded) {
				m.fail(fmt.Errorf("%w: %w", scanner.ErrTimeout, err), m.State().String())
			} else {
				m.fail(fmt.Errorf("%w: cancelled: %w", scanner.ErrScan, err), m.State().String())
			}
			return
		}
	}
}

func (m *Machine) handle(ctx context.Context, ev scanner.Event) {
	switch e := ev.(type) {
	case scanner.OpenCompleted:
		m.onOpenCompleted(ctx, e)
	case scanner.FileTransferred:
		m.onFileTransferred(e)
	case scanner.ScanCompleted:
		m.onScanCompleted(e)
	default:
		m.debug("session: unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

func (m *Machine) onOpenCompleted(ctx context.Context, e scanner.OpenCompleted) {
	if m.State() != StateOpening {
		m.debug("session: ignoring open completion", "state", m.State())
		return
	}
	if e.Err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrSessionOpen, e.Err), "open")
		return
	}

	m.transition(StateConfiguring, "")
	caps, err := m.session.Capabilities()
	if err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrCapability, err), "read capabilities")
		return
	}

	cfg, err := capability.Resolve(m.req, caps, m.downloadDir)
	if err != nil {
		m.fail(err, "resolve configuration")
		return
	}
	if !caps.SupportsPixelType(cfg.PixelType) && m.logger != nil {
		m.logger.Warn("session: device does not advertise pixel type", "pixel_type", cfg.PixelType, "device", m.dev.Name)
	}
	m.cfg = &cfg
	m.logConfig(cfg)

	if err := m.session.Configure(ctx, cfg); err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrConfiguration, err), "configure")
		return
	}

	m.transition(StateScanning, "")
	if err := m.session.RequestScan(ctx); err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrScan, err), "request scan")
	}
}

func (m *Machine) onFileTransferred(e scanner.FileTransferred) {
	state := m.State()
	if state != StateScanning && state != StateTransferring {
		m.debug("session: ignoring file notification", "state", state, "path", e.Path)
		return
	}
	if state == StateScanning {
		m.transition(StateTransferring, "")
	}
	page := len(m.files) + 1

	if m.dirMode {
		m.files = append(m.files, e.Path)
		m.recordTransfer(page, e.Path, e.Path, 0)
		return
	}

	if m.req.Destination == "" {
		m.fail(fmt.Errorf("%w: no destination set", scanner.ErrConfiguration), "transfer")
		return
	}

	dst := transfer.PagePath(m.req.Destination, page)
	n, err := m.storage.Move(e.Path, dst)
	if err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrTransfer, err), "transfer")
		return
	}
	m.files = append(m.files, dst)
	m.recordTransfer(page, e.Path, dst, n)
}

func (m *Machine) onScanCompleted(e scanner.ScanCompleted) {
	state := m.State()
	if e.Err != nil {
		m.fail(fmt.Errorf("%w: %w", scanner.ErrScan, e.Err), "scan")
		return
	}
	if state != StateScanning && state != StateTransferring {
		m.debug("session: ignoring scan completion", "state", state)
		return
	}
	if !m.dirMode && len(m.files) == 0 {
		m.fail(fmt.Errorf("%w: scan completed without producing a document", scanner.ErrTransfer), "scan")
		return
	}
	m.transition(StateCompleted, "")
}

// finish releases everything acquired by start. Runs exactly once.
func (m *Machine) finish() {
	m.closeOnce.Do(func() {
		if dropped := m.box.close(); dropped > 0 {
			m.debug("session: discarded events after terminal state", "count", dropped)
		}
		if m.opened {
			if err := m.session.Close(); err != nil && m.logger != nil {
				m.logger.Warn("session: close failed", "device", m.dev.Name, "error", err)
			}
		}
		if m.scratch != "" {
			if err := m.storage.RemoveAll(m.scratch); err != nil {
				m.debug("session: scratch cleanup failed", "dir", m.scratch, "error", err)
			}
		}
	})
}

func (m *Machine) fail(err error, op string) {
	if m.State().Terminal() {
		return
	}
	m.err = err
	m.eventLog.Log(m.event(log.CategoryError, log.Event{
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: err.Error(),
			Kind:    scanner.Kind(err),
			Context: op,
		},
	}))
	m.transition(StateFailed, err.Error())
}

func (m *Machine) transition(to State, reason string) {
	from := m.State()
	m.state.Store(uint32(to))

	m.debug("session: state change", "from", from, "to", to, "device", m.dev.Name)
	m.eventLog.Log(m.event(log.CategoryState, log.Event{
		StateChange: &log.StateChangeEvent{
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	}))
	if m.onChange != nil {
		m.onChange(from, to)
	}
}

func (m *Machine) recordTransfer(page int, src, dst string, n int64) {
	mime, err := m.storage.Sniff(dst)
	if err != nil {
		m.debug("session: mime detection failed", "path", dst, "error", err)
	}
	if m.mime == "" {
		m.mime = mime
	}
	m.debug("session: document delivered", "page", page, "path", dst, "bytes", n, "mime", mime)
	m.eventLog.Log(m.event(log.CategoryTransfer, log.Event{
		Transfer: &log.TransferEvent{
			Page:        page,
			Source:      src,
			Destination: dst,
			Bytes:       n,
			MIMEType:    mime,
		},
	}))
}

func (m *Machine) logConfig(cfg scanner.ResolvedConfiguration) {
	ev := &log.ConfigEvent{
		Resolution:  cfg.Resolution,
		PixelType:   cfg.PixelType.String(),
		BitDepth:    uint8(cfg.BitDepth),
		Format:      cfg.Format.String(),
		UseFeeder:   cfg.UseFeeder,
		DownloadDir: cfg.DownloadDir,
	}
	if cfg.UseFeeder {
		ev.DocumentSize = cfg.DocumentSize.String()
	}
	if cfg.Area != nil {
		ev.Area = []float64{cfg.Area.X, cfg.Area.Y, cfg.Area.Width, cfg.Area.Height}
	}
	m.eventLog.Log(m.event(log.CategoryConfig, log.Event{Config: ev}))
}

// event fills the common fields of a trace event.
func (m *Machine) event(c log.Category, e log.Event) log.Event {
	e.Timestamp = time.Now()
	e.SessionID = m.id
	e.Layer = log.LayerSession
	e.Category = c
	e.DeviceID = m.dev.ID
	e.DeviceName = m.dev.Name
	return e
}

func (m *Machine) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
