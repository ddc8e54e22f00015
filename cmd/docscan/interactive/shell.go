// Package interactive provides the interactive command-line interface
// for docscan.
package interactive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/docscan/docscan-go/pkg/capability"
	"github.com/docscan/docscan-go/pkg/scanner"
	"github.com/docscan/docscan-go/pkg/session"
)

// Backend runs scans on behalf of the shell.
type Backend interface {
	// Devices returns the known scanners.
	Devices(ctx context.Context) []scanner.Device

	// Scan runs one session and reports its outcome.
	Scan(ctx context.Context, req scanner.ScanRequest) session.Result
}

// Settings are the initial scan parameters.
type Settings struct {
	Device     string
	Mode       string
	Resolution int
	Geometry   scanner.Geometry

	// Format is empty to infer it from the output path.
	Format string
}

// Shell handles interactive mode for docscan.
type Shell struct {
	backend  Backend
	settings Settings
	rl       *readline.Instance
	out      io.Writer

	last *session.Result
}

// New creates a new interactive shell.
func New(backend Backend, settings Settings) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "docscan> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := newShell(backend, settings, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(backend Backend, settings Settings, out io.Writer) *Shell {
	if settings.Resolution <= 0 {
		settings.Resolution = capability.DefaultResolution
	}
	if settings.Geometry == (scanner.Geometry{}) {
		settings.Geometry = scanner.DefaultGeometry
	}
	return &Shell{backend: backend, settings: settings, out: out}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for status output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns true when the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "list", "ls":
		s.cmdList(ctx)

	case "use", "d":
		s.cmdUse(ctx, args)

	case "mode", "m":
		s.cmdMode(args)

	case "res", "r":
		s.cmdRes(args)

	case "area":
		s.cmdArea(args)

	case "format":
		s.cmdFormat(args)

	case "scan", "s":
		s.cmdScan(ctx, args)

	case "status":
		s.cmdStatus()

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
docscan Commands:
  Scanners:
    list                   - List available scanners
    use <name>             - Select a scanner by name

  Settings:
    mode <mode>            - Color mode: color, grayscale, lineart
    res <dpi>              - Resolution in DPI
    area <l> <t> <w> <h>   - Scan area in millimetres
    format <fmt>           - Document format: jpeg, png, pdf, tiff (or auto)

  Scanning:
    scan <output>          - Scan to a file or directory
    status                 - Show settings and the last result

  General:
    help                   - Show this help
    quit                   - Exit`)
}

func (s *Shell) cmdList(ctx context.Context) {
	devices := s.backend.Devices(ctx)
	if len(devices) == 0 {
		fmt.Fprintln(s.out, "No scanners available.")
		return
	}
	fmt.Fprintln(s.out, "Available scanners:")
	for i, d := range devices {
		marker := " "
		if d.Name == s.settings.Device {
			marker = "*"
		}
		feeder := ""
		if d.Capabilities.HasFeeder {
			feeder = " [feeder]"
		}
		fmt.Fprintf(s.out, "%s %d: %s%s\n", marker, i, d.Name, feeder)
	}
}

func (s *Shell) cmdUse(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: use <name>")
		return
	}
	name := strings.Join(args, " ")
	devices := s.backend.Devices(ctx)

	// Allow selecting by list index.
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(devices) {
		name = devices[i].Name
	}
	for _, d := range devices {
		if d.Name == name {
			s.settings.Device = name
			fmt.Fprintf(s.out, "Using scanner: %s\n", name)
			return
		}
	}
	fmt.Fprintf(s.out, "Unknown scanner: %s (type 'list' for scanners)\n", name)
}

func (s *Shell) cmdMode(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: mode <color|grayscale|lineart>")
		return
	}
	s.settings.Mode = args[0]
	fmt.Fprintf(s.out, "Color mode: %s\n", capability.ParseColorMode(args[0]))
}

func (s *Shell) cmdRes(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: res <dpi>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Fprintf(s.out, "Invalid resolution: %s\n", args[0])
		return
	}
	s.settings.Resolution = n
	fmt.Fprintf(s.out, "Resolution: %d dpi\n", n)
}

func (s *Shell) cmdArea(args []string) {
	if len(args) != 4 {
		fmt.Fprintln(s.out, "Usage: area <left> <top> <width> <height>")
		return
	}
	var v [4]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid number: %s\n", a)
			return
		}
		v[i] = f
	}
	if v[0] < 0 || v[1] < 0 || v[2] <= 0 || v[3] <= 0 {
		fmt.Fprintln(s.out, "Offsets must not be negative and size must be positive")
		return
	}
	s.settings.Geometry = scanner.Geometry{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}
	fmt.Fprintf(s.out, "Scan area: %s\n", formatGeometry(s.settings.Geometry))
}

func (s *Shell) cmdFormat(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: format <jpeg|png|pdf|tiff|auto>")
		return
	}
	if strings.EqualFold(args[0], "auto") {
		s.settings.Format = ""
		fmt.Fprintln(s.out, "Format: from output extension")
		return
	}
	f, err := scanner.ParseFormat(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.settings.Format = f.String()
	fmt.Fprintf(s.out, "Format: %s\n", f)
}

func (s *Shell) cmdScan(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: scan <output>")
		return
	}
	res := s.backend.Scan(ctx, s.request(args[0]))
	s.last = &res
}

// request builds a scan request for output from the current settings.
func (s *Shell) request(output string) scanner.ScanRequest {
	format := scanner.FormatJPEG
	if s.settings.Format != "" {
		if f, err := scanner.ParseFormat(s.settings.Format); err == nil {
			format = f
		}
	} else if f, err := scanner.ParseFormat(filepath.Ext(output)); err == nil {
		format = f
	}
	return scanner.ScanRequest{
		DeviceName:  s.settings.Device,
		ColorMode:   capability.ParseColorMode(s.settings.Mode),
		Resolution:  s.settings.Resolution,
		Destination: output,
		Geometry:    s.settings.Geometry,
		Format:      format,
	}
}

func (s *Shell) cmdStatus() {
	device := s.settings.Device
	if device == "" {
		device = "(first available)"
	}
	format := s.settings.Format
	if format == "" {
		format = "auto"
	}
	fmt.Fprintln(s.out, "Settings:")
	fmt.Fprintf(s.out, "  Scanner:    %s\n", device)
	fmt.Fprintf(s.out, "  Mode:       %s\n", capability.ParseColorMode(s.settings.Mode))
	fmt.Fprintf(s.out, "  Resolution: %d dpi\n", s.settings.Resolution)
	fmt.Fprintf(s.out, "  Area:       %s\n", formatGeometry(s.settings.Geometry))
	fmt.Fprintf(s.out, "  Format:     %s\n", format)

	if s.last == nil {
		fmt.Fprintln(s.out, "Last scan:    none")
		return
	}
	r := s.last
	fmt.Fprintf(s.out, "Last scan:    %s on %s (%s)\n", r.State, r.Device.Name, r.Duration.Round(time.Millisecond))
	if r.Err != nil {
		fmt.Fprintf(s.out, "  Error:      %s: %v\n", scanner.Kind(r.Err), r.Err)
	}
	for _, f := range r.Files {
		fmt.Fprintf(s.out, "  File:       %s\n", f)
	}
}

func formatGeometry(g scanner.Geometry) string {
	return fmt.Sprintf("%gx%g mm at (%g, %g)", g.Width, g.Height, g.Left, g.Top)
}
