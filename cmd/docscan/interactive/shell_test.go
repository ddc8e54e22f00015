package interactive

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/docscan-go/pkg/scanner"
	"github.com/docscan/docscan-go/pkg/session"
)

type fakeBackend struct {
	devices  []scanner.Device
	requests []scanner.ScanRequest
	result   session.Result
}

func (f *fakeBackend) Devices(context.Context) []scanner.Device { return f.devices }

func (f *fakeBackend) Scan(_ context.Context, req scanner.ScanRequest) session.Result {
	f.requests = append(f.requests, req)
	return f.result
}

func newTestShell() (*Shell, *fakeBackend, *bytes.Buffer) {
	backend := &fakeBackend{
		devices: []scanner.Device{
			{ID: "1", Name: "Canon1"},
			{ID: "2", Name: "Epson Work Force", Capabilities: scanner.Capabilities{HasFeeder: true}},
		},
		result: session.Result{
			State:    session.StateCompleted,
			Device:   scanner.Device{Name: "Canon1"},
			Files:    []string{"/tmp/a.jpg"},
			Duration: 1500 * time.Millisecond,
		},
	}
	var out bytes.Buffer
	return newShell(backend, Settings{Mode: "color"}, &out), backend, &out
}

func TestShell_List(t *testing.T) {
	s, _, out := newTestShell()
	s.settings.Device = "Canon1"

	assert.False(t, s.Execute(context.Background(), "list"))
	assert.Contains(t, out.String(), "Available scanners:")
	assert.Contains(t, out.String(), "* 0: Canon1")
	assert.Contains(t, out.String(), "  1: Epson Work Force [feeder]")
}

func TestShell_UseByNameAndIndex(t *testing.T) {
	s, _, out := newTestShell()
	ctx := context.Background()

	s.Execute(ctx, "use Epson Work Force")
	assert.Equal(t, "Epson Work Force", s.settings.Device)

	s.Execute(ctx, "use 0")
	assert.Equal(t, "Canon1", s.settings.Device)

	s.Execute(ctx, "use Missing")
	assert.Equal(t, "Canon1", s.settings.Device)
	assert.Contains(t, out.String(), "Unknown scanner: Missing")
}

func TestShell_SettingsFlowIntoRequest(t *testing.T) {
	s, backend, _ := newTestShell()
	ctx := context.Background()

	for _, line := range []string{
		"use Canon1",
		"mode Grey",
		"res 600",
		"area 10 20 100 50",
		"scan /tmp/page.png",
	} {
		require.False(t, s.Execute(ctx, line), line)
	}

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, "Canon1", req.DeviceName)
	assert.Equal(t, scanner.ColorModeGrayscale, req.ColorMode)
	assert.Equal(t, 600, req.Resolution)
	assert.Equal(t, scanner.Geometry{Left: 10, Top: 20, Width: 100, Height: 50}, req.Geometry)
	assert.Equal(t, "/tmp/page.png", req.Destination)
	assert.Equal(t, scanner.FormatPNG, req.Format, "format follows the extension")
}

func TestShell_ExplicitFormat(t *testing.T) {
	s, backend, _ := newTestShell()
	ctx := context.Background()

	s.Execute(ctx, "format pdf")
	s.Execute(ctx, "scan out/")
	s.Execute(ctx, "format auto")
	s.Execute(ctx, "scan out/x")

	require.Len(t, backend.requests, 2)
	assert.Equal(t, scanner.FormatPDF, backend.requests[0].Format)
	assert.Equal(t, scanner.FormatJPEG, backend.requests[1].Format)
}

func TestShell_RejectsInvalidInput(t *testing.T) {
	s, backend, out := newTestShell()
	ctx := context.Background()

	s.Execute(ctx, "res abc")
	s.Execute(ctx, "area 0 0 -1 10")
	s.Execute(ctx, "area 0 0 x 10")
	s.Execute(ctx, "format bmp")
	s.Execute(ctx, "scan")
	s.Execute(ctx, "frobnicate")

	assert.Equal(t, 200, s.settings.Resolution)
	assert.Equal(t, scanner.DefaultGeometry, s.settings.Geometry)
	assert.Empty(t, backend.requests)

	text := out.String()
	assert.Contains(t, text, "Invalid resolution: abc")
	assert.Contains(t, text, "size must be positive")
	assert.Contains(t, text, "Invalid number: x")
	assert.Contains(t, text, "Usage: scan <output>")
	assert.Contains(t, text, "Unknown command: frobnicate")
}

func TestShell_Status(t *testing.T) {
	s, backend, out := newTestShell()
	ctx := context.Background()

	s.Execute(ctx, "status")
	assert.Contains(t, out.String(), "(first available)")
	assert.Contains(t, out.String(), "Last scan:    none")

	backend.result = session.Result{
		State:  session.StateFailed,
		Device: scanner.Device{Name: "Canon1"},
		Err:    scanner.ErrTransfer,
	}
	s.Execute(ctx, "scan /tmp/x.jpg")
	out.Reset()
	s.Execute(ctx, "status")
	assert.Contains(t, out.String(), "Last scan:    FAILED on Canon1")
	assert.Contains(t, out.String(), "TransferError")
}

func TestShell_Quit(t *testing.T) {
	s, _, _ := newTestShell()
	assert.True(t, s.Execute(context.Background(), "quit"))
	assert.False(t, s.Execute(context.Background(), "   "))
}
