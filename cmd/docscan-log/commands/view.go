// Package commands implements the docscan-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docscan/docscan-go/pkg/log"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// eventLabel names the payload carried by an event.
func eventLabel(event log.Event) string {
	switch {
	case event.StateChange != nil:
		return "State"
	case event.Config != nil:
		return "Config"
	case event.Transfer != nil:
		return "Transfer"
	case event.Request != nil:
		return "Request"
	case event.Discovery != nil:
		return "Discovery"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] LAYER Type device
	ts := event.Timestamp.UTC().Format(timestampFormat)
	session := shortenID(event.SessionID)
	if session == "" {
		session = "-"
	}

	fmt.Fprintf(w, "%s [session:%s] %s %s", ts, session, event.Layer.String(), eventLabel(event))
	if event.DeviceName != "" {
		fmt.Fprintf(w, " %q", event.DeviceName)
	}
	fmt.Fprintln(w)

	switch {
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Config != nil:
		formatConfigDetails(w, event.Config)
	case event.Transfer != nil:
		formatTransferDetails(w, event.Transfer)
	case event.Request != nil:
		formatRequestDetails(w, event.Request)
	case event.Discovery != nil:
		formatDiscoveryDetails(w, event.Discovery)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatConfigDetails(w io.Writer, c *log.ConfigEvent) {
	source := "platen"
	if c.UseFeeder {
		source = "feeder"
	}
	fmt.Fprintf(w, "  Source: %s\n", source)
	fmt.Fprintf(w, "  Resolution: %d dpi\n", c.Resolution)
	fmt.Fprintf(w, "  Pixels: %s/%d\n", c.PixelType, c.BitDepth)
	fmt.Fprintf(w, "  Format: %s\n", c.Format)
	if c.DocumentSize != "" {
		fmt.Fprintf(w, "  Document size: %s\n", c.DocumentSize)
	}
	if len(c.Area) == 4 {
		fmt.Fprintf(w, "  Area: x=%g y=%g w=%g h=%g\n", c.Area[0], c.Area[1], c.Area[2], c.Area[3])
	}
	if c.DownloadDir != "" {
		fmt.Fprintf(w, "  Download dir: %s\n", c.DownloadDir)
	}
}

func formatTransferDetails(w io.Writer, t *log.TransferEvent) {
	fmt.Fprintf(w, "  Page: %d\n", t.Page)
	if t.Source != t.Destination {
		fmt.Fprintf(w, "  %s -> %s\n", t.Source, t.Destination)
	} else {
		fmt.Fprintf(w, "  Path: %s\n", t.Destination)
	}
	if t.Bytes > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", t.Bytes)
	}
	if t.MIMEType != "" {
		fmt.Fprintf(w, "  Type: %s\n", t.MIMEType)
	}
}

func formatRequestDetails(w io.Writer, r *log.RequestEvent) {
	fmt.Fprintf(w, "  %-3s %s %s\n", r.Direction.String(), r.Method, r.URL)
	if r.Status != 0 {
		fmt.Fprintf(w, "  Status: %d\n", r.Status)
	}
	if r.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*r.Duration))
	}
}

func formatDiscoveryDetails(w io.Writer, d *log.DiscoveryEvent) {
	fmt.Fprintf(w, "  %s %s\n", d.Action.String(), d.Name)
	if d.Locator != "" {
		fmt.Fprintf(w, "  Locator: %s\n", d.Locator)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	if err.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	}
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// RunView prints the events of path that pass sel.
func RunView(path string, sel Selection, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if sel.Matches(event) {
			formatEvent(output, event)
		}
	}
	return nil
}

// label lowercases an enum name for CSV output.
func label(s fmt.Stringer) string {
	return strings.ToLower(s.String())
}
