package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docscan/docscan-go/pkg/log"
)

// FilterOptions holds the textual selection flags shared by view and filter.
type FilterOptions struct {
	Output    string
	SessionID string
	DeviceID  string
	TimeStart string
	TimeEnd   string
	Layer     string
	Category  string
	Direction string
}

// Selection narrows the events of a trace file.
type Selection struct {
	log.Filter

	// Direction only matches device request events.
	Direction *log.Direction
}

// Matches reports whether the event passes the selection.
func (s *Selection) Matches(event log.Event) bool {
	if !s.Filter.Matches(event) {
		return false
	}
	if s.Direction != nil {
		if event.Request == nil || event.Request.Direction != *s.Direction {
			return false
		}
	}
	return true
}

// Selection parses the options.
func (o FilterOptions) Selection() (Selection, error) {
	sel := Selection{Filter: log.Filter{
		SessionID: o.SessionID,
		DeviceID:  o.DeviceID,
	}}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		sel.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		sel.TimeEnd = &t
	}
	if o.Layer != "" {
		l, err := ParseLayer(o.Layer)
		if err != nil {
			return Selection{}, err
		}
		sel.Layer = &l
	}
	if o.Category != "" {
		c, err := ParseCategory(o.Category)
		if err != nil {
			return Selection{}, err
		}
		sel.Category = &c
	}
	if o.Direction != "" {
		d, err := ParseDirection(o.Direction)
		if err != nil {
			return Selection{}, err
		}
		sel.Direction = &d
	}
	return sel, nil
}

// ParseLayer parses a layer name (case-insensitive).
func ParseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "discovery":
		return log.LayerDiscovery, nil
	case "session":
		return log.LayerSession, nil
	case "device":
		return log.LayerDevice, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be discovery, session, or device)", s)
	}
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "state":
		return log.CategoryState, nil
	case "config":
		return log.CategoryConfig, nil
	case "transfer":
		return log.CategoryTransfer, nil
	case "request":
		return log.CategoryRequest, nil
	case "discovery":
		return log.CategoryDiscovery, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be state, config, transfer, request, discovery, or error)", s)
	}
}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// RunFilter copies the events of path that match opts into opts.Output
// and returns how many were written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	sel, err := opts.Selection()
	if err != nil {
		return 0, err
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output log: %w", err)
	}
	defer out.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		if !sel.Matches(event) {
			continue
		}
		out.Log(event)
		count++
	}
	if n := out.Dropped(); n > 0 {
		return count - n, fmt.Errorf("%d events could not be written", n)
	}
	return count, nil
}
