package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/docscan/docscan-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	r, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer r.Close()
	events, err := r.All()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return events
}

func TestRunFilterBySession(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	path := createTestLogFile(t, sessionEvents(ts))
	out := filepath.Join(t.TempDir(), "session"+log.FileExtension)

	n, err := RunFilter(path, FilterOptions{Output: out, SessionID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 events, got %d", n)
	}
	if got := len(readAll(t, out)); got != 4 {
		t.Errorf("expected 4 events in output, got %d", got)
	}
}

func TestRunFilterByLayerAndDirection(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	path := createTestLogFile(t, sessionEvents(ts))
	out := filepath.Join(t.TempDir(), "requests"+log.FileExtension)

	n, err := RunFilter(path, FilterOptions{Output: out, Layer: "Device", Direction: "out"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
	events := readAll(t, out)
	if events[0].Request == nil || events[0].Request.Method != "POST" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestRunFilterByTime(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryState, StateChange: &log.StateChangeEvent{NewState: "IDLE"}},
		{Timestamp: ts.Add(time.Hour), Category: log.CategoryState, StateChange: &log.StateChangeEvent{NewState: "OPENING"}},
	}
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "late"+log.FileExtension)

	n, err := RunFilter(path, FilterOptions{Output: out, TimeStart: "2026-03-02T10:00:00Z"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestFilterOptionsInvalid(t *testing.T) {
	tests := []FilterOptions{
		{Layer: "wire"},
		{Category: "message"},
		{Direction: "sideways"},
		{TimeStart: "yesterday"},
		{TimeEnd: "2026-13-01"},
	}
	for _, opts := range tests {
		if _, err := opts.Selection(); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}
}

func TestSelectionDirectionOnlyMatchesRequests(t *testing.T) {
	dir := log.DirectionIn
	sel := Selection{Direction: &dir}

	if sel.Matches(log.Event{StateChange: &log.StateChangeEvent{NewState: "IDLE"}}) {
		t.Error("direction filter should exclude non-request events")
	}
	if !sel.Matches(log.Event{Request: &log.RequestEvent{Direction: log.DirectionIn}}) {
		t.Error("direction filter should include matching responses")
	}
	if sel.Matches(log.Event{Request: &log.RequestEvent{Direction: log.DirectionOut}}) {
		t.Error("direction filter should exclude requests in the other direction")
	}
}
