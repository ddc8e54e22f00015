package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{SessionID: "ignored"})
}

func TestMultiLogger_FansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := NewMultiLogger(a, nil, b)
	m.Log(Event{SessionID: "s"})
	m.Log(Event{SessionID: "t"})

	assert.Len(t, a.Events(), 2)
	assert.Len(t, b.Events(), 2)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Log(Event{Category: CategoryState})
	r.Log(Event{Category: CategoryError})
	r.Log(Event{Category: CategoryState})

	assert.Len(t, r.ByCategory(CategoryState), 2)
	assert.Len(t, r.ByCategory(CategoryError), 1)

	events := r.Events()
	events[0].SessionID = "mutated"
	assert.Empty(t, r.Events()[0].SessionID)

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)

	a.Log(Event{
		Timestamp:   time.Now(),
		SessionID:   "sess-9",
		Layer:       LayerSession,
		Category:    CategoryState,
		DeviceName:  "Canon1",
		StateChange: &StateChangeEvent{OldState: "SCANNING", NewState: "FAILED", Reason: "paper jam"},
	})

	out := buf.String()
	for _, want := range []string{"session=sess-9", "layer=SESSION", "new_state=FAILED", "reason=\"paper jam\"", "device=Canon1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	buf.Reset()
	a.Log(Event{Category: CategoryError, Error: &ErrorEventData{Layer: LayerDevice, Message: "boom", Kind: "ScanError"}})
	assert.Contains(t, buf.String(), "error_kind=ScanError")
}

func TestSlogAdapter_BelowDebugIsSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	NewSlogAdapter(logger).Log(Event{SessionID: "x", Category: CategoryState, StateChange: &StateChangeEvent{NewState: "IDLE"}})
	assert.Empty(t, buf.String())
}
