package log

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, SessionID: "s1", Layer: LayerDiscovery, Category: CategoryDiscovery, Discovery: &DiscoveryEvent{Action: DiscoveryAdded, Name: "Canon1"}},
		{Timestamp: base.Add(time.Second), SessionID: "s1", Layer: LayerSession, Category: CategoryState, DeviceID: "d1", StateChange: &StateChangeEvent{OldState: "IDLE", NewState: "OPENING"}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "s1", Layer: LayerSession, Category: CategoryError, DeviceID: "d1", Error: &ErrorEventData{Layer: LayerSession, Message: "jam", Kind: "ScanError"}},
		{Timestamp: base.Add(3 * time.Second), SessionID: "s2", Layer: LayerSession, Category: CategoryState, DeviceID: "d2", StateChange: &StateChangeEvent{OldState: "IDLE", NewState: "OPENING"}},
	}
}

func TestReader_IteratesInOrder(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(time.Now()))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 4 {
		t.Fatalf("got %d events, want 4", len(read))
	}
	if read[0].Discovery == nil || read[0].Discovery.Name != "Canon1" {
		t.Errorf("first event: got %+v", read[0])
	}
	if read[3].SessionID != "s2" {
		t.Errorf("last event session: got %q, want %q", read[3].SessionID, "s2")
	}
}

func TestReader_Filters(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	state := CategoryState
	discovery := LayerDiscovery
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"none", Filter{}, 4},
		{"session", Filter{SessionID: "s1"}, 3},
		{"category", Filter{Category: &state}, 2},
		{"layer", Filter{Layer: &discovery}, 1},
		{"device", Filter{DeviceID: "d1"}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{SessionID: "s1", Category: &state}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			require.NoError(t, err)
			defer r.Close()
			events, err := r.All()
			require.NoError(t, err)
			assert.Len(t, events, tt.want)
		})
	}
}

func TestNewReader_MissingFile(t *testing.T) {
	_, err := NewReader("/nonexistent/trace.dlog")
	assert.Error(t, err)
}
