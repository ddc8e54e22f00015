package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/docscan-go/pkg/log"
	"github.com/docscan/docscan-go/pkg/registry"
)

func scannerEntry(instance string, addrs ...string) *ServiceEntry {
	return &ServiceEntry{
		Instance: instance,
		Host:     "host.local.",
		Port:     80,
		Text:     []string{"rs=eSCL", "UUID=" + instance + "-uuid"},
		Addrs:    addrs,
	}
}

func TestTracker_AggregatesAddresses(t *testing.T) {
	tr := newTracker()

	dev, isNew, err := tr.add(scannerEntry("A", "10.0.0.1"), false)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "a-uuid", dev.ID)

	_, isNew, err = tr.add(scannerEntry("A", "fe80::1"), false)
	require.NoError(t, err)
	assert.False(t, isNew, "second interface merges into the same device")
	assert.Equal(t, []string{"10.0.0.1", "fe80::1"}, tr.services["a-uuid"].Addresses)

	_, gone := tr.remove(scannerEntry("A", "10.0.0.1"), false)
	assert.False(t, gone)

	id, gone := tr.remove(scannerEntry("A", "fe80::1"), false)
	assert.True(t, gone)
	assert.Equal(t, "a-uuid", id)
	assert.Empty(t, tr.services)
}

func TestTracker_RemoveWithoutAddressesDropsDevice(t *testing.T) {
	tr := newTracker()
	_, _, err := tr.add(scannerEntry("A", "10.0.0.1", "10.0.0.2"), false)
	require.NoError(t, err)

	id, gone := tr.remove(scannerEntry("A"), false)
	assert.True(t, gone)
	assert.Equal(t, "a-uuid", id)
}

func TestTracker_FirstServiceTypeWins(t *testing.T) {
	tr := newTracker()
	_, isNew, err := tr.add(scannerEntry("A", "10.0.0.1"), false)
	require.NoError(t, err)
	require.True(t, isNew)

	_, isNew, err = tr.add(scannerEntry("A", "10.0.0.1"), true)
	require.NoError(t, err)
	assert.False(t, isNew)

	_, gone := tr.remove(scannerEntry("A"), true)
	assert.False(t, gone, "removal of the unused secure record is ignored")
}

func TestTracker_DeviceStaysWhileEitherTypeAnnounced(t *testing.T) {
	tr := newTracker()
	_, isNew, err := tr.add(scannerEntry("A", "10.0.0.1"), false)
	require.NoError(t, err)
	require.True(t, isNew)
	_, isNew, err = tr.add(scannerEntry("A", "10.0.0.1"), true)
	require.NoError(t, err)
	require.False(t, isNew)

	_, gone := tr.remove(scannerEntry("A"), false)
	assert.False(t, gone, "secure record still announced")
	assert.Contains(t, tr.services, "a-uuid")

	_, isNew, err = tr.add(scannerEntry("A", "10.0.0.1"), true)
	require.NoError(t, err)
	assert.False(t, isNew, "refresh of the remaining type is not a new device")

	id, gone := tr.remove(scannerEntry("A", "10.0.0.1"), true)
	assert.True(t, gone)
	assert.Equal(t, "a-uuid", id)
	assert.Empty(t, tr.services)
	assert.Empty(t, tr.byKey)
}

func TestTracker_UnknownRemoval(t *testing.T) {
	_, gone := newTracker().remove(scannerEntry("missing"), false)
	assert.False(t, gone)
}

func TestAggregate_FeedsRegistry(t *testing.T) {
	rec := &log.Recorder{}
	b, err := NewMDNSBrowser(BrowserConfig{EventLog: rec})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan resolved)
	added, removed := b.aggregate(ctx, in)

	reg := registry.New()
	done := make(chan struct{})
	go func() {
		reg.Watch(ctx, added, removed)
		close(done)
	}()

	in <- resolved{entry: scannerEntry("A", "10.0.0.1")}
	in <- resolved{entry: scannerEntry("B", "10.0.0.2")}
	in <- resolved{entry: &ServiceEntry{Instance: "bad", Text: []string{"rs=a b"}}}
	require.Eventually(t, func() bool { return reg.Len() == 2 }, time.Second, 5*time.Millisecond)

	in <- resolved{entry: scannerEntry("A"), removed: true}
	require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "B", reg.List()[0].Name)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	events := rec.ByCategory(log.CategoryDiscovery)
	require.Len(t, events, 3)
	assert.Equal(t, log.DiscoveryAdded, events[0].Discovery.Action)
	assert.Equal(t, "http://10.0.0.1:80/eSCL", events[0].Discovery.Locator)
	assert.Equal(t, log.DiscoveryRemoved, events[2].Discovery.Action)
	assert.Equal(t, "a-uuid", events[2].DeviceID)
}
