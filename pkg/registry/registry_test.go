package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/docscan-go/pkg/scanner"
)

func dev(id, name string) scanner.Device {
	return scanner.Device{ID: id, Name: name}
}

func TestRegistry_AddListOrder(t *testing.T) {
	r := New()
	r.Add(dev("1", "Canon1"))
	r.Add(dev("2", "Epson2"))
	r.Add(dev("3", "HP3"))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Canon1", list[0].Name)
	assert.Equal(t, "Epson2", list[1].Name)
	assert.Equal(t, "HP3", list[2].Name)
}

func TestRegistry_AddDuplicateUpdatesInPlace(t *testing.T) {
	r := New()
	r.Add(dev("1", "Canon1"))
	r.Add(dev("2", "Epson2"))
	r.Add(dev("1", "Canon1 renamed"))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Canon1 renamed", list[0].Name)
}

func TestRegistry_Remove(t *testing.T) {
	r := New()
	r.Add(dev("1", "Canon1"))
	r.Add(dev("2", "Epson2"))
	r.Remove("1")
	r.Remove("missing")

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Epson2", list[0].Name)
}

func TestRegistry_ListIsSnapshot(t *testing.T) {
	r := New()
	r.Add(dev("1", "Canon1"))
	list := r.List()
	list[0].Name = "mutated"
	r.Add(dev("2", "Epson2"))

	assert.Len(t, list, 1)
	got, ok := r.FindByName("Canon1")
	assert.True(t, ok)
	assert.Equal(t, "1", got.ID)
}

func TestRegistry_FindByName(t *testing.T) {
	r := New()
	r.Add(dev("1", "Same"))
	r.Add(dev("2", "Same"))

	got, ok := r.FindByName("Same")
	require.True(t, ok)
	assert.Equal(t, "1", got.ID, "first match wins")

	_, ok = r.FindByName("same")
	assert.False(t, ok, "match is case-sensitive")

	_, err := r.Lookup("Other")
	if !errors.Is(err, scanner.ErrDeviceNotFound) {
		t.Errorf("Lookup: got %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_Select(t *testing.T) {
	r := New()
	_, err := r.Select("")
	assert.ErrorIs(t, err, scanner.ErrDiscoveryEmpty)

	r.Add(dev("1", "Canon1"))
	r.Add(dev("2", "Epson2"))

	sel, err := r.Select("")
	require.NoError(t, err)
	assert.Equal(t, "Canon1", sel.Device.Name)
	assert.False(t, sel.Fallback)

	sel, err = r.Select("Epson2")
	require.NoError(t, err)
	assert.Equal(t, "Epson2", sel.Device.Name)
	assert.False(t, sel.Fallback)

	sel, err = r.Select("Brother9")
	require.NoError(t, err)
	assert.Equal(t, "Canon1", sel.Device.Name)
	assert.True(t, sel.Fallback)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Add(dev(string(rune('a'+i%26)), "x"))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.List()
			_, _ = r.FindByName("x")
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, r.Len(), 26)
}

func TestWaitSettled_Complete(t *testing.T) {
	r := New()
	go func() {
		r.Add(dev("1", "Canon1"))
		r.MarkComplete()
	}()

	start := time.Now()
	list := r.WaitSettled(context.Background(), 0, 5*time.Second)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Len(t, list, 1)

	// Idempotent.
	r.MarkComplete()
}

func TestWaitSettled_QuietWindow(t *testing.T) {
	r := New()
	r.Add(dev("1", "Canon1"))

	start := time.Now()
	list := r.WaitSettled(context.Background(), 20*time.Millisecond, 5*time.Second)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Len(t, list, 1)
}

func TestWaitSettled_MaxWithNoDevices(t *testing.T) {
	r := New()
	start := time.Now()
	list := r.WaitSettled(context.Background(), 10*time.Millisecond, 50*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Empty(t, list)
}

func TestWaitSettled_ContextCancelled(t *testing.T) {
	r := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, r.WaitSettled(ctx, 0, 0))
}

func TestWatch(t *testing.T) {
	r := New()
	added := make(chan scanner.Device)
	removed := make(chan string)
	done := make(chan struct{})
	go func() {
		r.Watch(context.Background(), added, removed)
		close(done)
	}()

	added <- dev("1", "Canon1")
	added <- dev("2", "Epson2")
	removed <- "1"
	close(added)
	close(removed)
	<-done

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Epson2", list[0].Name)
}
