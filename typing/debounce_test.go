package typing

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Keystrokes at t=0, t=40ms, t=90ms with a 100ms quiet period: exactly
// one typing-start and exactly one typing-stop, fired ~100ms after the
// last keystroke.
func TestNotifier_DebouncesKeystrokes(t *testing.T) {
	var starts, stops atomic.Int32
	notifier := NewNotifier(100*time.Millisecond,
		func() { starts.Add(1) },
		func() { stops.Add(1) },
	)

	notifier.Keystroke()
	time.Sleep(40 * time.Millisecond)
	notifier.Keystroke()
	time.Sleep(50 * time.Millisecond)
	notifier.Keystroke()

	// Quiet period not yet elapsed after the last keystroke.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), starts.Load())
	require.Equal(t, int32(0), stops.Load())

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), starts.Load())
	require.Equal(t, int32(1), stops.Load())
}

func TestNotifier_RestartsAfterQuiet(t *testing.T) {
	var starts, stops atomic.Int32
	notifier := NewNotifier(30*time.Millisecond,
		func() { starts.Add(1) },
		func() { stops.Add(1) },
	)

	notifier.Keystroke()
	time.Sleep(80 * time.Millisecond)
	notifier.Keystroke()
	time.Sleep(80 * time.Millisecond)

	require.Equal(t, int32(2), starts.Load())
	require.Equal(t, int32(2), stops.Load())
}

func TestNotifier_CancelSuppressesStop(t *testing.T) {
	var starts, stops atomic.Int32
	notifier := NewNotifier(30*time.Millisecond,
		func() { starts.Add(1) },
		func() { stops.Add(1) },
	)

	notifier.Keystroke()
	notifier.Cancel()
	time.Sleep(80 * time.Millisecond)

	require.Equal(t, int32(1), starts.Load())
	require.Equal(t, int32(0), stops.Load())
}
