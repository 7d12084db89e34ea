// Package typing implements the client side of the typing indicator
// protocol: a single typing-start on the first keystroke after idle and
// a single typing-stop once the quiet period elapses.
package typing

import (
	"sync"
	"time"
)

const DefaultQuietPeriod = time.Second

// Notifier debounces keystrokes into typing-start/typing-stop signals.
// Safe for concurrent use.
type Notifier struct {
	mu     sync.Mutex
	quiet  time.Duration
	timer  *time.Timer
	active bool
	start  func()
	stop   func()
}

// NewNotifier wires the emit callbacks. A non-positive quiet period
// falls back to the protocol default of one second.
func NewNotifier(quiet time.Duration, start, stop func()) *Notifier {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Notifier{quiet: quiet, start: start, stop: stop}
}

// Keystroke records one keystroke. The first keystroke after an idle
// period emits typing-start; every keystroke resets the quiet timer.
func (n *Notifier) Keystroke() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.active {
		n.active = true
		n.start()
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.quiet, n.fire)
}

func (n *Notifier) fire() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.active {
		return
	}
	n.active = false
	n.stop()
}

// Cancel drops any pending typing-stop without emitting it. Used when
// the room is left or the connection is torn down: the server removes
// the participant wholesale, a trailing stop would be noise.
func (n *Notifier) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.active = false
}
