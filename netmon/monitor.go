// Package netmon tracks whether the chat backend is currently reachable.
//
// The monitor is the single source of truth for online/offline state,
// decoupled from any specific request. It never polls on its own timer:
// ordinary application traffic reports its outcome here, and callers
// drive explicit probes (e.g. a user-triggered retry). This keeps the
// monitor from fighting with the delta poller's own timer.
package netmon

import (
	"context"
	"sync"
	"time"
)

// ProbeFunc issues a lightweight liveness request. A nil error means the
// backend answered.
type ProbeFunc func(ctx context.Context) error

// Monitor holds the process-wide availability state.
//
// Subscribe is a single-slot registration: the last registered listener
// wins. The application has exactly one root view observing connectivity,
// which is the contract this simplification relies on.
type Monitor struct {
	probe ProbeFunc

	mu       sync.Mutex
	offline  bool
	listener func(offline bool)
	gen      uint64
}

// New constructs a monitor. The initial state is online: there is no
// ambient connectivity signal to consult at startup, and the first
// failed exchange corrects the assumption immediately.
func New(probe ProbeFunc) *Monitor {
	return &Monitor{probe: probe}
}

// Offline returns the cached state. It never blocks and never touches
// the network.
func (m *Monitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// Probe issues a liveness request and folds the result into the state.
// It returns true when the backend answered. Probe failures never
// propagate past this method.
func (m *Monitor) Probe(ctx context.Context) bool {
	err := m.probe(ctx)
	m.ReportOutcome(err == nil)
	return err == nil
}

// ReportOutcome folds the result of any completed HTTP exchange into the
// state, letting ordinary traffic double as a liveness signal.
func (m *Monitor) ReportOutcome(success bool) {
	m.setOffline(!success)
}

// Subscribe registers the listener notified on state transitions. The
// callback receives the new offline value, and only fires on actual
// changes, never on repeated reports of the same state. The returned
// function unregisters the listener.
func (m *Monitor) Subscribe(fn func(offline bool)) func() {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.listener = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		// Only clear if no later registration has replaced this one.
		if m.gen == gen {
			m.listener = nil
		}
		m.mu.Unlock()
	}
}

func (m *Monitor) setOffline(offline bool) {
	m.mu.Lock()
	changed := m.offline != offline
	m.offline = offline
	listener := m.listener
	m.mu.Unlock()

	// Notify outside the lock; the listener may call back into the monitor.
	if changed && listener != nil {
		listener(offline)
	}
}

// ProbeTimeout is the liveness deadline recommended for ProbeFuncs that
// do not bound themselves.
const ProbeTimeout = 2 * time.Second
