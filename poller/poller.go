// Package poller emulates a streaming assistant reply over a plain
// request/response transport.
//
// The backend generates replies asynchronously; the client sees them by
// asking "everything newer than message N" on a fixed-period timer and
// merging the returned fragments into the conversation log. The first
// fragment of a run introduces the assistant message; every later
// fragment is a content delta for that same message. A terminal status
// on the last fragment of a tick ends the run.
//
// The fetch side is a plain function value and results are delivered as
// typed events, so a future push transport (SSE, websocket) can drive
// the same event stream without changing consumers.
package poller

import (
	"sync"
	"time"

	"aitui/api"
)

// DefaultInterval is the fixed polling period.
const DefaultInterval = time.Second

// FetchFunc requests the fragments with id greater than lastMessageID
// for a conversation. Order within the returned slice is authoritative.
type FetchFunc func(sessionID, lastMessageID int64) ([]api.Fragment, error)

// Reporter receives the outcome of each completed fetch, so polling
// traffic doubles as a liveness signal. netmon.Monitor satisfies this.
type Reporter interface {
	ReportOutcome(success bool)
}

// EventKind discriminates poller events.
type EventKind int

const (
	// EventAppend introduces the assistant message: the first fragment
	// of a run enters the log verbatim.
	EventAppend EventKind = iota
	// EventDelta grows the already-introduced assistant message: the
	// fragment's content is concatenated onto the existing content and
	// its status overwrites the current one.
	EventDelta
	// EventDone reports that a terminal status was observed and the
	// timer has stopped.
	EventDone
	// EventAborted reports a transport failure. The timer is stopped,
	// nothing is retried, and the log keeps whatever partial state it
	// had. Recovery is the caller's decision (resend or reload).
	EventAborted
)

// Event is one poller notification.
type Event struct {
	Kind      EventKind
	SessionID int64
	Fragment  api.Fragment // valid for Append and Delta
	Err       error        // valid for Aborted
}

// Poller drives the update loop for at most one conversation at a time.
// Starting it again stops any previous run first, so no two timers ever
// poll concurrently on behalf of one caller.
type Poller struct {
	fetch    FetchFunc
	reporter Reporter
	interval time.Duration

	mu  sync.Mutex
	gen uint64 // increments on every Start/Stop; stale runs discard their results
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the polling period (tests use a short one).
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithReporter wires an availability reporter.
func WithReporter(r Reporter) Option {
	return func(p *Poller) { p.reporter = r }
}

// New constructs a poller around a fetch function.
func New(fetch FetchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling for the assistant reply to baselineID in the
// given conversation. Any previous run is stopped first. Events are
// delivered from the polling goroutine; ticks are serialized by that
// goroutine, so a slow fetch delays the next tick rather than
// overlapping it.
func (p *Poller) Start(sessionID, baselineID int64, notify func(Event)) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go p.run(gen, sessionID, baselineID, notify)
}

// Stop cancels the active run, if any. Idempotent: stopping a stopped
// poller is a no-op. A fetch already in flight is allowed to complete
// but its result is discarded before it can touch shared state.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.gen++
	p.mu.Unlock()
}

// current reports whether gen is still the live generation. Stale runs
// use this to discard their results instead of touching shared state.
func (p *Poller) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

func (p *Poller) run(gen uint64, sessionID, baselineID int64, notify func(Event)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Cursor state for this run: the assistant message id is pinned by
	// the first fragment and every later fragment is a delta for it.
	var activeID int64

	// emit delivers an event only while this run is still the live
	// generation. A Stop racing the merge loop silences the rest of
	// the batch, not just the next tick.
	emit := func(ev Event) bool {
		p.mu.Lock()
		live := p.gen == gen
		p.mu.Unlock()
		if live {
			notify(ev)
		}
		return live
	}

	for range ticker.C {
		if !p.current(gen) {
			return
		}

		fragments, err := p.fetch(sessionID, baselineID)

		// A Stop racing the fetch wins: discard the result entirely,
		// including its availability outcome.
		if !p.current(gen) {
			return
		}

		if err != nil {
			if p.reporter != nil {
				p.reporter.ReportOutcome(false)
			}
			emit(Event{Kind: EventAborted, SessionID: sessionID, Err: err})
			return
		}
		if p.reporter != nil {
			p.reporter.ReportOutcome(true)
		}

		if len(fragments) == 0 {
			continue
		}

		for _, frag := range fragments {
			if activeID == 0 {
				activeID = frag.ID
				if !emit(Event{Kind: EventAppend, SessionID: sessionID, Fragment: frag}) {
					return
				}
			} else {
				// Deltas target the pinned message regardless of the
				// fragment's own id; server order is preserved as-is.
				frag.ID = activeID
				if !emit(Event{Kind: EventDelta, SessionID: sessionID, Fragment: frag}) {
					return
				}
			}
		}

		if terminal(fragments[len(fragments)-1].Status) {
			emit(Event{Kind: EventDone, SessionID: sessionID})
			return
		}
	}
}

// terminal reports whether a status ends the stream. The backend stops
// mutating a message at completed; failed is treated the same way so a
// reply that errors out mid-stream cannot poll forever.
func terminal(status string) bool {
	return status == api.StatusCompleted || status == api.StatusFailed
}
