package poller

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aitui/api"
)

const testInterval = 2 * time.Millisecond

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poller event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, events <-chan Event, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected event kind %d", ev.Kind)
	case <-time.After(wait):
	}
}

type fakeReporter struct {
	mu       sync.Mutex
	outcomes []bool
}

func (r *fakeReporter) ReportOutcome(success bool) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, success)
	r.mu.Unlock()
}

func (r *fakeReporter) last() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return false, false
	}
	return r.outcomes[len(r.outcomes)-1], true
}

func TestPollerStreamsReply(t *testing.T) {
	var calls int32
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		if sessionID != 7 {
			t.Errorf("fetch called with session %d, want 7", sessionID)
		}
		if lastMessageID != 41 {
			t.Errorf("fetch called with baseline %d, want 41", lastMessageID)
		}

		switch atomic.AddInt32(&calls, 1) {
		case 1:
			// Reply not started yet
			return nil, nil
		case 2:
			return []api.Fragment{{ID: 42, Content: "Hel", Status: api.StatusStreaming}}, nil
		default:
			return []api.Fragment{{ID: 42, Content: "lo!", Status: api.StatusCompleted}}, nil
		}
	}

	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval))
	p.Start(7, 41, func(ev Event) { events <- ev })

	ev := waitEvent(t, events)
	if ev.Kind != EventAppend {
		t.Fatalf("first event kind = %d, want EventAppend", ev.Kind)
	}
	if ev.Fragment.ID != 42 || ev.Fragment.Content != "Hel" {
		t.Errorf("append fragment = %+v, want id 42 content \"Hel\"", ev.Fragment)
	}
	if ev.Fragment.Status != api.StatusStreaming {
		t.Errorf("append status = %q, want streaming", ev.Fragment.Status)
	}

	ev = waitEvent(t, events)
	if ev.Kind != EventDelta {
		t.Fatalf("second event kind = %d, want EventDelta", ev.Kind)
	}
	if ev.Fragment.Content != "lo!" || ev.Fragment.Status != api.StatusCompleted {
		t.Errorf("delta fragment = %+v, want content \"lo!\" status completed", ev.Fragment)
	}

	ev = waitEvent(t, events)
	if ev.Kind != EventDone {
		t.Fatalf("third event kind = %d, want EventDone", ev.Kind)
	}
	if ev.SessionID != 7 {
		t.Errorf("done session = %d, want 7", ev.SessionID)
	}
}

func TestPollerStopsFetchingAfterTerminal(t *testing.T) {
	var calls int32
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		atomic.AddInt32(&calls, 1)
		return []api.Fragment{{ID: 5, Content: "done", Status: api.StatusCompleted}}, nil
	}

	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval))
	p.Start(1, 4, func(ev Event) { events <- ev })

	waitEvent(t, events) // append
	waitEvent(t, events) // done

	time.Sleep(10 * testInterval)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch called %d times after terminal status, want 1", n)
	}
}

func TestPollerPinsDeltasToFirstFragment(t *testing.T) {
	var calls int32
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			return []api.Fragment{{ID: 42, Content: "a", Status: api.StatusStreaming}}, nil
		default:
			// Server reports a different id mid-stream; the run's cursor wins
			return []api.Fragment{{ID: 99, Content: "b", Status: api.StatusCompleted}}, nil
		}
	}

	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval))
	p.Start(1, 41, func(ev Event) { events <- ev })

	waitEvent(t, events) // append

	ev := waitEvent(t, events)
	if ev.Kind != EventDelta {
		t.Fatalf("event kind = %d, want EventDelta", ev.Kind)
	}
	if ev.Fragment.ID != 42 {
		t.Errorf("delta fragment id = %d, want pinned id 42", ev.Fragment.ID)
	}
}

func TestPollerFailedStatusIsTerminal(t *testing.T) {
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		return []api.Fragment{{ID: 9, Content: "partial", Status: api.StatusFailed}}, nil
	}

	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval))
	p.Start(1, 8, func(ev Event) { events <- ev })

	if ev := waitEvent(t, events); ev.Kind != EventAppend {
		t.Fatalf("first event kind = %d, want EventAppend", ev.Kind)
	}
	if ev := waitEvent(t, events); ev.Kind != EventDone {
		t.Fatalf("second event kind = %d, want EventDone", ev.Kind)
	}
}

func TestPollerAbortsOnFetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	var calls int32
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		atomic.AddInt32(&calls, 1)
		return nil, fetchErr
	}

	reporter := &fakeReporter{}
	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval), WithReporter(reporter))
	p.Start(3, 10, func(ev Event) { events <- ev })

	ev := waitEvent(t, events)
	if ev.Kind != EventAborted {
		t.Fatalf("event kind = %d, want EventAborted", ev.Kind)
	}
	if !errors.Is(ev.Err, fetchErr) {
		t.Errorf("aborted err = %v, want %v", ev.Err, fetchErr)
	}

	outcome, ok := reporter.last()
	if !ok || outcome {
		t.Errorf("reporter outcome = %v %v, want recorded false", outcome, ok)
	}

	// No retry: the run must not fetch again
	before := atomic.LoadInt32(&calls)
	time.Sleep(10 * testInterval)
	if after := atomic.LoadInt32(&calls); after != before {
		t.Errorf("fetch retried after abort: %d -> %d calls", before, after)
	}
}

func TestStopDiscardsInFlightFetch(t *testing.T) {
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		once.Do(func() { close(started) })
		<-release
		return nil, errors.New("late failure")
	}

	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval))
	p.Start(1, 1, func(ev Event) { events <- ev })

	<-started
	p.Stop()
	close(release)

	assertNoEvent(t, events, 20*testInterval)
}

func TestStopMidBatchSuppressesRemainingEvents(t *testing.T) {
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		return []api.Fragment{
			{ID: 42, Content: "Hel", Status: api.StatusStreaming},
			{ID: 42, Content: "lo", Status: api.StatusStreaming},
			{ID: 42, Content: "!", Status: api.StatusCompleted},
		}, nil
	}

	events := make(chan Event, 16)
	p := New(fetch, WithInterval(testInterval))
	p.Start(1, 41, func(ev Event) {
		events <- ev
		// Caller abandons the run on the first fragment; the rest of
		// the batch must be discarded, including EventDone.
		p.Stop()
	})

	ev := waitEvent(t, events)
	if ev.Kind != EventAppend {
		t.Fatalf("event kind = %d, want EventAppend", ev.Kind)
	}
	assertNoEvent(t, events, 20*testInterval)
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		return nil, nil
	}, WithInterval(testInterval))

	p.Stop()
	p.Stop()

	events := make(chan Event, 16)
	p.Start(1, 1, func(ev Event) { events <- ev })
	p.Stop()
	assertNoEvent(t, events, 10*testInterval)
}

func TestRestartReplacesPreviousRun(t *testing.T) {
	var firstCalls, secondCalls int32
	fetch := func(sessionID, lastMessageID int64) ([]api.Fragment, error) {
		if sessionID == 1 {
			atomic.AddInt32(&firstCalls, 1)
		} else {
			atomic.AddInt32(&secondCalls, 1)
		}
		return nil, nil
	}

	p := New(fetch, WithInterval(testInterval))
	p.Start(1, 1, func(Event) {})
	time.Sleep(5 * testInterval)
	p.Start(2, 1, func(Event) {})
	time.Sleep(5 * testInterval)

	stable := atomic.LoadInt32(&firstCalls)
	time.Sleep(10 * testInterval)
	if now := atomic.LoadInt32(&firstCalls); now != stable {
		t.Errorf("first run still fetching after restart: %d -> %d calls", stable, now)
	}
	if atomic.LoadInt32(&secondCalls) == 0 {
		t.Error("second run never fetched")
	}

	p.Stop()
}
