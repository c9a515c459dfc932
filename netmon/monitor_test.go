package netmon

import (
	"context"
	"errors"
	"testing"
)

func TestInitialStateIsOnline(t *testing.T) {
	m := New(nil)
	if m.Offline() {
		t.Error("new monitor reports offline, want online")
	}
}

func TestReportOutcomeTransitions(t *testing.T) {
	m := New(nil)

	var notifications []bool
	m.Subscribe(func(offline bool) {
		notifications = append(notifications, offline)
	})

	// Repeated successes on an online monitor are not transitions
	m.ReportOutcome(true)
	m.ReportOutcome(true)
	if len(notifications) != 0 {
		t.Fatalf("got %d notifications for repeated online reports, want 0", len(notifications))
	}

	m.ReportOutcome(false)
	if !m.Offline() {
		t.Error("monitor still online after failure report")
	}
	if len(notifications) != 1 || notifications[0] != true {
		t.Fatalf("notifications = %v, want [true]", notifications)
	}

	// Repeated failures collapse into the one transition
	m.ReportOutcome(false)
	m.ReportOutcome(false)
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications for repeated offline reports, want 1", len(notifications))
	}

	m.ReportOutcome(true)
	if m.Offline() {
		t.Error("monitor still offline after success report")
	}
	if len(notifications) != 2 || notifications[1] != false {
		t.Fatalf("notifications = %v, want [true false]", notifications)
	}
}

func TestProbeFoldsResultIntoState(t *testing.T) {
	probeErr := errors.New("dial tcp: connection refused")
	var fail bool
	m := New(func(ctx context.Context) error {
		if fail {
			return probeErr
		}
		return nil
	})

	fail = true
	if m.Probe(context.Background()) {
		t.Error("Probe returned true for a failing probe")
	}
	if !m.Offline() {
		t.Error("failed probe did not mark the monitor offline")
	}

	fail = false
	if !m.Probe(context.Background()) {
		t.Error("Probe returned false for a succeeding probe")
	}
	if m.Offline() {
		t.Error("successful probe did not mark the monitor online")
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	m := New(nil)

	var count int
	unsubscribe := m.Subscribe(func(bool) { count++ })

	m.ReportOutcome(false)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	unsubscribe()
	m.ReportOutcome(true)
	if count != 1 {
		t.Fatalf("count = %d after unsubscribe, want 1", count)
	}
}

func TestStaleUnsubscribeKeepsCurrentListener(t *testing.T) {
	m := New(nil)

	staleUnsubscribe := m.Subscribe(func(bool) {
		t.Error("replaced listener was notified")
	})

	var count int
	m.Subscribe(func(bool) { count++ })

	// Unsubscribing the replaced registration must not clear the new one
	staleUnsubscribe()

	m.ReportOutcome(false)
	if count != 1 {
		t.Fatalf("current listener notified %d times, want 1", count)
	}
}
