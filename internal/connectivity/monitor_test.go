package connectivity_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"rotulo/internal/connectivity"
	"rotulo/internal/logging"
	"rotulo/internal/testsupport"
)

func waitForEvent(t *testing.T, events <-chan connectivity.Event) connectivity.Event {
	t.Helper()
	select {
	case event, ok := <-events:
		if !ok {
			t.Fatal("event channel closed before event arrived")
		}
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reachability event")
	}
	return 0
}

func TestMonitorSeedsStateFromInitialProbe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reachable := &atomic.Bool{}
	reachable.Store(true)

	monitor := connectivity.NewMonitorWithProbe(cfg, logging.NewNop(), func(context.Context) bool {
		return reachable.Load()
	})
	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer monitor.Stop()

	if !monitor.Online() {
		t.Fatal("expected monitor to report online after successful initial probe")
	}
}

func TestMonitorEmitsTransitionEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reachable := &atomic.Bool{}

	monitor := connectivity.NewMonitorWithProbe(cfg, logging.NewNop(), func(context.Context) bool {
		return reachable.Load()
	})
	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer monitor.Stop()

	events := monitor.Subscribe()
	if monitor.Online() {
		t.Fatal("expected monitor to start offline")
	}

	reachable.Store(true)
	monitor.RequestProbe()
	if event := waitForEvent(t, events); event != connectivity.WentOnline {
		t.Fatalf("expected WentOnline, got %v", event)
	}
	if !monitor.Online() {
		t.Fatal("expected Online() to report true after transition")
	}

	reachable.Store(false)
	monitor.RequestProbe()
	if event := waitForEvent(t, events); event != connectivity.WentOffline {
		t.Fatalf("expected WentOffline, got %v", event)
	}
	if monitor.Online() {
		t.Fatal("expected Online() to report false after transition")
	}
}

func TestMonitorSkipsEventsWhenStateUnchanged(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	monitor := connectivity.NewMonitorWithProbe(cfg, logging.NewNop(), func(context.Context) bool {
		return true
	})
	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer monitor.Stop()

	events := monitor.Subscribe()
	monitor.RequestProbe()

	select {
	case event := <-events:
		t.Fatalf("expected no event for unchanged state, got %v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMonitorStopClosesSubscribers(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	monitor := connectivity.NewMonitorWithProbe(cfg, logging.NewNop(), func(context.Context) bool {
		return false
	})
	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	events := monitor.Subscribe()
	monitor.Stop()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected channel close, got event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscriber channel close")
	}
}
