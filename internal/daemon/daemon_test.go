package daemon_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"rotulo/internal/config"
	"rotulo/internal/connectivity"
	"rotulo/internal/daemon"
	"rotulo/internal/inventory"
	"rotulo/internal/logging"
	"rotulo/internal/notifications"
	"rotulo/internal/queue"
	"rotulo/internal/syncer"
	"rotulo/internal/testsupport"
)

type harness struct {
	cfg       *config.Config
	store     *queue.Store
	records   *testsupport.FakeRecordStore
	reachable *atomic.Bool
	monitor   *connectivity.Monitor
	daemon    *daemon.Daemon
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Sync.AutoSync = true
	cfg.Sync.RetryInterval = 1
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)
	records := &testsupport.FakeRecordStore{}
	blobs := &testsupport.FakeBlobStore{}

	reachable := &atomic.Bool{}
	monitor := connectivity.NewMonitorWithProbe(cfg, logging.NewNop(), func(context.Context) bool {
		return reachable.Load()
	})

	rec := syncer.New(cfg, store, records, blobs, monitor,
		notifications.NewService(cfg), logging.NewNop())

	d, err := daemon.New(cfg, store, monitor, rec, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return &harness{cfg: cfg, store: store, records: records, reachable: reachable, monitor: monitor, daemon: d}
}

func queuedForm(code string) inventory.Form {
	return inventory.Form{
		Code:        code,
		Floor:       "3",
		ServiceArea: "urgencias",
		SignalType:  "direccional",
		Typology:    "bandera",
		Material:    "acrilico",
		Quantity:    1,
	}
}

func waitForDrain(t *testing.T, store *queue.Store) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		count, err := store.Count(context.Background())
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the queue to drain")
}

func TestDaemonSyncsWhenConnectivityReturns(t *testing.T) {
	h := newHarness(t)
	testsupport.EnqueueForm(t, h.store, queuedForm("ROT-0001"), "laura")

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.daemon.Stop()

	if status := h.daemon.Status(context.Background()); status.Online {
		t.Fatal("expected daemon to start offline")
	}

	h.reachable.Store(true)
	h.monitor.RequestProbe()

	waitForDrain(t, h.store)
	if got := len(h.records.Records()); got != 1 {
		t.Fatalf("expected 1 synced record, got %d", got)
	}
}

func TestDaemonRetriesOnTimerWhileWorkRemains(t *testing.T) {
	h := newHarness(t)
	h.reachable.Store(true)

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.daemon.Stop()

	// Work arrives after startup with no connectivity transition; only the
	// retry ticker can pick it up.
	testsupport.EnqueueForm(t, h.store, queuedForm("ROT-0002"), "laura")
	waitForDrain(t, h.store)
}

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	h := newHarness(t)

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.daemon.Stop()

	second := connectivity.NewMonitorWithProbe(h.cfg, logging.NewNop(), func(context.Context) bool { return false })
	rec := syncer.New(h.cfg, h.store, h.records, &testsupport.FakeBlobStore{}, second,
		notifications.NewService(h.cfg), logging.NewNop())
	other, err := daemon.New(h.cfg, h.store, second, rec, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := other.Start(context.Background()); err == nil {
		other.Stop()
		t.Fatal("expected second instance to fail to start")
	}
}

func TestDaemonHonorsAutoSyncToggle(t *testing.T) {
	h := newHarness(t)
	h.cfg.Sync.AutoSync = false
	h.reachable.Store(true)
	testsupport.EnqueueForm(t, h.store, queuedForm("ROT-0003"), "laura")

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.daemon.Stop()

	time.Sleep(1500 * time.Millisecond)
	count, err := h.store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected queue untouched with auto-sync disabled, got %d items", count)
	}
	if h.records.WriteCalls() != 0 {
		t.Fatal("expected no remote writes with auto-sync disabled")
	}
}
