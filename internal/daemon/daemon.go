package daemon

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"rotulo/internal/config"
	"rotulo/internal/connectivity"
	"rotulo/internal/logging"
	"rotulo/internal/notifications"
	"rotulo/internal/queue"
	"rotulo/internal/services"
	"rotulo/internal/syncer"
)

// Daemon coordinates background syncing and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *queue.Store
	monitor    *connectivity.Monitor
	reconciler *syncer.Reconciler

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Online       bool
	Pending      int
	QueueDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, monitor *connectivity.Monitor, reconciler *syncer.Reconciler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || monitor == nil || reconciler == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, monitor, reconciler, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "rotulo.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		monitor:    monitor,
		reconciler: reconciler,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, starts the connectivity monitor, and
// launches the watch loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrStorage, "daemon", "start", "acquire instance lock", err)
	}
	if !ok {
		return errors.New("another rotulo watch instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.monitor.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return err
	}
	d.cancel = cancel

	d.wg.Add(1)
	go d.watchLoop(runCtx)

	d.running.Store(true)
	d.logger.Info("watch daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.Bool("auto_sync", d.cfg.Sync.AutoSync),
	)
	return nil
}

// Stop halts the watch loop and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.monitor.Stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("watch daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
}

// Close stops the daemon and closes the queue store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// watchLoop reacts to connectivity transitions and retries on a timer while
// queued work remains.
func (d *Daemon) watchLoop(ctx context.Context) {
	defer d.wg.Done()

	events := d.monitor.Subscribe()

	interval := time.Duration(d.cfg.Sync.RetryInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Drain anything left over from before the daemon started.
	d.maybeReconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == connectivity.WentOnline {
				d.logger.Info("connectivity restored",
					logging.String(logging.FieldEventType, "went_online"),
				)
				d.maybeReconcile(ctx)
			}
		case <-ticker.C:
			d.maybeReconcile(ctx)
		}
	}
}

// maybeReconcile runs a sync when auto-sync is enabled, the device is
// online, and the queue holds work. Losing the run guard to a manual sync
// is fine; the queued work is being drained either way.
func (d *Daemon) maybeReconcile(ctx context.Context) {
	if !d.cfg.Sync.AutoSync {
		return
	}
	if !d.monitor.Online() {
		return
	}
	pending, err := d.store.Count(ctx)
	if err != nil {
		d.logger.Error("failed to count queued items", logging.Error(err))
		return
	}
	if pending == 0 {
		return
	}

	report, err := d.reconciler.Reconcile(ctx)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyRunning):
			d.logger.Debug("sync already in progress, skipping")
		case errors.Is(err, services.ErrOffline):
			d.logger.Debug("device went offline before the sync could start")
		default:
			d.logger.Error("background sync failed", logging.Error(err))
		}
		return
	}
	if report.Synced > 0 || len(report.Failures) > 0 {
		d.logger.Info("background sync finished",
			logging.String(logging.FieldSyncRunID, report.RunID),
			logging.Int("synced", report.Synced),
			logging.Int("failed", len(report.Failures)),
			logging.Int("pending", report.Pending),
		)
	}
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	pending, err := d.store.Count(ctx)
	if err != nil {
		pending = -1
	}
	return Status{
		Running:      d.running.Load(),
		Online:       d.monitor.Online(),
		Pending:      pending,
		QueueDBPath:  d.cfg.QueueDBPath(),
		LockFilePath: d.lockPath,
	}
}
