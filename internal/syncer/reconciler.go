package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"rotulo/internal/config"
	"rotulo/internal/imaging"
	"rotulo/internal/inventory"
	"rotulo/internal/logging"
	"rotulo/internal/notifications"
	"rotulo/internal/queue"
	"rotulo/internal/services"
	"rotulo/internal/services/blobstore"
	"rotulo/internal/services/recordstore"
)

// Reachability is the connectivity surface consulted before a run starts.
type Reachability interface {
	Online() bool
}

// Failure describes one queued item that could not be synced this run.
// The item stays in the queue for the next attempt.
type Failure struct {
	ItemID       int64
	BusinessCode string
	Err          error
}

// Report summarizes a reconciliation run.
type Report struct {
	RunID     string
	Synced    int
	Pending   int
	Failures  []Failure
	StartedAt time.Time
	Duration  time.Duration
}

// Reconciler drains the durable queue into the remote stores.
type Reconciler struct {
	cfg      *config.Config
	store    *queue.Store
	records  recordstore.Store
	blobs    blobstore.Store
	network  Reachability
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time

	lockPath string

	mu      sync.Mutex
	running bool
}

// New wires a reconciler from its collaborators.
func New(
	cfg *config.Config,
	store *queue.Store,
	records recordstore.Store,
	blobs blobstore.Store,
	network Reachability,
	notifier notifications.Service,
	logger *slog.Logger,
) *Reconciler {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Reconciler{
		cfg:      cfg,
		store:    store,
		records:  records,
		blobs:    blobs,
		network:  network,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "syncer"),
		now:      time.Now,
		lockPath: cfg.SyncLockPath(),
	}
}

// Running reports whether a reconciliation run is in progress.
func (r *Reconciler) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Reconcile drains the queue once. At most one run executes at a time,
// anywhere: the mutex rejects a second caller on this reconciler, and a
// file lock next to the queue database rejects runs from other processes
// (a manual sync racing the watch daemon). Runs also fail fast when the
// device is offline so callers can retry on the next connectivity
// transition rather than burn timeouts item by item.
func (r *Reconciler) Reconcile(ctx context.Context) (*Report, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, services.Wrap(services.ErrAlreadyRunning, "syncer", "reconcile", "a sync run is already in progress", nil)
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if !r.network.Online() {
		return nil, services.Wrap(services.ErrOffline, "syncer", "reconcile", "device is offline", nil)
	}

	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "syncer", "reconcile", "acquire sync lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrAlreadyRunning, "syncer", "reconcile", "another process is draining the queue", nil)
	}
	defer func() { _ = lock.Unlock() }()

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
	}
	logger := r.logger.With(logging.String(logging.FieldSyncRunID, report.RunID))

	items, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := r.notifier.NotifySyncStarted(ctx, len(items)); err != nil {
			logger.Warn("sync start notification failed", logging.Error(err))
		}
	}
	logger.Info("sync run started",
		logging.String(logging.FieldEventType, "sync_run_started"),
		logging.Int("queued", len(items)),
	)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := r.syncItem(ctx, logger, item); err != nil {
			report.Failures = append(report.Failures, Failure{
				ItemID:       item.ID,
				BusinessCode: item.BusinessCode,
				Err:          err,
			})
			logger.Warn("queued item failed to sync, keeping it for the next run",
				logging.Error(err),
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String(logging.FieldBusinessCode, item.BusinessCode),
			)
			continue
		}
		report.Synced++
	}

	if pending, err := r.store.Count(ctx); err == nil {
		report.Pending = pending
	}
	report.Duration = r.now().Sub(report.StartedAt)

	logger.Info("sync run finished",
		logging.String(logging.FieldEventType, "sync_run_finished"),
		logging.Int("synced", report.Synced),
		logging.Int("failed", len(report.Failures)),
		logging.Int("pending", report.Pending),
		logging.Duration("duration", report.Duration),
	)
	if len(items) > 0 {
		if err := r.notifier.NotifySyncCompleted(ctx, report.Synced, len(report.Failures), report.Duration); err != nil {
			logger.Warn("sync completion notification failed", logging.Error(err))
		}
	}
	return report, nil
}

// syncItem finishes one queued submission: uploads whatever blobs are still
// pending, writes the record, and removes the item. Progress is persisted
// after every upload so an interruption never repeats finished work.
func (r *Reconciler) syncItem(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	var record inventory.Record
	if err := json.Unmarshal([]byte(item.PayloadJSON), &record); err != nil {
		return services.Wrap(services.ErrStorage, "syncer", "sync-item", "decode queued payload", err)
	}
	if record.Code == "" {
		record.Code = item.BusinessCode
	}
	if strings.TrimSpace(record.SubmittedBy) == "" {
		record.SubmittedBy = item.SubmittedBy
	}

	for i := range item.Attachments {
		att := &item.Attachments[i]
		if att.Uploaded() {
			continue
		}
		path := inventory.AttachmentPath(r.cfg.Remote.AppID, record.Code, att.Position)
		url, err := r.blobs.Upload(ctx, path, att.Pending, imaging.ContentType)
		if err != nil {
			return err
		}
		att.URL = url
		att.StoragePath = path
		att.Pending = nil
		if err := r.store.Update(ctx, item); err != nil {
			return err
		}
	}

	record.PhotoURLs = record.PhotoURLs[:0]
	record.PhotoPaths = record.PhotoPaths[:0]
	for _, att := range item.Attachments {
		record.PhotoURLs = append(record.PhotoURLs, att.URL)
		record.PhotoPaths = append(record.PhotoPaths, att.StoragePath)
	}

	storeID, err := r.records.Write(ctx, &record)
	if err != nil {
		return err
	}
	if err := r.store.RemoveByID(ctx, item.ID); err != nil {
		return err
	}

	logger.Info("queued item synced",
		logging.String(logging.FieldEventType, "item_synced"),
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldBusinessCode, record.Code),
		logging.String("store_id", storeID),
		logging.Int("photos", len(record.PhotoURLs)),
	)
	return nil
}

// WithClock overrides the reconciler's clock (used in tests).
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}
