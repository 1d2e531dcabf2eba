package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

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

// Reachability is the connectivity surface the coordinator consults before
// choosing the direct or queued path.
type Reachability interface {
	Online() bool
}

// Outcome names where a submission ended up.
type Outcome string

const (
	// OutcomeStored means the record was written to the remote store.
	OutcomeStored Outcome = "stored"
	// OutcomeQueued means the record was enqueued for a later sync.
	OutcomeQueued Outcome = "queued"
)

// Result reports a successful submission.
type Result struct {
	Outcome      Outcome
	BusinessCode string
	StoreID      string
	QueueItemID  int64
}

// Coordinator routes completed forms to the remote store or the local queue.
type Coordinator struct {
	cfg        *config.Config
	store      *queue.Store
	normalizer *imaging.Normalizer
	records    recordstore.Store
	blobs      blobstore.Store
	network    Reachability
	notifier   notifications.Service
	logger     *slog.Logger
	now        func() time.Time
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(
	cfg *config.Config,
	store *queue.Store,
	normalizer *imaging.Normalizer,
	records recordstore.Store,
	blobs blobstore.Store,
	network Reachability,
	notifier notifications.Service,
	logger *slog.Logger,
) *Coordinator {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Coordinator{
		cfg:        cfg,
		store:      store,
		normalizer: normalizer,
		records:    records,
		blobs:      blobs,
		network:    network,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "submission"),
		now:        time.Now,
	}
}

// AttachPhoto normalizes a captured image into the draft's next attachment
// slot. The cap is enforced before any decoding work happens. When the
// device is online the blob uploads immediately and the slot keeps only the
// resulting URL; otherwise the normalized bytes wait in the draft. Returns
// the zero-based slot index.
func (c *Coordinator) AttachPhoto(ctx context.Context, draft *Draft, source io.Reader) (int, error) {
	limit := c.cfg.Capture.MaxAttachments
	if draft.AttachmentCount() >= limit {
		return 0, services.Wrap(services.ErrCapacity, "submission", "attach-photo",
			fmt.Sprintf("record already holds %d photos (limit %d)", draft.AttachmentCount(), limit), nil)
	}

	code := draft.EnsureCode(c.now())

	blob, err := c.normalizer.Normalize(ctx, source)
	if err != nil {
		return 0, err
	}

	index := draft.AttachmentCount()
	attachment := queue.Attachment{Position: index, Pending: blob}

	if c.network.Online() {
		path := inventory.AttachmentPath(c.cfg.Remote.AppID, code, index)
		url, err := c.blobs.Upload(ctx, path, blob, imaging.ContentType)
		if err != nil {
			// Keep the normalized bytes; the slot uploads during sync.
			c.logger.Warn("immediate photo upload failed, keeping blob for sync",
				logging.Error(err),
				logging.String(logging.FieldBusinessCode, code),
				logging.Int("attachment_index", index),
			)
		} else {
			attachment = queue.Attachment{Position: index, URL: url, StoragePath: path}
		}
	}

	draft.Attachments = append(draft.Attachments, attachment)
	c.logger.Info("photo attached",
		logging.String(logging.FieldEventType, "photo_attached"),
		logging.String(logging.FieldBusinessCode, code),
		logging.Int("attachment_index", index),
		logging.Bool("uploaded", attachment.Uploaded()),
	)
	return index, nil
}

// Submit validates the draft and routes it to the remote store or the
// durable queue. On every failure path the draft is left intact.
func (c *Coordinator) Submit(ctx context.Context, draft *Draft, actor string) (*Result, error) {
	if missing := inventory.MissingRequired(draft.Form); len(missing) > 0 {
		return nil, services.Wrap(services.ErrValidation, "submission", "submit",
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil)
	}

	draft.Form.Quantity = inventory.ClampQuantity(draft.Form.Quantity)
	now := c.now()
	code := draft.EnsureCode(now)

	record := inventory.Record{
		Form:        draft.Form,
		Date:        inventory.CaptureDate(now),
		SubmittedBy: strings.TrimSpace(actor),
	}

	if c.network.Online() {
		return c.submitDirect(ctx, draft, record, code)
	}
	return c.enqueue(ctx, draft, record, code)
}

// submitDirect uploads any still-pending photos and writes the record. A
// failure surfaces to the caller instead of silently queueing: the operator
// asked for an online write and should know it did not happen.
func (c *Coordinator) submitDirect(ctx context.Context, draft *Draft, record inventory.Record, code string) (*Result, error) {
	for i := range draft.Attachments {
		att := &draft.Attachments[i]
		if att.Uploaded() {
			continue
		}
		path := inventory.AttachmentPath(c.cfg.Remote.AppID, code, att.Position)
		url, err := c.blobs.Upload(ctx, path, att.Pending, imaging.ContentType)
		if err != nil {
			return nil, err
		}
		att.URL = url
		att.StoragePath = path
		att.Pending = nil
	}

	record.PhotoURLs, record.PhotoPaths = draft.uploadedPhotos()

	storeID, err := c.records.Write(ctx, &record)
	if err != nil {
		return nil, err
	}

	c.logger.Info("record stored",
		logging.String(logging.FieldEventType, "record_stored"),
		logging.String(logging.FieldBusinessCode, code),
		logging.String("store_id", storeID),
		logging.Int("photos", len(record.PhotoURLs)),
	)
	return &Result{Outcome: OutcomeStored, BusinessCode: code, StoreID: storeID}, nil
}

// enqueue persists the submission in the durable queue. Photo slots travel
// as attachments so a later sync can finish the uploads; the payload keeps
// only the form and capture metadata.
func (c *Coordinator) enqueue(ctx context.Context, draft *Draft, record inventory.Record, code string) (*Result, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "submission", "enqueue", "encode record payload", err)
	}

	item := &queue.Item{
		Kind:         queue.KindRecordSubmission,
		BusinessCode: code,
		PayloadJSON:  string(payload),
		SubmittedBy:  record.SubmittedBy,
		Attachments:  draft.Attachments,
	}
	itemID, err := c.store.Enqueue(ctx, item)
	if err != nil {
		if notifyErr := c.notifier.NotifyStorageFault(ctx, err); notifyErr != nil {
			c.logger.Warn("storage fault notification failed", logging.Error(notifyErr))
		}
		return nil, err
	}

	pending, countErr := c.store.Count(ctx)
	if countErr != nil {
		pending = -1
	}
	c.logger.Info("record queued",
		logging.String(logging.FieldEventType, "record_queued"),
		logging.String(logging.FieldBusinessCode, code),
		logging.Int64(logging.FieldItemID, itemID),
		logging.Int("pending", pending),
	)
	if err := c.notifier.NotifyQueueSaved(ctx, code, pending); err != nil {
		c.logger.Warn("queue notification failed", logging.Error(err))
	}
	return &Result{Outcome: OutcomeQueued, BusinessCode: code, QueueItemID: itemID}, nil
}

// WithClock overrides the coordinator's clock (used in tests).
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}
