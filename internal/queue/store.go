package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rotulo/internal/config"
	"rotulo/internal/services"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "open", "ensure directories", err)
	}

	dbPath := cfg.QueueDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "open", dbPath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorage, "queue", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStorage, "queue", "open", "init schema", err)
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the queue database file path.
func (s *Store) Path() string {
	return s.path
}

// Enqueue durably appends an item and returns its assigned identifier.
// The item's ID and timestamps are populated on success.
func (s *Store) Enqueue(ctx context.Context, item *Item) (int64, error) {
	if item == nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "enqueue", "item is nil", nil)
	}
	if item.Kind == "" {
		item.Kind = KindRecordSubmission
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "enqueue", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO queue_items (kind, business_code, payload_json, submitted_by, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		string(item.Kind),
		item.BusinessCode,
		item.PayloadJSON,
		nullableString(item.SubmittedBy),
		timestamp,
		timestamp,
	)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "enqueue", "insert item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "enqueue", "last insert id", err)
	}

	if err := insertAttachments(ctx, tx, id, item.Attachments); err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "enqueue", "insert attachments", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "enqueue", "commit", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return id, nil
}

// ReadAll returns the current queue contents in insertion (FIFO) order.
func (s *Store) ReadAll(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, kind, business_code, payload_json, submitted_by, created_at, updated_at
         FROM queue_items ORDER BY id`,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "read-all", "query items", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "queue", "read-all", "scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "read-all", "iterate items", err)
	}

	for _, item := range items {
		attachments, err := s.loadAttachments(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		item.Attachments = attachments
	}
	return items, nil
}

// GetByID fetches a queue item by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, kind, business_code, payload_json, submitted_by, created_at, updated_at
         FROM queue_items WHERE id = ?`,
		id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "get", "scan item", err)
	}
	attachments, err := s.loadAttachments(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.Attachments = attachments
	return item, nil
}

// Update replaces a persisted item whole: row fields and all attachments are
// rewritten in one transaction so readers never observe partial progress.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil || item.ID == 0 {
		return services.Wrap(services.ErrStorage, "queue", "update", "item has no id", nil)
	}
	item.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStorage, "queue", "update", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`UPDATE queue_items
         SET kind = ?, business_code = ?, payload_json = ?, submitted_by = ?, updated_at = ?
         WHERE id = ?`,
		string(item.Kind),
		item.BusinessCode,
		item.PayloadJSON,
		nullableString(item.SubmittedBy),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return services.Wrap(services.ErrStorage, "queue", "update", "update item", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_attachments WHERE item_id = ?`, item.ID); err != nil {
		return services.Wrap(services.ErrStorage, "queue", "update", "clear attachments", err)
	}
	if err := insertAttachments(ctx, tx, item.ID, item.Attachments); err != nil {
		return services.Wrap(services.ErrStorage, "queue", "update", "insert attachments", err)
	}

	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStorage, "queue", "update", "commit", err)
	}
	return nil
}

// RemoveByID deletes an item. Removing an absent id is a no-op, which makes
// removal after a confirmed remote write safe to retry.
func (s *Store) RemoveByID(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM queue_items WHERE id = ?`, id); err != nil {
		return services.Wrap(services.ErrStorage, "queue", "remove", fmt.Sprintf("item %d", id), err)
	}
	return nil
}

// Clear removes all items from the queue irreversibly.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_items`)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "clear", "", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "clear", "rows affected", err)
	}
	return affected, nil
}

// Count returns the number of pending items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM queue_items`).Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrStorage, "queue", "count", "", err)
	}
	return count, nil
}

// CheckHealth returns diagnostic information about the queue database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("queue database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat queue database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("queue database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("queue database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping queue database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'queue_items'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return health, nil
		}
		health.Error = err.Error()
		return health, fmt.Errorf("query table info: %w", err)
	}
	health.TableExists = true

	row = s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM queue_items")
	if err := row.Scan(&health.TotalItems); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count queue items: %w", err)
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func (s *Store) loadAttachments(ctx context.Context, itemID int64) ([]Attachment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT position, url, storage_path, pending_blob
         FROM item_attachments WHERE item_id = ? ORDER BY position`,
		itemID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "read-all", "query attachments", err)
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.Position, &att.URL, &att.StoragePath, &att.Pending); err != nil {
			return nil, services.Wrap(services.ErrStorage, "queue", "read-all", "scan attachment", err)
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "queue", "read-all", "iterate attachments", err)
	}
	return attachments, nil
}

func insertAttachments(ctx context.Context, tx *sql.Tx, itemID int64, attachments []Attachment) error {
	for _, att := range attachments {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO item_attachments (item_id, position, url, storage_path, pending_blob)
             VALUES (?, ?, ?, ?, ?)`,
			itemID,
			att.Position,
			att.URL,
			att.StoragePath,
			att.Pending,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id          int64
		kind        string
		code        string
		payload     string
		submittedBy sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &kind, &code, &payload, &submittedBy, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		Kind:         Kind(kind),
		BusinessCode: code,
		PayloadJSON:  payload,
		SubmittedBy:  submittedBy.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
