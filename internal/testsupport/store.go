package testsupport

import (
	"context"
	"encoding/json"
	"testing"

	"rotulo/internal/config"
	"rotulo/internal/inventory"
	"rotulo/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// EnqueueForm marshals a form into a new queue item with the provided
// pending blobs and appends it to the store.
func EnqueueForm(t testing.TB, store *queue.Store, form inventory.Form, actor string, blobs ...[]byte) *queue.Item {
	t.Helper()

	payload, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal form: %v", err)
	}
	item := &queue.Item{
		Kind:         queue.KindRecordSubmission,
		BusinessCode: form.Code,
		PayloadJSON:  string(payload),
		SubmittedBy:  actor,
	}
	for i, blob := range blobs {
		item.Attachments = append(item.Attachments, queue.Attachment{Position: i, Pending: blob})
	}
	if _, err := store.Enqueue(context.Background(), item); err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return item
}
