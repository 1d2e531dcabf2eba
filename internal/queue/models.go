package queue

import "time"

// Kind tags the work type of a queue item.
type Kind string

// KindRecordSubmission is the only work type currently queued: a completed
// inventory form awaiting its remote write.
const KindRecordSubmission Kind = "record_submission"

// Attachment is one photo slot of a queued submission. Either Pending holds
// the normalized JPEG bytes awaiting upload, or URL/StoragePath reference an
// already-uploaded object from a prior partial sync. The model tolerates
// both being set; an uploaded attachment is never re-uploaded.
type Attachment struct {
	Position    int
	URL         string
	StoragePath string
	Pending     []byte
}

// Uploaded reports whether the attachment already resolved to a remote URL.
func (a Attachment) Uploaded() bool {
	return a.URL != "" && a.StoragePath != ""
}

// Item is a unit of deferred work persisted in SQLite.
type Item struct {
	ID           int64
	Kind         Kind
	BusinessCode string
	PayloadJSON  string
	SubmittedBy  string
	Attachments  []Attachment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingUploads counts attachments that still need a blob upload.
func (i *Item) PendingUploads() int {
	count := 0
	for _, att := range i.Attachments {
		if !att.Uploaded() {
			count++
		}
	}
	return count
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}
