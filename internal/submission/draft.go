package submission

import (
	"time"

	"rotulo/internal/inventory"
	"rotulo/internal/queue"
)

// Draft is an in-progress capture. Attachments accumulate in the arena as
// the operator takes photos; each slot either holds normalized JPEG bytes
// awaiting upload or references an already-uploaded object.
type Draft struct {
	Form        inventory.Form
	Attachments []queue.Attachment
}

// NewDraft starts an empty capture.
func NewDraft() *Draft {
	return &Draft{}
}

// EnsureCode assigns the business code on first use. The code sticks for
// the life of the draft so photos uploaded before submission land under
// the same storage prefix as the record they belong to.
func (d *Draft) EnsureCode(now time.Time) string {
	if d.Form.Code == "" {
		d.Form.Code = inventory.NewBusinessCode(now)
	}
	return d.Form.Code
}

// AttachmentCount reports how many photo slots the draft holds.
func (d *Draft) AttachmentCount() int {
	return len(d.Attachments)
}

// uploadedPhotos returns the URL and storage path lists for slots that
// already resolved to a remote object, in position order.
func (d *Draft) uploadedPhotos() (urls, paths []string) {
	for _, att := range d.Attachments {
		if att.Uploaded() {
			urls = append(urls, att.URL)
			paths = append(paths, att.StoragePath)
		}
	}
	return urls, paths
}
