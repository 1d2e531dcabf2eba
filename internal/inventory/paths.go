package inventory

import (
	"fmt"

	"rotulo/internal/textutil"
)

// AttachmentFileName derives the object file name for an attachment slot.
// Index is zero-based; file names are one-based to match the original data
// set (ROT-0421_01.jpg).
func AttachmentFileName(code string, index int) string {
	return fmt.Sprintf("%s_%02d.jpg", textutil.SanitizeCode(code), index+1)
}

// AttachmentPath derives the storage object key for an attachment. The key
// is a pure function of app id, business code, and attachment index, so
// repeated upload attempts for the same slot converge on the same object
// instead of orphaning duplicates.
func AttachmentPath(appID, code string, index int) string {
	return fmt.Sprintf("rotulos/%s/%s/%s",
		textutil.SanitizeToken(appID),
		textutil.SanitizeCode(code),
		AttachmentFileName(code, index),
	)
}
