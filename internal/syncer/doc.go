// Package syncer drains the local durable queue into the remote stores.
//
// A reconciliation run walks queued submissions in arrival order, finishes
// any photo uploads the capture path could not complete, writes each record
// remotely, and removes the item only after its write succeeds. Upload
// progress is persisted back into the queue as it happens, so an
// interrupted run resumes where it stopped instead of re-uploading.
// Object paths are derived from the business code and slot position, which
// makes repeated upload attempts overwrite rather than duplicate.
package syncer
