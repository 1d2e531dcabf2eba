// Package queue persists pending inventory submissions in SQLite.
//
// The Store is the local durable queue: submissions captured while offline
// are appended here together with their normalized photo blobs, survive
// process restarts, and are drained in FIFO order by the sync reconciler.
// Items are only ever replaced whole (replace-on-write); partial updates
// are not possible, so readers never observe a torn item. Removal after a
// confirmed remote write is idempotent, which keeps a crash between write
// and removal an at-most-duplicate-retry, never a loss.
//
// Schema changes bump the version in schema.go; users clear the queue
// database to adopt a new schema.
package queue
