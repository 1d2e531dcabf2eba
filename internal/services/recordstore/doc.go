// Package recordstore talks to the remote inventory record API.
//
// The client performs authoritative record writes, listings, and deletions
// against the per-application records collection. Failures are classified
// with the shared fault markers so callers can distinguish retryable
// transport trouble from terminal rejections.
package recordstore
