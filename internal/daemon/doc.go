// Package daemon runs the background watch mode: it holds the connectivity
// monitor, triggers a sync run on every offline-to-online transition, and
// retries on a timer while queued work remains. A file lock enforces a
// single instance per data directory.
package daemon
