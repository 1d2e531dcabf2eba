// Package notifications delivers push notifications about queue and sync
// activity through ntfy. When no topic is configured every notification is
// a silent no-op, so callers never need to branch on configuration.
package notifications
