// Package services defines the fault taxonomy shared by the submission
// coordinator, the sync reconciler, and the remote store clients.
//
// Faults are sentinel errors wrapped with component context via Wrap.
// Callers classify failures with errors.Is against the exported markers;
// Retryable reports whether re-invoking the operation later can succeed
// without user intervention.
package services
