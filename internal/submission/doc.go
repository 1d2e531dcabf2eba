// Package submission coordinates turning a completed capture form into a
// durable outcome: a direct remote write when the device is online, or a
// queued item in the local durable queue when it is not.
//
// The coordinator owns the capture-side rules: required-field validation,
// quantity normalization, business code assignment, and the attachment cap.
// It never loses work on failure; a draft survives every failed operation
// so the operator can retry without re-entering data.
package submission
