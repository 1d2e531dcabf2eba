// Package identity tracks who is submitting records on this device.
//
// Sessions are plain local state, not authentication: the session file
// records the operator name stamped into each record's responsable field
// and whether administrative commands are unlocked. The file is versioned
// so later releases can migrate old sessions in place.
package identity
