// Package inventory defines the signage inventory record model and the
// pure functions around it: required-field validation, quantity
// normalization, business-code generation, and the idempotent storage
// paths used for photo uploads.
//
// JSON tags preserve the wire field names of the remote record API
// (Spanish, matching the original data set).
package inventory
