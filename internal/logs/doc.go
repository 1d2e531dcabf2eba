// Package logs provides file tailing for CLI diagnostics.
//
// It streams log files with bounded memory usage, supports negative offsets
// for "tail last N lines" operations, and powers follow-mode updates for
// `rotulo logs --follow`. Lines can be filtered by the component and level
// fields the logging package writes, in both console and JSON form.
// Callers supply context deadlines so background polling shuts down cleanly
// when the CLI exits.
package logs
