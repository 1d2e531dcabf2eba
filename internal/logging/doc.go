// Package logging builds the slog loggers used across rotulo.
//
// Two handler formats are supported: a human-oriented console handler
// (colorized when stdout is a terminal) and a machine-oriented JSON
// handler. Component loggers attach a "component" attribute that the
// console handler renders as a message prefix.
package logging
