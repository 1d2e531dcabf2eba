// Package config loads and validates the rotulo configuration file.
//
// Configuration lives in a single TOML file (~/.config/rotulo/config.toml
// by default, or ./rotulo.toml in the working directory). Load applies
// defaults, expands paths, and validates the result; `rotulo config init`
// writes the embedded sample for editing.
package config
