// Package testsupport provides shared fixtures for package tests: temp-dir
// configs, queue stores, and in-memory fakes for the remote collaborators.
package testsupport

import (
	"path/filepath"
	"testing"

	"rotulo/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Remote.BaseURL = "https://records.test"
	cfg.Remote.AppID = "inventario-test"
	cfg.Storage.Endpoint = "blobs.test:9000"
	cfg.Storage.Bucket = "rotulos-test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMaxAttachments overrides the attachment cap on the test config.
func WithMaxAttachments(n int) ConfigOption {
	return func(c *config.Config) {
		c.Capture.MaxAttachments = n
	}
}

// WithMaxImageWidth overrides the normalizer width bound on the test config.
func WithMaxImageWidth(px int) ConfigOption {
	return func(c *config.Config) {
		c.Capture.MaxImageWidth = px
	}
}
