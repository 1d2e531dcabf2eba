package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rotulo/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rotulo.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[remote]
base_url = "https://records.example.com/"
app_id = "inventario-test"

[storage]
endpoint = "minio.example.com:9000"
bucket = "rotulos"

[capture]
max_image_width = 800
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config at %q", resolved)
	}
	if cfg.Remote.BaseURL != "https://records.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Remote.BaseURL)
	}
	if cfg.Capture.MaxImageWidth != 800 {
		t.Fatalf("expected override, got %d", cfg.Capture.MaxImageWidth)
	}
	if cfg.Capture.JPEGQuality != 70 {
		t.Fatalf("expected default quality, got %d", cfg.Capture.JPEGQuality)
	}
	if cfg.Capture.MaxAttachments != 3 {
		t.Fatalf("expected default attachment cap, got %d", cfg.Capture.MaxAttachments)
	}
}

func TestLoadRejectsMissingRemote(t *testing.T) {
	path := writeConfig(t, `
[storage]
endpoint = "minio.example.com:9000"
bucket = "rotulos"
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing remote.base_url")
	}
	if !strings.Contains(err.Error(), "remote.base_url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsBadQuality(t *testing.T) {
	path := writeConfig(t, `
[remote]
base_url = "https://records.example.com"

[storage]
endpoint = "minio.example.com:9000"
bucket = "rotulos"

[capture]
jpeg_quality = 0
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for jpeg_quality = 0")
	}
}

func TestLoadRejectsAttachmentCapAboveRecordLimit(t *testing.T) {
	path := writeConfig(t, `
[remote]
base_url = "https://records.example.com"

[storage]
endpoint = "minio.example.com:9000"
bucket = "rotulos"

[capture]
max_attachments = 5
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for max_attachments = 5")
	}
	if !strings.Contains(err.Error(), "capture.max_attachments") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueueDBPathUnderDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/tmp/rotulo-test"
	if got := cfg.QueueDBPath(); got != filepath.Join("/tmp/rotulo-test", "queue.db") {
		t.Fatalf("unexpected queue db path %q", got)
	}
}
