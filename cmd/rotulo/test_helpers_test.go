package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	dataDir    string
}

// setupCLITestEnv writes a self-contained config file pointing at temp
// directories. The probe URL targets a closed local port so commands always
// take the offline path without waiting on a real network.
func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()

	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	logDir := filepath.Join(base, "logs")
	configPath := filepath.Join(base, "config.toml")

	doc := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[remote]
base_url = "https://records.test"
app_id = "inventario-test"

[storage]
endpoint = "blobs.test:9000"
bucket = "rotulos-test"

[connectivity]
probe_url = "http://127.0.0.1:1/generate_204"
probe_timeout = 1
`, dataDir, logDir)

	if err := os.WriteFile(configPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliTestEnv{configPath: configPath, dataDir: dataDir}
}

func runCLI(t *testing.T, env cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
