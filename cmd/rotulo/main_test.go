package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite refuses to clobber.
	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
}

func TestConfigShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "https://records.test")
	requireContains(t, out, "rotulos-test")
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "login", "Laura", "Gómez")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Logged in as Laura Gómez")

	out, _, err = runCLI(t, env, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	requireContains(t, out, "Laura Gómez")

	if _, _, err = runCLI(t, env, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	out, _, err = runCLI(t, env, "whoami")
	if err != nil {
		t.Fatalf("whoami after logout: %v", err)
	}
	requireContains(t, out, "Not logged in")
}

func TestCaptureRequiresLogin(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "capture",
		"--floor", "3", "--service", "urgencias", "--signal-type", "direccional",
		"--typology", "bandera", "--material", "acrilico")
	if err == nil {
		t.Fatal("expected capture to require a session")
	}
	requireContains(t, err.Error(), "not logged in")
}

func TestCaptureOfflineQueuesRecord(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "login", "laura"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, _, err := runCLI(t, env, "capture",
		"--floor", "3", "--service", "urgencias", "--signal-type", "direccional",
		"--typology", "bandera", "--material", "acrilico", "--quantity", "2.9")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	requireContains(t, out, "saved offline")

	out, _, err = runCLI(t, env, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "ROT-")
	requireContains(t, out, "laura")

	out, _, err = runCLI(t, env, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Queued records: 1")
	requireContains(t, out, "Online:         no")
}

func TestCaptureRejectsMissingRequiredFields(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "login", "laura"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, _, err := runCLI(t, env, "capture", "--floor", "3")
	if err == nil {
		t.Fatal("expected capture to reject missing required fields")
	}
	requireContains(t, err.Error(), "servicio")
}

func TestSyncOfflineFailsFast(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "login", "laura"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := runCLI(t, env, "capture",
		"--floor", "3", "--service", "urgencias", "--signal-type", "direccional",
		"--typology", "bandera", "--material", "acrilico"); err != nil {
		t.Fatalf("capture: %v", err)
	}

	_, _, err := runCLI(t, env, "sync")
	if err == nil {
		t.Fatal("expected sync to fail while offline")
	}
	requireContains(t, err.Error(), "offline")
}

func TestQueueClearRequiresAdminAndForce(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "login", "laura"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := runCLI(t, env, "queue", "clear", "--force"); err == nil {
		t.Fatal("expected clear to require an admin session")
	}

	if _, _, err := runCLI(t, env, "login", "laura", "--admin"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if _, _, err := runCLI(t, env, "queue", "clear"); err == nil {
		t.Fatal("expected clear to require --force")
	}
	out, _, err := runCLI(t, env, "queue", "clear", "--force")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Discarded 0 queued records")
}

func TestQueueHealthReportsCleanDatabase(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "queue", "health")
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Integrity: yes")
	requireContains(t, out, "Items:     0")
}
