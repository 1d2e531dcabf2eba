package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rotulo/internal/logs"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rotulo.log")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset == 0 {
		t.Fatal("expected offset to advance")
	}
}

func TestTailMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotulo.log")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %#v", result)
	}
}

func TestTailFiltersByComponent(t *testing.T) {
	path := writeLog(t,
		"2026-03-14T10:00:00Z INFO syncer: sync run started queued=2\n"+
			"2026-03-14T10:00:01Z INFO queue: item enqueued item_id=7\n"+
			"2026-03-14T10:00:02Z INFO syncer: sync run finished synced=2\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: -1, Limit: 10, Component: "syncer",
	})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 syncer lines, got %#v", result.Lines)
	}
	for _, line := range result.Lines {
		if want := "syncer:"; !strings.Contains(line, want) {
			t.Fatalf("line %q does not mention %q", line, want)
		}
	}
}

func TestTailFiltersByMinLevel(t *testing.T) {
	path := writeLog(t,
		"2026-03-14T10:00:00Z DEBUG daemon: sync already in progress, skipping\n"+
			"2026-03-14T10:00:01Z INFO syncer: sync run started queued=1\n"+
			"2026-03-14T10:00:02Z WARN syncer: queued item failed to sync, keeping it for the next run item_id=3\n"+
			"2026-03-14T10:00:03Z ERROR daemon: background sync failed\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: -1, Limit: 10, MinLevel: "warn",
	})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected WARN and ERROR lines only, got %#v", result.Lines)
	}
}

func TestTailFiltersJSONLines(t *testing.T) {
	path := writeLog(t,
		`{"ts":"2026-03-14T10:00:00Z","level":"info","msg":"sync run started","component":"syncer"}`+"\n"+
			`{"ts":"2026-03-14T10:00:01Z","level":"warn","msg":"database integrity check failed","component":"queue"}`+"\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: -1, Limit: 10, Component: "queue", MinLevel: "warn",
	})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 1 || !strings.Contains(result.Lines[0], "integrity") {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
}

func TestTailFilteredLinesStillAdvanceOffset(t *testing.T) {
	content := "2026-03-14T10:00:00Z INFO queue: item enqueued item_id=7\n"
	path := writeLog(t, content)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: 0, Limit: 10, Component: "syncer",
	})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no matching lines, got %#v", result.Lines)
	}
	if result.Offset != int64(len(content)) {
		t.Fatalf("expected offset %d past the filtered line, got %d", len(content), result.Offset)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", result.Lines)
	}

	done := make(chan struct{})
	go func(offset int64) {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Errorf("unexpected follow lines: %#v", res.Lines)
		}
		close(done)
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}
