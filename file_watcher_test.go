package dial

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcher_EmitsInitialContents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"album_art":true}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case data := <-ch:
		if !bytes.Equal(data, []byte(`{"album_art":true}`)) {
			t.Errorf("unexpected initial contents %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for initial emission")
	}
}

func TestFileWatcher_EmitsOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-ch // initial

	if err := os.WriteFile(path, []byte(`{"bedtime_mode":true}`), 0o644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-ch:
			if bytes.Equal(data, []byte(`{"bedtime_mode":true}`)) {
				return
			}
			// Partial write events can surface earlier contents; keep waiting
		case <-deadline:
			t.Fatal("timeout waiting for write emission")
		}
	}
}

func TestFileWatcher_SurvivesAtomicReplace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-ch // initial

	// Atomic save: temp file renamed over the original
	tmp := filepath.Join(dir, "settings.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"online_fallback":true}`), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("failed to rename: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-ch:
			if bytes.Equal(data, []byte(`{"online_fallback":true}`)) {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for replace emission")
		}
	}
}

func TestFileWatcher_ClosesOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-ch // initial

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for close")
	}
}

func TestFileWatcher_MissingFileFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "missing.json")
	if _, err := NewFileWatcher(path).Watch(ctx); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileSink_StoreAndReadBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")

	sink := NewFileSink(path)
	if err := sink.Store(ctx, []byte(`{"screen_on_trigger":true}`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if !bytes.Equal(data, []byte(`{"screen_on_trigger":true}`)) {
		t.Errorf("unexpected contents %s", data)
	}

	// Overwrite leaves no temp files behind
	if err := sink.Store(ctx, []byte(`{}`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the settings file, got %d entries", len(entries))
	}
}

func TestFileSink_RespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := NewFileSink(path).Store(ctx, []byte(`{}`)); err == nil {
		t.Error("expected error from canceled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file written")
	}
}

func TestFileWatcherAndSink_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-ch // initial

	if err := NewFileSink(path).Store(ctx, []byte(`{"album_art":true}`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-ch:
			if bytes.Equal(data, []byte(`{"album_art":true}`)) {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for sink write to surface")
		}
	}
}
