package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newSource(t *testing.T) *Source {
	t.Helper()
	src, err := New(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestSource_StoreAndRead(t *testing.T) {
	ctx := context.Background()
	src := newSource(t)

	if err := src.Store(ctx, []byte(`{"album_art":true}`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	data, rev, err := src.read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(data, []byte(`{"album_art":true}`)) {
		t.Errorf("unexpected data %s", data)
	}
	if rev != 1 {
		t.Errorf("expected rev 1, got %d", rev)
	}
}

func TestSource_StoreAdvancesRevision(t *testing.T) {
	ctx := context.Background()
	src := newSource(t)

	if err := src.Store(ctx, []byte(`a`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := src.Store(ctx, []byte(`b`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	data, rev, err := src.read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(data, []byte(`b`)) {
		t.Errorf("expected latest data, got %s", data)
	}
	if rev != 2 {
		t.Errorf("expected rev 2, got %d", rev)
	}
}

func TestSource_WatchEmitsStoredValue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newSource(t)
	if err := src.Store(ctx, []byte(`initial`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	ch, err := src.Poll(10 * time.Millisecond).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case data := <-ch:
		if !bytes.Equal(data, []byte(`initial`)) {
			t.Errorf("unexpected initial emission %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for initial emission")
	}
}

func TestSource_WatchDetectsRevisionChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newSource(t)
	if err := src.Store(ctx, []byte(`first`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	ch, err := src.Poll(10 * time.Millisecond).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-ch // initial

	if err := src.Store(ctx, []byte(`second`)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	select {
	case data := <-ch:
		if !bytes.Equal(data, []byte(`second`)) {
			t.Errorf("unexpected update %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for revision change")
	}
}

func TestSource_WatchEmptyDatabaseEmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newSource(t)
	ch, err := src.Poll(10 * time.Millisecond).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case data := <-ch:
		t.Fatalf("unexpected emission %s from empty database", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSource_WatchClosesOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := newSource(t)
	ch, err := src.Poll(10 * time.Millisecond).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

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
