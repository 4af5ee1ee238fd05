package dial

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a settings file for changes and emits its contents.
// Editors and settings frameworks often save atomically (write a temp file,
// rename over the original), which surfaces as remove/rename events, so the
// watcher tracks the parent directory and matches events against the file
// name.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a FileWatcher for the given file path.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: path}
}

// Watch begins watching the file and returns a channel that emits the file
// contents whenever the file is written or replaced. The current file
// contents are emitted immediately to support initial hydration.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if _, err := os.Stat(w.path); err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", w.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	name := filepath.Base(w.path)
	out := make(chan []byte)

	go func() {
		defer close(out)
		defer watcher.Close()

		// Emit initial contents
		if data, err := os.ReadFile(w.path); err == nil {
			select {
			case out <- data:
			case <-ctx.Done():
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				data, err := os.ReadFile(w.path)
				if err != nil {
					continue
				}

				select {
				case out <- data:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}

// Ensure FileWatcher implements Watcher.
var _ Watcher = (*FileWatcher)(nil)
