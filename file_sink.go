package dial

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink persists settings to a file. Writes are atomic: data lands in a
// temp file in the same directory and is renamed over the target, so a
// concurrent FileWatcher never observes a partial write.
type FileSink struct {
	path string
}

// NewFileSink creates a FileSink for the given file path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Store atomically replaces the file contents with data.
func (s *FileSink) Store(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Ensure FileSink implements Sink.
var _ Sink = (*FileSink)(nil)
