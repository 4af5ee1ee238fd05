package dial

import (
	"context"
	"sync"
)

// ChannelWatcher wraps an existing byte channel as a Watcher.
// Useful for testing and custom sources that already produce bytes.
type ChannelWatcher struct {
	ch   <-chan []byte
	sync bool
}

// NewChannelWatcher creates a ChannelWatcher that forwards values from the
// given channel through an internal goroutine.
func NewChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// NewSyncChannelWatcher creates a ChannelWatcher that returns the source
// channel directly without an intermediate goroutine.
// Use with SyncMode() for deterministic testing.
func NewSyncChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch, sync: true}
}

// Watch returns a channel that emits values from the wrapped channel.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.sync {
		return w.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-w.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ensure ChannelWatcher implements Watcher.
var _ Watcher = (*ChannelWatcher)(nil)

// MemorySink retains the most recent stored payload. Useful for testing
// persistence without touching the filesystem.
type MemorySink struct {
	mu     sync.Mutex
	data   []byte
	stores int
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Store retains data, replacing any previous payload.
func (s *MemorySink) Store(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.stores++
	return nil
}

// Data returns the most recent payload, or nil if nothing was stored.
func (s *MemorySink) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	return append([]byte(nil), s.data...)
}

// Stores returns how many times Store has been called.
func (s *MemorySink) Stores() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stores
}

// Ensure MemorySink implements Sink.
var _ Sink = (*MemorySink)(nil)
