package dial

import "context"

// Sink receives serialized settings for persistence. It is the write-side
// mirror of Watcher. Implementations must be safe for repeated calls;
// each call replaces the previously stored value.
type Sink interface {
	Store(ctx context.Context, data []byte) error
}
