package dial

import (
	"context"
	"sync"
)

// Cell is an observable, settable preference value. Watchers receive the
// current value immediately (if one has ever been set) and every update
// after it. Delivery is latest-value: a reader that falls behind sees the
// newest value, never a backlog.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
	subs  []chan T

	// onSet fires after a user write, not after apply. The owning Store
	// uses it to schedule persistence.
	onSet func()
}

// NewCell creates an unset cell. Watchers receive nothing until the first
// write.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// NewCellOf creates a cell seeded with v.
func NewCellOf[T any](v T) *Cell[T] {
	return &Cell[T]{value: v, set: true}
}

// Get returns the current value and true, or the zero value and false if
// the cell has never been set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set stores v and fans it out to all watchers. The write itself never
// blocks; persistence happens asynchronously through the owning Store.
func (c *Cell[T]) Set(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.value = v
	c.set = true
	for _, ch := range c.subs {
		deliver(ch, v)
	}
	hook := c.onSet
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

// apply stores v without firing the write hook, so hydrated values do not
// echo back into persistence.
func (c *Cell[T]) apply(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.set = true
	for _, ch := range c.subs {
		deliver(ch, v)
	}
}

// Watch returns a channel that emits the current value immediately (if set)
// and every update after it. The channel is closed when the context is
// canceled.
func (c *Cell[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	c.mu.Lock()
	if c.set {
		ch <- c.value
	}
	c.subs = append(c.subs, ch)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.drop(ch)
	}()
	return ch
}

// drop removes and closes a watcher channel.
func (c *Cell[T]) drop(ch chan T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subs {
		if sub == ch {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// deliver places v on a capacity-1 channel, displacing a stale value if the
// reader has not caught up. Callers must hold the cell lock so there is at
// most one concurrent sender.
func deliver[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
