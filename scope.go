package dial

import (
	"context"
	"sync"
)

// Scope is a cancellable task group bound to one owner's lifecycle.
// Tasks are fire-and-forget: the first failure is recorded and cancels the
// scope, and all tasks share the scope's context. When the owner is
// disposed, Cancel tears everything down as one unit.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewScope creates a Scope derived from parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context returns the scope's context. It is canceled when the scope is
// canceled or any task fails.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go schedules fn as a task on the scope. A non-nil return records the
// scope's first error and cancels the scope.
func (s *Scope) Go(fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(s.ctx); err != nil {
			s.fail(err)
		}
	}()
}

// Cancel tears down the scope. In-flight tasks observe context
// cancellation; Cancel does not wait for them.
func (s *Scope) Cancel() {
	s.cancel()
}

// Wait blocks until all scheduled tasks have finished and returns the first
// task error, if any.
func (s *Scope) Wait() error {
	s.wg.Wait()
	return s.Err()
}

// Err returns the first task error, or nil.
func (s *Scope) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Scope) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.cancel()
}
