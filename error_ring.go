package dial

import "sync"

// errorRing retains the most recent errors, oldest first.
type errorRing struct {
	mu   sync.Mutex
	size int
	errs []error
}

// newErrorRing creates a ring retaining up to size errors.
// If size is 0, the ring is disabled.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{size: size}
}

// push appends an error, evicting the oldest when full.
func (r *errorRing) push(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
	if len(r.errs) > r.size {
		r.errs = append(r.errs[:0], r.errs[len(r.errs)-r.size:]...)
	}
}

// clear removes all retained errors.
func (r *errorRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = nil
}

// all returns the retained errors, oldest first.
func (r *errorRing) all() []error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.errs) == 0 {
		return nil
	}
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}
