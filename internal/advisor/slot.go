package advisor

import (
	"context"
	"sync"
	"sync/atomic"
)

// Result is a completed suggestion attempt. Err covers transport failures;
// the reply string is otherwise raw and still has to survive parsing and
// legality validation downstream.
type Result struct {
	Reply string
	Err   error
}

// Slot gates suggestion requests so that at most one is ever outstanding for
// its owner. Request launches the call on a worker goroutine; the owner polls
// Take until the result is handed over, which also reopens the slot. The
// in-flight flag stays set from Request until Take, so a second Request while
// one is pending is refused.
type Slot struct {
	inFlight atomic.Bool
	mu       sync.Mutex
	result   *Result
}

// Request starts an asynchronous suggestion call. It returns false without
// doing anything when a request is already in flight.
func (s *Slot) Request(ctx context.Context, sg Suggester, position string) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()

	go func() {
		reply, err := sg.Suggest(ctx, position)
		s.mu.Lock()
		s.result = &Result{Reply: reply, Err: err}
		s.mu.Unlock()
	}()
	return true
}

// InFlight reports whether a request is outstanding and not yet taken.
func (s *Slot) InFlight() bool {
	return s.inFlight.Load()
}

// Take hands over the completed result exactly once and clears the in-flight
// flag. It returns false while the worker is still running or when nothing
// was requested.
func (s *Slot) Take() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	r := *s.result
	s.result = nil
	s.inFlight.Store(false)
	return r, true
}
