package host

import "sync/atomic"

// Slot is the instance-local indirection cell that lets a host-import
// thunk, built once as a fixed Go closure when the host modules are
// registered, still operate against a different Adapter on every
// reservation. Each Instance
// owns exactly one Slot; the pipeline writes it on reservation (before the
// call) and every thunk reads it through Current on entry.
type Slot struct {
	ptr atomic.Pointer[Adapter]
}

// Bind installs the Adapter for the call about to begin.
func (s *Slot) Bind(a *Adapter) {
	s.ptr.Store(a)
}

// Current returns the Adapter bound for the in-flight call. Thunks call
// this once at entry; it is never nil while a reservation is active.
func (s *Slot) Current() *Adapter {
	return s.ptr.Load()
}

// Unbind clears the slot after the call returns, so a stale Adapter can't
// be read if a thunk is ever invoked outside a reservation.
func (s *Slot) Unbind() {
	s.ptr.Store(nil)
}
