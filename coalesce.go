// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import "time"

// CoalesceKey identifies one stream of triggers to coalesce: the trigger
// kind (e.g. "resize", "scroll") plus the identity of the source emitting
// it. Independent keys coalesce independently. Source must be comparable.
type CoalesceKey struct {
	Kind   string
	Source any
}

// coalesceEntry tracks one key's burst in progress. Created on the first
// trigger for a key, mutated on each subsequent trigger, and removed once
// its debounce/throttle condition has resolved (or on Clear/Destroy).
type coalesceEntry struct {
	timer    *time.Timer
	gen      uint64 // bumps per armed timer; stale callbacks check it
	lastFire time.Time

	pending     Op // most recent trigger's payload
	pendingKind Kind
	hasPending  bool
	suppressed  bool // throttle: triggers arrived inside the window
}

// Debounce coalesces a burst of triggers into a single queued operation.
//
// Each call resets the key's pending timer; only when window elapses with
// no further trigger does exactly one operation enter the queue, carrying
// the payload of the last trigger observed (op closes over its payload, so
// "last trigger" means the op from the last call).
//
// Calls on a destroyed scheduler, or with a nil op.Do, are no-ops.
func (s *Scheduler) Debounce(key CoalesceKey, window time.Duration, kind Kind, op Op) {
	if op.Do == nil {
		return
	}
	if window <= 0 {
		window = s.opts.frameInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	e := s.coalesce[key]
	if e == nil {
		e = &coalesceEntry{}
		s.coalesce[key] = e
	}
	e.pending = op
	e.pendingKind = kind
	e.hasPending = true
	e.lastFire = time.Now()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(window, func() { s.debounceFire(key, gen) })
}

func (s *Scheduler) debounceFire(key CoalesceKey, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.coalesce[key]
	if e == nil || e.gen != gen || s.closed {
		return // superseded or cleared
	}
	delete(s.coalesce, key)
	if e.hasPending {
		// Queue-capacity backpressure drops the coalesced operation;
		// the next burst will try again.
		_, _ = s.enqueueLocked(e.pendingKind, e.pending)
	}
}

// Throttle rate-limits a stream of triggers to roughly one queued
// operation per window.
//
// The first trigger in a window queues its operation immediately.
// Triggers inside the window are suppressed, except that if any occurred,
// one trailing operation carrying the latest payload enters the queue at
// window end — bounding output to one per window plus a final catch-up.
//
// Calls on a destroyed scheduler, or with a nil op.Do, are no-ops.
func (s *Scheduler) Throttle(key CoalesceKey, window time.Duration, kind Kind, op Op) {
	if op.Do == nil {
		return
	}
	if window <= 0 {
		window = s.opts.frameInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	e := s.coalesce[key]
	if e == nil || e.timer == nil {
		// Leading edge: fire now, open a window.
		if e == nil {
			e = &coalesceEntry{}
			s.coalesce[key] = e
		}
		e.lastFire = time.Now()
		e.suppressed = false
		e.hasPending = false
		_, _ = s.enqueueLocked(kind, op)
		e.gen++
		gen := e.gen
		e.timer = time.AfterFunc(window, func() { s.throttleWindowEnd(key, window, gen) })
		return
	}
	// Inside the window: remember the latest payload for the catch-up.
	e.pending = op
	e.pendingKind = kind
	e.hasPending = true
	e.suppressed = true
}

func (s *Scheduler) throttleWindowEnd(key CoalesceKey, window time.Duration, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.coalesce[key]
	if e == nil || e.gen != gen || s.closed {
		return
	}
	e.timer = nil
	if !e.suppressed {
		// Quiet window: the burst is over.
		delete(s.coalesce, key)
		return
	}
	// Trailing catch-up with the latest payload, then keep pacing: a
	// burst still in progress stays bounded to one operation per window.
	if e.hasPending {
		_, _ = s.enqueueLocked(e.pendingKind, e.pending)
	}
	e.lastFire = time.Now()
	e.suppressed = false
	e.hasPending = false
	e.gen++
	next := e.gen
	e.timer = time.AfterFunc(window, func() { s.throttleWindowEnd(key, window, next) })
}
