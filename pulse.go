// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"sync"
	"time"
)

// Interval is the fixed-interval fallback [Pulse]: each Request arms a
// one-shot timer, each Stop cancels the outstanding one. Use it when the
// host exposes no native per-refresh signal.
type Interval struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
}

// NewInterval creates a fixed-interval pulse. Non-positive intervals clamp
// to [DefaultFrameInterval].
func NewInterval(interval time.Duration) *Interval {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Interval{interval: interval}
}

// Request arms a one-shot timer that invokes cb after the interval.
// A second Request before the timer fires replaces it.
func (p *Interval) Request(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.interval, cb)
}

// Stop cancels the outstanding request, if any. The pulse remains usable;
// a later Request arms a fresh timer.
func (p *Interval) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Manual is a host-driven [Pulse]: the host (or a test) calls Fire on each
// native frame opportunity, and the most recent requested callback runs.
// Fires with no outstanding request are no-ops, so the host may fire
// unconditionally on every frame.
type Manual struct {
	mu sync.Mutex
	cb func()
}

// NewManual creates a host-driven pulse.
func NewManual() *Manual {
	return &Manual{}
}

// Request stores cb as the callback for the next Fire, replacing any
// outstanding one.
func (p *Manual) Request(cb func()) {
	p.mu.Lock()
	p.cb = cb
	p.mu.Unlock()
}

// Fire delivers one tick notification: it runs the outstanding callback,
// if any, on the caller's goroutine and clears it.
func (p *Manual) Fire() {
	p.mu.Lock()
	cb := p.cb
	p.cb = nil
	p.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Stop discards the outstanding callback, if any.
func (p *Manual) Stop() {
	p.mu.Lock()
	p.cb = nil
	p.mu.Unlock()
}
