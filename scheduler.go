// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"github.com/google/uuid"
)

// State is the scheduler loop's current phase.
type State uint8

const (
	// StateIdle: no tick is scheduled.
	StateIdle State = iota
	// StateScheduled: a pulse callback has been requested but not fired.
	StateScheduled
	// StateProcessing: a tick is actively draining the queues.
	StateProcessing
)

// String returns "idle", "scheduled", or "processing".
func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// Scheduler executes queued read/write operations in ordered, time-boxed
// batches. Create one with [New]; release it with [Scheduler.Destroy].
//
// All methods are safe for concurrent use. Queues, coalescer entries, and
// dependency state are mutated only under the scheduler lock; actions run
// strictly one at a time with the lock released, so actions may submit
// further operations but must not call Flush or Destroy.
type Scheduler struct {
	opts    Options
	metrics *collector
	trace   *readTrace

	// state is atomix so State() reads without the lock. Transitions
	// happen only under mu.
	state atomix.Uint64

	mu        sync.Mutex
	reads     *opQueue // separation mode
	writes    *opQueue // separation mode
	mixed     *opQueue // merged mode
	order     []*opQueue
	completed map[ID]struct{}
	coalesce  map[CoalesceKey]*coalesceEntry
	seq       uint64
	closed    bool
	tickFn    func()
}

func newScheduler(opts Options) *Scheduler {
	s := &Scheduler{
		opts:      opts,
		metrics:   newCollector(opts.frameInterval),
		trace:     newReadTrace(),
		completed: make(map[ID]struct{}),
		coalesce:  make(map[CoalesceKey]*coalesceEntry),
	}
	if opts.merged {
		s.mixed = newOpQueue(opts.queueCap)
		s.order = []*opQueue{s.mixed}
	} else {
		s.reads = newOpQueue(opts.queueCap)
		s.writes = newOpQueue(opts.queueCap)
		s.order = []*opQueue{s.reads, s.writes}
	}
	s.tickFn = s.tick
	return s
}

// QueueRead appends a read operation. It never blocks; the returned future
// settles once the action has run. Returns [ErrWouldBlock] when the read
// queue is at capacity and [ErrClosed] after Destroy.
func (s *Scheduler) QueueRead(spec Op) (*Future, error) {
	return s.submit(Read, spec)
}

// QueueWrite appends a write operation, symmetric to [Scheduler.QueueRead].
// The future's value is nil by convention.
func (s *Scheduler) QueueWrite(spec Op) (*Future, error) {
	return s.submit(Write, spec)
}

func (s *Scheduler) submit(kind Kind, spec Op) (*Future, error) {
	if spec.Do == nil {
		return nil, ErrNilAction
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.enqueueLocked(kind, spec)
}

// enqueueLocked builds the operation record, pushes it, and arms the pulse
// if the loop is idle.
func (s *Scheduler) enqueueLocked(kind Kind, spec Op) (*Future, error) {
	cost := spec.Cost
	if cost <= 0 {
		cost = s.opts.defaultCost
	}
	s.seq++
	id := uuid.New()
	rec := &op{
		id:          id,
		kind:        kind,
		target:      spec.Target,
		priority:    spec.Priority,
		seq:         s.seq,
		submittedAt: time.Now(),
		cost:        cost,
		after:       append([]ID(nil), spec.After...),
		do:          spec.Do,
		fut:         newFuture(id),
	}
	if err := s.queueFor(kind).push(rec); err != nil {
		return nil, err
	}
	s.armLocked()
	return rec.fut, nil
}

func (s *Scheduler) queueFor(kind Kind) *opQueue {
	if s.opts.merged {
		return s.mixed
	}
	if kind == Write {
		return s.writes
	}
	return s.reads
}

// armLocked requests one future pulse when the loop is idle.
// Idle → Scheduled is the only transition here; Scheduled and Processing
// already have a pass in flight or requested.
func (s *Scheduler) armLocked() {
	if s.closed {
		return
	}
	if State(s.state.LoadAcquire()) == StateIdle {
		s.state.StoreRelease(uint64(StateScheduled))
		s.opts.pulse.Request(s.tickFn)
	}
}

func (s *Scheduler) pendingLocked() int {
	n := 0
	for _, q := range s.order {
		n += q.len()
	}
	return n
}

// tick is the pulse callback: one budget-limited batch pass.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.closed || State(s.state.LoadAcquire()) != StateScheduled {
		// Stale callback: a flush took over, or the scheduler is gone.
		s.mu.Unlock()
		return
	}
	s.state.StoreRelease(uint64(StateProcessing))
	s.runTickLocked(true)
	if !s.closed && s.pendingLocked() > 0 {
		// Deferred or blocked operations remain; reconsider next pulse.
		s.state.StoreRelease(uint64(StateScheduled))
		s.opts.pulse.Request(s.tickFn)
	} else {
		s.state.StoreRelease(uint64(StateIdle))
	}
	s.mu.Unlock()
}

// runTickLocked drains the queues in order (reads before writes under
// separation) through the dependency gate and, when budgeted, the budget
// enforcer. Called with the lock held; unlocks around each action; returns
// with the lock held. Returns the number of operations executed.
func (s *Scheduler) runTickLocked(budgeted bool) int {
	start := time.Now()
	var spent time.Duration
	executed := 0
	for _, q := range s.order {
		if !s.drainLocked(q, start, &spent, &executed, budgeted) {
			break
		}
	}
	s.metrics.recordTick(time.Since(start))
	return executed
}

// drainLocked executes runnable operations from q in (rank, seq) order.
// Returns false when the tick must stop (budget or batch cap reached, or
// the scheduler closed mid-tick); true when the queue holds nothing more
// that can run this pass.
func (s *Scheduler) drainLocked(q *opQueue, start time.Time, spent *time.Duration, executed *int, budgeted bool) bool {
	for {
		if s.closed {
			return false
		}
		cand, expired := s.nextRunnableLocked(q)
		for _, o := range expired {
			q.remove(o)
			o.fut.settle(nil, ErrDependencyExpired)
		}
		if cand == nil {
			return true
		}
		if *executed > 0 && budgeted {
			if *executed >= s.opts.maxBatch {
				return false
			}
			// Budget charge is max(wall clock, charged estimates) so far;
			// the candidate runs only if its estimate still fits.
			elapsed := time.Since(start)
			if elapsed < *spent {
				elapsed = *spent
			}
			if elapsed+cand.cost > s.opts.budget {
				return false
			}
		}
		q.remove(cand)

		if s.opts.merged && cand.kind == Write {
			if s.trace.anyAfter(time.Now().Add(-s.opts.frameInterval)) {
				s.metrics.flagThrash()
			}
		}

		s.mu.Unlock()
		opStart := time.Now()
		val, err := runAction(cand.do)
		measured := time.Since(opStart)
		s.mu.Lock()

		s.completed[cand.id] = struct{}{}
		if s.opts.merged && cand.kind == Read {
			s.trace.record(time.Now())
		}
		charge := measured
		if cand.cost > charge {
			charge = cand.cost
		}
		*spent += charge
		*executed++
		s.metrics.recordOp(cand.kind, time.Since(cand.submittedAt))
		cand.fut.settle(val, err)
	}
}

// nextRunnableLocked scans q in execution order for the first operation
// whose dependencies are all recorded, collecting any whose dependency
// wait has exceeded the configured TTL.
func (s *Scheduler) nextRunnableLocked(q *opQueue) (cand *op, expired []*op) {
	now := time.Now()
	ttl := s.opts.dependencyTTL
	q.ascend(func(o *op) bool {
		if !s.depsSatisfiedLocked(o) {
			if ttl > 0 && now.Sub(o.submittedAt) > ttl {
				expired = append(expired, o)
			}
			return true
		}
		cand = o
		return false
	})
	return cand, expired
}

func (s *Scheduler) depsSatisfiedLocked(o *op) bool {
	for _, id := range o.after {
		if _, ok := s.completed[id]; !ok {
			return false
		}
	}
	return true
}

// runAction invokes an operation's action, converting panics into errors
// so a failing action is isolated to its own future.
func runAction(do func() (any, error)) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fsched: action panic: %v", r)
		}
	}()
	return do()
}

// Flush drains every currently queued operation immediately, ignoring the
// tick budget, under the same ordering rules as a normal tick. It runs on
// the caller's goroutine, waiting out an in-flight tick first, and the
// returned future is already settled when Flush returns.
//
// Operations blocked on unresolved dependencies survive a flush and stay
// queued. Do not call Flush from inside an action.
func (s *Scheduler) Flush() *Future {
	f := newFuture(uuid.New())
	sw := spin.Wait{}
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			f.settle(nil, ErrClosed)
			return f
		}
		st := State(s.state.LoadAcquire())
		if st != StateProcessing {
			if st == StateScheduled {
				// Take over the pending pulse; no residual scheduled
				// state may survive a flush.
				s.opts.pulse.Stop()
			}
			s.state.StoreRelease(uint64(StateProcessing))
			break
		}
		s.mu.Unlock()
		sw.Once()
	}
	for s.pendingLocked() > 0 {
		if s.runTickLocked(false) == 0 {
			break // only dependency-blocked operations remain
		}
	}
	if !s.closed && s.pendingLocked() > 0 {
		s.state.StoreRelease(uint64(StateScheduled))
		s.opts.pulse.Request(s.tickFn)
	} else {
		s.state.StoreRelease(uint64(StateIdle))
	}
	s.mu.Unlock()
	f.settle(nil, nil)
	return f
}

// Clear removes every queued (not yet executing) operation without running
// its action and drops all coalescer entries. Futures of removed
// operations settle with [ErrCleared]; recorded dependency results are
// kept, so operations submitted later may still depend on completed ids.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	dropped := s.dropAllLocked()
	s.mu.Unlock()
	for _, o := range dropped {
		o.fut.settle(nil, ErrCleared)
	}
}

// Cancel removes the queued operation with the given id before it begins
// executing; its future settles with [ErrCleared]. Reports whether the
// operation was found. An operation already executing or executed cannot
// be cancelled.
func (s *Scheduler) Cancel(id ID) bool {
	s.mu.Lock()
	for _, q := range s.order {
		if o, ok := q.removeByID(id); ok {
			s.mu.Unlock()
			o.fut.settle(nil, ErrCleared)
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// Destroy stops the loop, detaches from the pulse source, and clears the
// queues. Futures of still-queued operations settle with [ErrClosed], as
// do subsequent submissions. An action already executing finishes; no
// further tick runs even if the pulse source keeps firing. Destroy is
// idempotent. Do not call it from inside an action.
func (s *Scheduler) Destroy() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.opts.pulse.Stop()
	dropped := s.dropAllLocked()
	if State(s.state.LoadAcquire()) != StateProcessing {
		s.state.StoreRelease(uint64(StateIdle))
	}
	s.mu.Unlock()
	for _, o := range dropped {
		o.fut.settle(nil, ErrClosed)
	}
}

// dropAllLocked empties the queues and coalescer, returning the removed
// operations. Coalescer timers are stopped before the entries go away.
func (s *Scheduler) dropAllLocked() []*op {
	var dropped []*op
	for _, q := range s.order {
		dropped = append(dropped, q.drain()...)
	}
	for _, e := range s.coalesce {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	s.coalesce = make(map[CoalesceKey]*coalesceEntry)
	return dropped
}

// Metrics returns a copy of the current counters and averages.
func (s *Scheduler) Metrics() Snapshot {
	return s.metrics.snapshot()
}

// State returns the loop's current phase without taking the scheduler
// lock.
func (s *Scheduler) State() State {
	return State(s.state.LoadAcquire())
}

// Len returns the number of queued (not yet executed) operations.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}
