// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fsched provides a frame-budgeted batched-operation scheduler.
//
// The scheduler accepts small units of work ("operations") tagged as reads
// or writes against some mutation-sensitive surface, and executes them in
// ordered, time-boxed batches. It exists to prevent the classic interleaved
// read/write pathology: a write invalidating state that a still-queued read
// expected to observe, forcing the surface to recompute.
//
// The scheduler is a sequencing and pacing layer only. It does not know
// what the surface is, does not measure anything itself, does not retry
// failed operations, and does not execute anything in parallel.
//
// # Quick Start
//
//	s := fsched.New(fsched.NewInterval(16 * time.Millisecond)).
//		Budget(8 * time.Millisecond).
//		Build()
//	defer s.Destroy()
//
//	f, _ := s.QueueRead(fsched.Op{
//		Target: box,
//		Do:     func() (any, error) { return box.Measure(), nil },
//	})
//
//	_, _ = s.QueueWrite(fsched.Op{
//		Target: box,
//		Do:     func() (any, error) { return nil, box.Resize(w, h) },
//	})
//
//	size, err := f.Result() // blocks until the read has run
//
// # Operations
//
// An operation is a zero-argument callable plus scheduling metadata:
//
//   - Target: opaque reference, used only for thrash grouping. Never
//     interpreted.
//   - Priority: High, Normal, or Low. Higher priorities run first.
//   - Cost: estimated execution duration, consulted by the budget.
//   - After: ids of operations that must complete before this one runs.
//
// Submission never blocks. The returned [Future] settles once the
// operation has executed (successfully or with a failure), or when it is
// removed by [Scheduler.Clear], [Scheduler.Cancel], or [Scheduler.Destroy].
//
// # Ticks and Read/Write Separation
//
// The scheduler runs one batch ("tick") per pulse from its [Pulse] source.
// Within a tick, operations execute in priority order, first-submitted
// first within a priority tier.
//
// With separation enabled (the default), every read queued at tick start
// is attempted before any write from that tick begins. This is the central
// ordering contract: reads observe the surface before the tick's writes
// disturb it. [Builder.Merged] disables separation and interleaves both
// kinds in one sorted pass; the advisory thrash detector is active only in
// that mode.
//
// # Budgeting
//
// Each tick has a wall-clock budget and a maximum operation count. The
// first operation of a tick always runs, guaranteeing forward progress.
// Before each subsequent operation, the scheduler checks that the time
// spent so far plus the operation's estimated cost still fits the budget.
// Operations that do not fit stay queued, in order, for the next tick.
//
// [Scheduler.Flush] drains everything immediately, ignoring the budget.
//
// # Operation Dependencies
//
// An operation listing dependency ids never executes before every listed
// id has a recorded result. Blocked operations are skipped and reconsidered
// on every subsequent tick. There is no deadlock detection: an operation
// whose dependency never resolves stays queued until cleared, unless a
// [Builder.DependencyTTL] is configured, in which case it eventually fails
// with [ErrDependencyExpired].
//
// # Coalescing
//
// High-frequency trigger sources (resize storms, scroll events, sensor
// bursts) go through the coalescer instead of submitting directly:
//
//	// At most one queued operation per burst, carrying the last payload.
//	s.Debounce(key, 50*time.Millisecond, fsched.Write, op)
//
//	// At most ~one queued operation per window, plus a trailing catch-up.
//	s.Throttle(key, 100*time.Millisecond, fsched.Write, op)
//
// Entries are keyed by (trigger kind, source identity); independent keys
// coalesce independently.
//
// # Metrics
//
// [Scheduler.Metrics] returns a point-in-time [Snapshot] of counters and
// rolling averages: operations executed, ticks, thrash flags, dropped
// frames, average tick duration, average operation latency. Reading the
// snapshot never takes the scheduler lock.
//
// # Error Handling
//
// Submission on a scheduler whose queue capacity is exhausted returns
// [ErrWouldBlock], a control-flow signal sourced from
// [code.hybscloud.com/iox] for ecosystem consistency:
//
//	f, err := s.QueueWrite(op)
//	if fsched.IsWouldBlock(err) {
//	    // backpressure: retry later or drop
//	}
//
// A failure inside an operation's action is isolated to that operation:
// its future fails and the rest of the batch proceeds. Panics in actions
// are recovered and converted into future failures.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Internally the
// scheduler is a single-writer core: queues, coalescer entries, and
// dependency state are mutated only under one lock, and actions execute
// strictly one at a time with the lock released. Do not call
// [Scheduler.Flush] or [Scheduler.Destroy] from inside an action; both
// wait for the in-flight tick and would deadlock.
//
// # Pulse Sources
//
// The scheduler never schedules itself; it asks its [Pulse] source for one
// future tick notification per cycle. Two implementations are provided:
// [Interval], a fixed-rate fallback timer, and [Manual], for hosts with a
// native per-refresh signal (and for tests). Capability detection and
// selection between them belongs to the caller.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic counters with explicit memory
// ordering, [code.hybscloud.com/spin] for CPU pause instructions,
// [github.com/tidwall/btree] for the ordered pending queues, and
// [github.com/google/uuid] for operation ids.
package fsched
