// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import "time"

// Defaults applied by [Builder.Build] when an option is unset or invalid.
// Out-of-range values clamp here rather than failing construction.
const (
	// DefaultFrameInterval is the nominal pulse interval assumed for
	// dropped-frame accounting and the thrash trailing window.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultBudget is the per-tick wall-clock budget.
	DefaultBudget = 8 * time.Millisecond

	// DefaultMaxBatch is the per-tick operation count cap.
	DefaultMaxBatch = 128
)

// Options holds the resolved scheduler configuration.
type Options struct {
	pulse         Pulse
	budget        time.Duration
	maxBatch      int
	frameInterval time.Duration
	merged        bool
	queueCap      int
	defaultCost   time.Duration
	dependencyTTL time.Duration
}

// Builder configures and creates a [Scheduler] with fluent configuration.
//
// Example:
//
//	s := fsched.New(fsched.NewInterval(16 * time.Millisecond)).
//		Budget(8 * time.Millisecond).
//		MaxBatch(64).
//		Build()
type Builder struct {
	opts Options
}

// New creates a scheduler builder driven by the given pulse source.
//
// A nil pulse selects the fixed-interval fallback ([Interval]) at the
// configured frame interval, so a host without a native per-refresh signal
// can simply pass nil.
func New(pulse Pulse) *Builder {
	return &Builder{opts: Options{pulse: pulse}}
}

// Budget sets the per-tick wall-clock budget. The first operation of a
// tick always runs regardless of budget; each further operation runs only
// if the time spent so far plus its estimated cost still fits.
//
// Non-positive values clamp to [DefaultBudget].
func (b *Builder) Budget(d time.Duration) *Builder {
	b.opts.budget = d
	return b
}

// MaxBatch caps the number of operations executed per tick.
// Non-positive values clamp to [DefaultMaxBatch].
func (b *Builder) MaxBatch(n int) *Builder {
	b.opts.maxBatch = n
	return b
}

// FrameInterval declares the nominal interval between pulses. It sizes the
// thrash detector's trailing window and the dropped-frame threshold
// (1.5× the interval). Non-positive values clamp to [DefaultFrameInterval].
func (b *Builder) FrameInterval(d time.Duration) *Builder {
	b.opts.frameInterval = d
	return b
}

// Merged disables read/write separation: reads and writes interleave in
// one sorted pass per tick. The advisory thrash detector is active only in
// this mode.
func (b *Builder) Merged() *Builder {
	b.opts.merged = true
	return b
}

// QueueCapacity bounds each pending queue. Submissions against a full
// queue return [ErrWouldBlock]. Zero (the default) means unbounded;
// negative values clamp to zero.
func (b *Builder) QueueCapacity(n int) *Builder {
	b.opts.queueCap = n
	return b
}

// DefaultCost sets the estimated cost assumed for operations submitted
// with a zero [Op.Cost]. Negative values clamp to zero.
func (b *Builder) DefaultCost(d time.Duration) *Builder {
	b.opts.defaultCost = d
	return b
}

// DependencyTTL bounds how long an operation may stay blocked on
// unresolved dependencies. Once exceeded, the operation is removed and its
// future fails with [ErrDependencyExpired].
//
// Zero (the default) waits forever: an operation whose dependency never
// resolves stays queued until cleared. Negative values clamp to zero.
func (b *Builder) DependencyTTL(d time.Duration) *Builder {
	b.opts.dependencyTTL = d
	return b
}

// Build resolves the configuration and creates the scheduler.
// Invalid values have been clamped; Build never fails.
func (b *Builder) Build() *Scheduler {
	opts := b.opts
	if opts.frameInterval <= 0 {
		opts.frameInterval = DefaultFrameInterval
	}
	if opts.budget <= 0 {
		opts.budget = DefaultBudget
	}
	if opts.maxBatch <= 0 {
		opts.maxBatch = DefaultMaxBatch
	}
	if opts.queueCap < 0 {
		opts.queueCap = 0
	}
	if opts.defaultCost < 0 {
		opts.defaultCost = 0
	}
	if opts.dependencyTTL < 0 {
		opts.dependencyTTL = 0
	}
	if opts.pulse == nil {
		opts.pulse = NewInterval(opts.frameInterval)
	}
	return newScheduler(opts)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
