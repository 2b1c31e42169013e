// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"time"

	"github.com/google/uuid"
)

// ID uniquely identifies a queued operation for the lifetime of the
// scheduler. Assigned at submission, returned via [Future.ID], and used to
// declare dependencies between operations.
type ID = uuid.UUID

// Kind classifies an operation as a read or a write against the
// mutation-sensitive surface.
//
// The distinction drives read/write separation: with separation enabled,
// every read queued at tick start runs before any write from that tick.
type Kind uint8

const (
	// Read observes the surface without mutating it.
	Read Kind = iota
	// Write mutates the surface.
	Write
)

// String returns "read" or "write".
func (k Kind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Priority orders operations within a tick. High runs before Normal,
// Normal before Low; within one tier, first submitted runs first.
type Priority uint8

const (
	// Normal is the default priority (zero value).
	Normal Priority = iota
	// High runs before Normal and Low.
	High
	// Low runs after High and Normal.
	Low
)

// String returns "high", "normal", or "low".
func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return "normal"
	}
}

// rank maps a priority to its sort key: high < normal < low.
func (p Priority) rank() uint8 {
	switch p {
	case High:
		return 0
	case Low:
		return 2
	default:
		return 1
	}
}

// Op describes one unit of work to submit.
//
// The zero value of every field except Do is usable: an untargeted,
// normal-priority, zero-cost operation with no dependencies.
//
// Do performs the actual work. It runs synchronously inside a tick,
// strictly one operation at a time, and must not block for long: there is
// no preemption, and a long-running action overruns the tick budget. For
// write operations the returned value is ignored by convention; return
// (nil, err).
type Op struct {
	// Target is an opaque reference to whatever the operation concerns.
	// The scheduler never interprets it; it only groups operations for
	// the advisory thrash heuristic.
	Target any

	// Priority orders the operation within its tick.
	Priority Priority

	// Cost estimates the execution duration and is consulted by the tick
	// budget. Zero means "use the scheduler's default cost".
	Cost time.Duration

	// After lists ids of operations that must have a recorded result
	// before this operation may run.
	After []ID

	// Do performs the work. Required.
	Do func() (any, error)
}

// Pulse grants the scheduler its next opportunity to run a tick.
//
// The scheduler calls Request once per cycle; the source must invoke cb
// exactly once, at some future point, from any goroutine. A second Request
// before the previous callback has fired replaces the outstanding request.
//
// Two implementations ship with the package: [Interval], a fixed-rate
// fallback timer, and [Manual], for hosts that expose a native per-refresh
// signal. Selecting between them (capability detection) is the caller's
// concern.
type Pulse interface {
	// Request asks for exactly one future tick notification.
	Request(cb func())

	// Stop cancels any outstanding request and releases resources.
	// After Stop, a pending callback must not fire.
	Stop()
}
