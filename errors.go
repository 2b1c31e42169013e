// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates that a submission cannot proceed immediately
// because the target queue is at capacity.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the submission later (or shed the work) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed indicates the scheduler has been destroyed.
//
// Returned by submissions after [Scheduler.Destroy], and used to settle
// futures of operations that were still queued when Destroy ran.
var ErrClosed = errors.New("fsched: scheduler closed")

// ErrCleared settles the future of an operation that was removed from its
// queue before executing, either by [Scheduler.Clear] or by a targeted
// [Scheduler.Cancel].
var ErrCleared = errors.New("fsched: operation cleared before execution")

// ErrDependencyExpired settles the future of an operation whose declared
// dependencies did not resolve within the configured [Builder.DependencyTTL].
var ErrDependencyExpired = errors.New("fsched: dependency wait expired")

// ErrNilAction is returned by submissions whose [Op.Do] is nil.
var ErrNilAction = errors.New("fsched: operation has no action")

// IsWouldBlock reports whether err indicates the submission would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock. Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
