// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"context"
	"sync"
)

// Future is the handle returned at submission time. It settles exactly
// once: when the operation's action has run, or when the operation is
// removed before execution ([ErrCleared], [ErrClosed],
// [ErrDependencyExpired]).
//
// A Future is safe for concurrent use. Reading the result from multiple
// goroutines returns the same settled pair.
type Future struct {
	id   ID
	done chan struct{}
	once sync.Once

	value any
	err   error
}

func newFuture(id ID) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// settle records the outcome and releases waiters. Second and later calls
// are no-ops; the first settlement wins.
func (f *Future) settle(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// ID returns the id assigned to the operation at submission. Use it to
// declare dependencies ([Op.After]) or for targeted cancellation.
func (f *Future) ID() ID {
	return f.id
}

// Done returns a channel closed when the future settles. Select on it to
// observe completion without blocking.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the future settles and returns the action's value
// and error. For write operations the value is nil by convention.
func (f *Future) Result() (any, error) {
	<-f.done
	return f.value, f.err
}

// Wait blocks until the future settles or ctx is done, whichever comes
// first. On context expiry the operation itself stays queued; Wait only
// abandons the wait.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
