// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"time"

	"github.com/tidwall/btree"
)

// op is the operation record flowing through the queues.
type op struct {
	id          ID
	kind        Kind
	target      any
	priority    Priority
	seq         uint64 // submission sequence, stable tie-break
	submittedAt time.Time
	cost        time.Duration
	after       []ID
	do          func() (any, error)
	fut         *Future
}

// opLess orders the pending tree: priority rank first (high < normal <
// low), then submission sequence ascending. The tree's ascending order is
// therefore exactly the execution order of a tick.
func opLess(a, b *op) bool {
	ar, br := a.priority.rank(), b.priority.rank()
	if ar != br {
		return ar < br
	}
	return a.seq < b.seq
}

// opQueue holds pending operations sorted by (rank, seq). Resorting per
// tick is free: the tree maintains order as operations are inserted, so a
// tick's snapshot is always current.
//
// Not safe for concurrent use; the scheduler serializes access.
type opQueue struct {
	tree     *btree.BTreeG[*op]
	byID     map[ID]*op
	capacity int // 0 = unbounded
}

func newOpQueue(capacity int) *opQueue {
	return &opQueue{
		tree:     btree.NewBTreeG(opLess),
		byID:     make(map[ID]*op),
		capacity: capacity,
	}
}

func (q *opQueue) len() int {
	return q.tree.Len()
}

// push inserts o, reporting ErrWouldBlock when the queue is at capacity.
func (q *opQueue) push(o *op) error {
	if q.capacity > 0 && q.tree.Len() >= q.capacity {
		return ErrWouldBlock
	}
	q.tree.Set(o)
	q.byID[o.id] = o
	return nil
}

// remove deletes o from the queue. Reports whether it was present.
func (q *opQueue) remove(o *op) bool {
	if _, ok := q.byID[o.id]; !ok {
		return false
	}
	q.tree.Delete(o)
	delete(q.byID, o.id)
	return true
}

// removeByID deletes the operation with the given id, if queued.
func (q *opQueue) removeByID(id ID) (*op, bool) {
	o, ok := q.byID[id]
	if !ok {
		return nil, false
	}
	q.tree.Delete(o)
	delete(q.byID, id)
	return o, true
}

// ascend visits queued operations in execution order until iter returns
// false. iter must not mutate the queue; collect first, then mutate.
func (q *opQueue) ascend(iter func(o *op) bool) {
	q.tree.Scan(iter)
}

// drain empties the queue and returns the removed operations in execution
// order.
func (q *opQueue) drain() []*op {
	if q.tree.Len() == 0 {
		return nil
	}
	out := make([]*op, 0, q.tree.Len())
	q.tree.Scan(func(o *op) bool {
		out = append(out, o)
		return true
	})
	q.tree = btree.NewBTreeG(opLess)
	q.byID = make(map[ID]*op)
	return out
}
