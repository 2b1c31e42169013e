// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import "slices"

// MeasureAll queues one read operation that runs every reader in order and
// resolves with their results as a []any. The surface observes the whole
// group as a single scheduled unit, so no write can interleave between the
// individual reads.
//
// A reader's failure aborts the remaining readers and fails the future.
func (s *Scheduler) MeasureAll(target any, priority Priority, reads ...func() (any, error)) (*Future, error) {
	readers := slices.Clone(reads)
	return s.QueueRead(Op{
		Target:   target,
		Priority: priority,
		Do: func() (any, error) {
			out := make([]any, 0, len(readers))
			for _, r := range readers {
				v, err := r()
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
	})
}

// MutateAll queues one write operation that applies every mutation in
// order. The group executes atomically with respect to scheduling: other
// operations observe either none or all of the mutations attempted.
//
// A mutation's failure aborts the remaining mutations and fails the
// future.
func (s *Scheduler) MutateAll(target any, priority Priority, writes ...func() error) (*Future, error) {
	writers := slices.Clone(writes)
	return s.QueueWrite(Op{
		Target:   target,
		Priority: priority,
		Do: func() (any, error) {
			for _, w := range writers {
				if err := w(); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
	})
}
