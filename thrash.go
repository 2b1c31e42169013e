// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import "time"

// readTraceSize bounds how many recent read completions the detector
// remembers. Rounds to a power of 2 for mask indexing.
const readTraceSize = 64

// readTrace is a fixed-size ring of recent read completion times, used by
// the advisory thrash heuristic in merged mode: a write executing while
// any recorded read falls inside the trailing window counts as possible
// thrash.
//
// The heuristic is wall-clock proximity, not target-level analysis; false
// positives and negatives are expected. It never gates or reorders
// execution.
//
// Only the tick path touches the ring, so no synchronization is needed.
type readTrace struct {
	buf  []time.Time
	mask uint64
	next uint64
}

func newReadTrace() *readTrace {
	n := uint64(roundToPow2(readTraceSize))
	return &readTrace{
		buf:  make([]time.Time, n),
		mask: n - 1,
	}
}

// record notes a read completion at t. Oldest entries are overwritten.
func (r *readTrace) record(t time.Time) {
	r.buf[r.next&r.mask] = t
	r.next++
}

// anyAfter reports whether any recorded read completed at or after cutoff.
func (r *readTrace) anyAfter(cutoff time.Time) bool {
	for i := range r.buf {
		if !r.buf[i].IsZero() && !r.buf[i].Before(cutoff) {
			return true
		}
	}
	return false
}
