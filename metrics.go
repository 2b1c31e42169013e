// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Snapshot is a point-in-time copy of the scheduler's counters and
// rolling averages. Returned by [Scheduler.Metrics]; reading one never
// blocks the scheduler.
type Snapshot struct {
	// TotalOps counts executed operations (successful or failed).
	TotalOps uint64
	// Reads and Writes split TotalOps by kind.
	Reads  uint64
	Writes uint64
	// Ticks counts completed batch passes, flushes included.
	Ticks uint64
	// ThrashFlags counts advisory write-after-recent-read detections.
	// Only ever raised in merged mode.
	ThrashFlags uint64
	// DroppedFrames counts ticks whose wall-clock duration exceeded
	// 1.5× the nominal frame interval.
	DroppedFrames uint64
	// AvgTickDuration is a rolling (exponentially weighted) average of
	// tick wall-clock duration.
	AvgTickDuration time.Duration
	// AvgOpLatency is the mean time from submission to completion over
	// all executed operations.
	AvgOpLatency time.Duration
}

// collector aggregates metrics. Counters are atomix values so Metrics()
// can read them from any goroutine without the scheduler lock; only the
// tick path writes them.
type collector struct {
	total  atomix.Uint64
	reads  atomix.Uint64
	writes atomix.Uint64
	ticks  atomix.Uint64
	thrash atomix.Uint64

	dropped    atomix.Uint64
	tickEWMA   atomix.Int64 // nanoseconds
	latencySum atomix.Int64 // nanoseconds, cumulative over executed ops

	dropThreshold time.Duration
}

func newCollector(frameInterval time.Duration) *collector {
	return &collector{dropThreshold: frameInterval + frameInterval/2}
}

// recordOp accounts one executed operation and its submission-to-finish
// latency.
func (c *collector) recordOp(kind Kind, latency time.Duration) {
	c.total.Add(1)
	if kind == Write {
		c.writes.Add(1)
	} else {
		c.reads.Add(1)
	}
	if latency > 0 {
		c.latencySum.Add(int64(latency))
	}
}

// recordTick accounts one completed tick: batch counter, rolling duration
// average (EWMA, alpha 1/8), and the dropped-frame check.
func (c *collector) recordTick(dur time.Duration) {
	c.ticks.Add(1)
	prev := c.tickEWMA.LoadRelaxed()
	if prev == 0 {
		c.tickEWMA.StoreRelaxed(int64(dur))
	} else {
		c.tickEWMA.StoreRelaxed(prev + (int64(dur)-prev)/8)
	}
	if dur > c.dropThreshold {
		c.dropped.Add(1)
	}
}

// flagThrash bumps the advisory thrash counter.
func (c *collector) flagThrash() {
	c.thrash.Add(1)
}

// snapshot copies the current counters into an exported Snapshot.
func (c *collector) snapshot() Snapshot {
	total := c.total.Load()
	s := Snapshot{
		TotalOps:        total,
		Reads:           c.reads.Load(),
		Writes:          c.writes.Load(),
		Ticks:           c.ticks.Load(),
		ThrashFlags:     c.thrash.Load(),
		DroppedFrames:   c.dropped.Load(),
		AvgTickDuration: time.Duration(c.tickEWMA.LoadRelaxed()),
	}
	if total > 0 {
		s.AvgOpLatency = time.Duration(c.latencySum.LoadRelaxed() / int64(total))
	}
	return s
}
