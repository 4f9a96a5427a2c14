// Package telemetry implements §4.H: a max-reduced wall-clock timer, plus
// the optional hardware-counter and CPU/heap-profile hooks named in
// SPEC_FULL's ambient stack. Grounded on
// original_source/dimm/timing.hpp for the max-reduce-on-stop semantics.
package telemetry

import (
	"fmt"
	"time"

	"github.com/partmesh/dimm/transport"
)

// Timer measures wall-clock time between Start and Stop; Stop performs a
// max-reduction across group so the reported elapsed time is bounded by
// the slowest rank.
type Timer struct {
	group   transport.Group
	started time.Time
	elapsed time.Duration
}

// NewTimer builds a Timer bound to group's collective ReduceMax.
func NewTimer(group transport.Group) *Timer {
	return &Timer{group: group}
}

// Start records the current wall-clock time.
func (t *Timer) Start() { t.started = time.Now() }

// Stop records the elapsed time since Start and max-reduces it across
// every rank in the group, returning the group-wide maximum.
func (t *Timer) Stop() time.Duration {
	local := time.Since(t.started)
	maxSeconds := t.group.ReduceMax(local.Seconds())
	t.elapsed = time.Duration(maxSeconds * float64(time.Second))
	return t.elapsed
}

// Elapsed returns the duration computed by the last Stop.
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// ReportBandwidth prints a one-line "bytes read / read bandwidth" banner
// on rank 0 only, the max-reduced-timing banner dimm.hpp's constructor
// prints after every bulk store transfer.
func (t *Timer) ReportBandwidth(label string, bytes int64) {
	if t.group.Rank() != 0 {
		return
	}
	secs := t.elapsed.Seconds()
	if secs <= 0 {
		fmt.Printf("%s: %d bytes in %s\n", label, bytes, t.elapsed)
		return
	}
	mbps := float64(bytes) / (1 << 20) / secs
	fmt.Printf("%s: %d bytes in %s (%.2f MB/s)\n", label, bytes, t.elapsed, mbps)
}
