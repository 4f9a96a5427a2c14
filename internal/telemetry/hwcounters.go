//go:build linux

// Hardware-counter telemetry, wired onto github.com/hodgesds/perf-utils — a
// teacher go.mod dependency with no use site in the retrieved snapshot. It
// wraps the Linux perf_event_open syscall, so it is only buildable (and
// only ever actually usable) on linux; every other platform gets the no-op
// stub in hwcounters_other.go.
package telemetry

import (
	perf "github.com/hodgesds/perf-utils"
)

// HWCounters is an optional rank-local wrapper around a perf-utils
// hardware-event profiler, exposed alongside Timer so partmesh --hwcounters
// can report cycles/instructions for its face-plan build and face gather
// without requiring it (perf_event_open typically needs
// CAP_PERFMON or root, so every call here degrades to "unsupported"
// rather than failing the run).
type HWCounters struct {
	profiler perf.HardwareProfiler
}

// NewHWCounters attempts to open a hardware profiler for the calling
// process (pid=-1 the whole process, cpu=-1 all CPUs) covering the
// standard cycle/instruction/cache counters. ok is false when the kernel
// or container sandbox does not permit perf_event_open — callers should
// treat that as "telemetry unavailable", not an error.
func NewHWCounters() (hw *HWCounters, ok bool) {
	p, err := perf.NewHardwareProfiler(-1, -1, perf.AllHardwareProfilers)
	if err != nil {
		return nil, false
	}
	return &HWCounters{profiler: p}, true
}

// Start begins counting. A failure here (e.g. revoked permissions between
// construction and Start) is reported but non-fatal — the caller's phase
// still runs, just without hardware counters for it.
func (hw *HWCounters) Start() error { return hw.profiler.Start() }

// Stop halts counting.
func (hw *HWCounters) Stop() error { return hw.profiler.Stop() }

// Close releases the underlying perf_event file descriptors.
func (hw *HWCounters) Close() error { return hw.profiler.Close() }

// Report returns the cycles and instructions counted since Start, or ok
// false if the underlying profile could not be read.
func (hw *HWCounters) Report() (cycles, instructions uint64, ok bool) {
	prof := &perf.HardwareProfile{}
	if err := hw.profiler.Profile(prof); err != nil {
		return 0, 0, false
	}
	if prof.CPUCycles != nil {
		cycles = *prof.CPUCycles
	}
	if prof.Instructions != nil {
		instructions = *prof.Instructions
	}
	return cycles, instructions, true
}
