//go:build !linux

package telemetry

// HWCounters is the non-Linux stub: perf_event_open has no equivalent
// outside Linux, so hardware-counter telemetry is simply unavailable.
type HWCounters struct{}

// NewHWCounters always reports unavailable off Linux.
func NewHWCounters() (hw *HWCounters, ok bool) { return nil, false }

func (hw *HWCounters) Start() error { return nil }
func (hw *HWCounters) Stop() error  { return nil }
func (hw *HWCounters) Close() error { return nil }

func (hw *HWCounters) Report() (cycles, instructions uint64, ok bool) { return 0, 0, false }
