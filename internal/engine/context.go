package engine

import (
	"math"
	"sync/atomic"
)

// ContextSource supplies the externally owned global context the core
// reads each tick: tempo, the backend's monotonically increasing clock
// value, and the global enable flag.
type ContextSource interface {
	BPM() float64
	SampleTime() float64
	Enabled() bool
}

// RunContext is the in-process ContextSource. The composition root owns
// one and hands it by reference to the controller, the synchronizer, and
// whatever UI or CLI flips the enable flag.
//
// Thread-safety: all fields are atomics; safe for concurrent use.
type RunContext struct {
	bpm        atomic.Uint64 // float64 bits
	sampleTime atomic.Uint64 // float64 bits
	enabled    atomic.Bool
}

// NewRunContext creates a context with the given tempo, a zero sample
// clock, and the enable flag down.
func NewRunContext(bpm float64) *RunContext {
	rc := &RunContext{}
	rc.SetBPM(bpm)
	return rc
}

// BPM returns the global tempo.
func (rc *RunContext) BPM() float64 {
	return math.Float64frombits(rc.bpm.Load())
}

// SetBPM updates the global tempo.
func (rc *RunContext) SetBPM(v float64) {
	rc.bpm.Store(math.Float64bits(v))
}

// SampleTime returns the current backend clock value.
func (rc *RunContext) SampleTime() float64 {
	return math.Float64frombits(rc.sampleTime.Load())
}

// AdvanceSampleTime moves the backend clock forward. Callers must only
// ever advance it; the value is monotonic by contract.
func (rc *RunContext) AdvanceSampleTime(delta float64) {
	for {
		old := rc.sampleTime.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if rc.sampleTime.CompareAndSwap(old, next) {
			return
		}
	}
}

// Enabled returns the global enable flag.
func (rc *RunContext) Enabled() bool {
	return rc.enabled.Load()
}

// SetEnabled flips the global enable flag. Lowering it stops the tick
// controller at the next tick boundary and makes the next synchronizer
// pass disconnect everything.
func (rc *RunContext) SetEnabled(v bool) {
	rc.enabled.Store(v)
}
