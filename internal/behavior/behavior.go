package behavior

import (
	"time"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// TickInfo is the global context every behavior observes for one tick.
type TickInfo struct {
	// BPM is the global tempo.
	BPM float64

	// SampleTime is the monotonically increasing backend clock value
	// (sample-rate equivalent) at the start of the tick.
	SampleTime float64

	// Tick is the logical tick sequence number.
	Tick int64

	// Now is the wall-clock time the tick fired. Informational only -
	// never used for ordering.
	Now time.Time
}

// Call carries everything one invocation may read or emit.
type Call struct {
	// Inputs maps each declared input port to its resolved value. Every
	// declared port is present; unconnected ports carry type defaults.
	Inputs graph.ValueMap

	// Params is a flat snapshot of the instance's current parameters.
	Params graph.ValueMap

	// State is the instance's internal state bag as of the previous tick.
	// Behaviors must treat it as read-only and return changes instead.
	State graph.ValueMap

	// Out sets one output port's value for this tick. Unset declared
	// outputs fall back to type defaults during output assembly.
	Out func(port string, v graph.Value)

	// Log emits a user-visible log line attributed to the instance.
	Log func(message string)

	// Send posts an asynchronous message to the instance's backend
	// resource (out-of-band control of custom processing units).
	Send func(payload any)

	// Ctx is the shared tick context.
	Ctx TickInfo
}

// Func is the compute-unit contract. The returned map is a partial state
// patch merged shallowly onto the instance's state bag (returned keys
// overwrite, omitted keys persist); nil means no state change.
type Func func(call *Call) (graph.ValueMap, error)

// Well-known state flags. Behaviors raise these in their returned state
// patch; the executor translates them into backend calls after invocation
// and clears them so each fires at most once per transition.
const (
	// FlagTriggerAttack requests an envelope attack ramp on the backend
	// resource.
	FlagTriggerAttack = "trigger_attack"

	// FlagTriggerRelease requests an envelope release ramp.
	FlagTriggerRelease = "trigger_release"

	// FlagGateRise marks a gate input transition low -> high.
	FlagGateRise = "gate_rise"

	// FlagGateFall marks a gate input transition high -> low.
	FlagGateFall = "gate_fall"
)

// ResourceFlags lists every well-known flag in the order the executor
// inspects them.
var ResourceFlags = []string{FlagTriggerAttack, FlagTriggerRelease, FlagGateRise, FlagGateFall}
