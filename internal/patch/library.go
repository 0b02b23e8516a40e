package patch

import (
	"fmt"
	"sync"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/behavior"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// Library is the definition registry: block definitions keyed by id plus
// the native behaviors backing the built-ins. Its Lookup method is the
// graph.DefinitionLookup handed to the engine and the synchronizer.
type Library struct {
	mu       sync.RWMutex
	defs     map[string]*graph.BlockDefinition
	registry *behavior.Registry
}

// NewLibrary creates a library pre-loaded with the built-in demo set.
func NewLibrary() *Library {
	l := &Library{
		defs:     make(map[string]*graph.BlockDefinition),
		registry: behavior.NewRegistry(),
	}
	registerBuiltins(l)
	return l
}

// Registry returns the native behavior registry backing this library.
func (l *Library) Registry() *behavior.Registry {
	return l.registry
}

// Define adds or replaces a definition, optionally with a native behavior.
func (l *Library) Define(def *graph.BlockDefinition, fn behavior.Func) error {
	if def.ID == "" {
		return fmt.Errorf("definition id is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defs[def.ID] = def
	if fn != nil {
		return l.registry.Register(def.ID, fn)
	}
	return nil
}

// Definition returns a definition by id.
func (l *Library) Definition(id string) (*graph.BlockDefinition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	def, ok := l.defs[id]
	return def, ok
}

// Lookup implements graph.DefinitionLookup.
func (l *Library) Lookup(inst *graph.BlockInstance) (*graph.BlockDefinition, bool) {
	return l.Definition(inst.DefinitionID)
}

// registerBuiltins installs the demo block set.
func registerBuiltins(l *Library) {
	// number.const: emits its "value" parameter every tick.
	l.Define(&graph.BlockDefinition{
		ID:      "number.const",
		Outputs: []graph.Port{{ID: "value", Direction: graph.Out, Type: graph.TypeNumber}},
	}, func(call *behavior.Call) (graph.ValueMap, error) {
		v, ok := call.Params["value"]
		if !ok {
			v = graph.Num(0)
		}
		call.Out("value", v)
		return nil, nil
	})

	// number.sum: sum = a + b.
	l.Define(&graph.BlockDefinition{
		ID: "number.sum",
		Inputs: []graph.Port{
			{ID: "a", Direction: graph.In, Type: graph.TypeNumber},
			{ID: "b", Direction: graph.In, Type: graph.TypeNumber},
		},
		Outputs: []graph.Port{{ID: "sum", Direction: graph.Out, Type: graph.TypeNumber}},
	}, func(call *behavior.Call) (graph.ValueMap, error) {
		call.Out("sum", graph.Num(graph.AsFloat(call.Inputs["a"])+graph.AsFloat(call.Inputs["b"])))
		return nil, nil
	})

	// number.mul: product = a * b.
	l.Define(&graph.BlockDefinition{
		ID: "number.mul",
		Inputs: []graph.Port{
			{ID: "a", Direction: graph.In, Type: graph.TypeNumber},
			{ID: "b", Direction: graph.In, Type: graph.TypeNumber},
		},
		Outputs: []graph.Port{{ID: "product", Direction: graph.Out, Type: graph.TypeNumber}},
	}, func(call *behavior.Call) (graph.ValueMap, error) {
		call.Out("product", graph.Num(graph.AsFloat(call.Inputs["a"])*graph.AsFloat(call.Inputs["b"])))
		return nil, nil
	})

	// logic.gate: tracks its gate input and raises the edge flags the
	// executor translates into backend envelope messages.
	l.Define(&graph.BlockDefinition{
		ID:     "logic.gate",
		Inputs: []graph.Port{{ID: "gate", Direction: graph.In, Type: graph.TypeGate}},
		Outputs: []graph.Port{
			{ID: "open", Direction: graph.Out, Type: graph.TypeBoolean},
		},
	}, func(call *behavior.Call) (graph.ValueMap, error) {
		now := graph.Truthy(call.Inputs["gate"])
		was := graph.Truthy(call.State["held"])
		call.Out("open", graph.Bool(now))

		patch := graph.ValueMap{"held": graph.Bool(now)}
		if now && !was {
			patch[behavior.FlagGateRise] = graph.Bool(true)
			patch[behavior.FlagTriggerAttack] = graph.Bool(true)
		}
		if !now && was {
			patch[behavior.FlagGateFall] = graph.Bool(true)
			patch[behavior.FlagTriggerRelease] = graph.Bool(true)
		}
		return patch, nil
	})

	// audio.osc: backend-managed oscillator, no per-tick logic.
	l.Define(&graph.BlockDefinition{
		ID:              "audio.osc",
		Outputs:         []graph.Port{{ID: "out", Direction: graph.Out, Type: graph.TypeAudio}},
		RunsAtAudioRate: true,
	}, nil)

	// audio.gain: backend-managed amplifier; the gain input drives the
	// node's "gain" automation parameter when wired.
	l.Define(&graph.BlockDefinition{
		ID: "audio.gain",
		Inputs: []graph.Port{
			{ID: "in", Direction: graph.In, Type: graph.TypeAudio},
			{ID: "gain", Direction: graph.In, Type: graph.TypeNumber, ParamTarget: "gain"},
		},
		Outputs:         []graph.Port{{ID: "out", Direction: graph.Out, Type: graph.TypeAudio}},
		RunsAtAudioRate: true,
	}, nil)

	// audio.crossfade: custom processing unit whose single logical input
	// fans into two physically distinct internal stages (multi-path).
	l.Define(&graph.BlockDefinition{
		ID: "audio.crossfade",
		Inputs: []graph.Port{
			{ID: "in", Direction: graph.In, Type: graph.TypeAudio},
			{ID: "mix", Direction: graph.In, Type: graph.TypeNumber, ParamTarget: "mix"},
		},
		Outputs:         []graph.Port{{ID: "out", Direction: graph.Out, Type: graph.TypeAudio}},
		RunsAtAudioRate: true,
		CustomUnit:      true,
	}, nil)
}
