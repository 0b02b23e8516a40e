package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/audio"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/behavior"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/engine"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/patch"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/testutil"
)

// Harness holds the full stack wired for one scenario run.
type Harness struct {
	store   *state.MemoryStore
	lib     *patch.Library
	runCtx  *engine.RunContext
	backend *audio.FakeBackend
	exec    *engine.Executor
	manager *audio.ResourceManager
	sync    *audio.Synchronizer
}

// Run executes a scenario and returns its result.
//
// Each scenario runs against a fresh store and fake backend. Connection
// ids come from a sequential generator so traces and golden files stay
// byte-stable across runs. Ticks are driven manually in the controller's
// per-tick shape: resource reconcile, graph sync, then the logic pass.
func Run(scenario *Scenario) (*Result, error) {
	lib := patch.NewLibrary()
	store, err := patch.Build(&scenario.Patch, lib, testutil.NewSequentialIDs("conn"))
	if err != nil {
		return nil, fmt.Errorf("build patch: %w", err)
	}

	runCtx := engine.NewRunContext(120)
	runCtx.SetEnabled(true)
	backend := audio.NewFakeBackend()

	h := &Harness{
		store:   store,
		lib:     lib,
		runCtx:  runCtx,
		backend: backend,
		exec:    engine.NewExecutor(store, lib.Lookup, behavior.NewCache(lib.Registry()), runCtx, backend),
		manager: audio.NewResourceManager(store, lib.Lookup, backend),
		sync:    audio.NewSynchronizer(store, lib.Lookup, backend, runCtx),
	}

	result := NewResult()
	ctx := context.Background()

	for tick := 1; tick <= scenario.Ticks; tick++ {
		if err := h.applySteps(scenario.Steps, tick); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}

		h.manager.Reconcile(ctx)
		h.sync.Sync()

		if !runCtx.Enabled() {
			result.Trace = append(result.Trace, TickTrace{Tick: tick, Enabled: false})
			continue
		}

		h.exec.RunTick()
		result.Trace = append(result.Trace, h.snapshotTick(tick))
		runCtx.AdvanceSampleTime(engine.DefaultTickPeriod.Seconds())
	}

	h.evaluateAssertions(scenario.Assertions, result)
	return result, nil
}

// applySteps applies every step scheduled before the given tick.
func (h *Harness) applySteps(steps []Step, tick int) error {
	for i, step := range steps {
		if step.AtTick != tick {
			continue
		}
		switch step.Action {
		case ActionSetParam:
			v, err := graph.FromAny(step.Value)
			if err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
			param := step.Param
			h.store.ApplyUpdates([]state.InstanceUpdate{{
				InstanceID: step.Block,
				Apply: func(inst *graph.BlockInstance) {
					if inst.Params == nil {
						inst.Params = graph.ValueMap{}
					}
					inst.Params[param] = v
				},
			}})
		case ActionEnable:
			h.runCtx.SetEnabled(true)
		case ActionDisable:
			h.runCtx.SetEnabled(false)
		case ActionBackendUp:
			h.backend.SetReady(true)
		case ActionBackendDown:
			h.backend.SetReady(false)
		case ActionRemoveBlock:
			h.store.RemoveInstance(step.Block)
		}
	}
	return nil
}

// snapshotTick captures every instance's published outputs after a tick.
func (h *Harness) snapshotTick(tick int) TickTrace {
	trace := TickTrace{Tick: tick, Enabled: true}
	for _, inst := range h.store.Instances() {
		trace.Blocks = append(trace.Blocks, BlockTrace{
			ID:      inst.ID,
			Outputs: graph.MapToAny(inst.LastOutputs),
			Error:   inst.Error,
		})
	}
	return trace
}

// evaluateAssertions checks every assertion against the final state.
func (h *Harness) evaluateAssertions(assertions []Assertion, result *Result) {
	for i, a := range assertions {
		switch a.Type {
		case AssertOutputEquals:
			h.assertOutputEquals(i, a, result)
		case AssertErrorContains:
			h.assertErrorContains(i, a, result)
		case AssertLinkCount:
			if got := h.backend.LinkCount(); got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: link count %d, want %d", i, got, a.Count))
			}
		case AssertNodeExists:
			_, ok := h.backend.Handle(a.Block)
			if ok != a.Exists {
				result.AddError(fmt.Sprintf("assertions[%d]: node %q exists=%t, want %t", i, a.Block, ok, a.Exists))
			}
		}
	}
}

func (h *Harness) assertOutputEquals(i int, a Assertion, result *Result) {
	inst, ok := h.store.Instance(a.Block)
	if !ok {
		result.AddError(fmt.Sprintf("assertions[%d]: unknown block %q", i, a.Block))
		return
	}
	want, err := graph.FromAny(a.Value)
	if err != nil {
		result.AddError(fmt.Sprintf("assertions[%d]: bad expected value: %v", i, err))
		return
	}
	got, ok := inst.LastOutputs[a.Port]
	if !ok {
		result.AddError(fmt.Sprintf("assertions[%d]: block %q has no output %q", i, a.Block, a.Port))
		return
	}
	if got != want {
		result.AddError(fmt.Sprintf("assertions[%d]: %s.%s = %v, want %v", i, a.Block, a.Port, got, want))
	}
}

func (h *Harness) assertErrorContains(i int, a Assertion, result *Result) {
	inst, ok := h.store.Instance(a.Block)
	if !ok {
		result.AddError(fmt.Sprintf("assertions[%d]: unknown block %q", i, a.Block))
		return
	}
	if !strings.Contains(inst.Error, a.Contains) {
		result.AddError(fmt.Sprintf("assertions[%d]: block %q error %q does not contain %q", i, a.Block, inst.Error, a.Contains))
	}
}
