package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/behavior"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

// MessageSender is the side-channel for asynchronous messages to an
// instance's backend resource. Implemented by the audio backend; calls are
// fire-and-forget from the executor's point of view.
type MessageSender interface {
	SendMessage(instanceID string, payload any)
}

// nopSender discards messages. Used when no backend is wired (pure logic
// graphs, some tests).
type nopSender struct{}

func (nopSender) SendMessage(string, any) {}

// Executor runs one full graph pass per tick: resolve order, execute every
// logic-bearing instance against a shared tick output table, then publish
// all changes in a single batched store update.
type Executor struct {
	store  state.Store
	lookup graph.DefinitionLookup
	cache  *behavior.Cache
	sender MessageSender
	ctx    ContextSource
	clock  *Clock
}

// NewExecutor wires an executor. sender may be nil.
func NewExecutor(st state.Store, lookup graph.DefinitionLookup, cache *behavior.Cache, ctx ContextSource, sender MessageSender) *Executor {
	if sender == nil {
		sender = nopSender{}
	}
	return &Executor{
		store:  st,
		lookup: lookup,
		cache:  cache,
		sender: sender,
		ctx:    ctx,
		clock:  NewClock(),
	}
}

// Clock returns the executor's logical tick clock.
func (e *Executor) Clock() *Clock {
	return e.clock
}

// Cache returns the behavior cache, exposed so callers can evict entries
// when an instance's behavior source changes out from under it.
func (e *Executor) Cache() *behavior.Cache {
	return e.cache
}

// TickResult summarizes one graph pass.
type TickResult struct {
	Tick          int64
	Executed      int
	Skipped       int
	Failed        int
	CycleDetected bool
}

// RunTick executes one full graph pass. All per-instance failures are
// contained (instance marked errored, empty outputs, siblings continue);
// RunTick itself never fails for recoverable conditions.
func (e *Executor) RunTick() TickResult {
	tick := e.clock.Next()
	instances := e.store.Instances()
	conns := e.store.Connections()

	order, cycle := ResolveOrder(instances, conns)

	byID := make(map[string]*graph.BlockInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}

	outputs := graph.NewTickOutputs(instances)
	info := behavior.TickInfo{
		BPM:        e.ctx.BPM(),
		SampleTime: e.ctx.SampleTime(),
		Tick:       tick,
		Now:        time.Now(),
	}

	result := TickResult{Tick: tick, CycleDetected: cycle}
	updates := make([]state.InstanceUpdate, 0, len(order))

	for _, id := range order {
		inst := byID[id]

		update, outcome := e.executeInstance(inst, conns, outputs, info)
		switch outcome {
		case outcomeSkipped:
			result.Skipped++
			continue
		case outcomeFailed:
			result.Failed++
		default:
			result.Executed++
		}
		updates = append(updates, update)
	}

	// One batched update per tick: observers see A and B change together,
	// never a half-applied tick.
	e.store.ApplyUpdates(updates)

	slog.Debug("tick complete",
		"tick", tick,
		"executed", result.Executed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"cycle", cycle,
	)
	return result
}

type executeOutcome int

const (
	outcomeExecuted executeOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// executeInstance runs one instance for the current tick and returns the
// store update carrying its changes.
func (e *Executor) executeInstance(
	inst *graph.BlockInstance,
	conns []graph.Connection,
	outputs *graph.TickOutputs,
	info behavior.TickInfo,
) (state.InstanceUpdate, executeOutcome) {
	def, ok := e.lookup(inst)
	if !ok {
		err := &TickError{
			Code:       ErrCodeDefinitionMissing,
			Message:    fmt.Sprintf("definition %q not found", inst.DefinitionID),
			InstanceID: inst.ID,
		}
		slog.Warn("definition missing", "instance", inst.ID, "definition", inst.DefinitionID)
		return e.failureUpdate(inst.ID, outputs, err), outcomeFailed
	}

	fn, err := e.cache.Resolve(inst, def)
	if err != nil {
		if err == behavior.ErrNoBehavior {
			// Pure backend-managed node: the synchronizer and resource
			// manager own it, logic execution skips it entirely.
			return state.InstanceUpdate{}, outcomeSkipped
		}
		tickErr := &TickError{Code: ErrCodeLogicRuntime, Message: err.Error(), InstanceID: inst.ID}
		return e.failureUpdate(inst.ID, outputs, tickErr), outcomeFailed
	}

	inputs := e.resolveInputs(inst, def, conns, outputs)

	produced := graph.ValueMap{}
	call := &behavior.Call{
		Inputs: inputs,
		Params: inst.Params.Clone(),
		State:  inst.State.Clone(),
		Out: func(port string, v graph.Value) {
			produced[port] = v
		},
		Log: func(msg string) {
			e.store.AddLog(inst.ID, msg)
		},
		Send: func(payload any) {
			e.sender.SendMessage(inst.ID, payload)
		},
		Ctx: info,
	}

	patch, err := runSafely(fn, call)
	if err != nil {
		tickErr := &TickError{Code: ErrCodeLogicRuntime, Message: err.Error(), InstanceID: inst.ID}
		slog.Warn("behavior failed", "instance", inst.ID, "error", err)
		return e.failureUpdate(inst.ID, outputs, tickErr), outcomeFailed
	}

	// Output assembly: every declared output gets a value, defaulting per
	// port type when the behavior left it unset.
	assembled := make(graph.ValueMap, len(def.Outputs))
	for _, p := range def.Outputs {
		if v, ok := produced[p.ID]; ok {
			assembled[p.ID] = v
		} else {
			assembled[p.ID] = graph.DefaultFor(p.Type)
		}
	}
	outputs.Publish(inst.ID, assembled)

	nextState := inst.State.Merge(patch)
	nextState = e.dispatchResourceFlags(inst.ID, nextState)

	instID := inst.ID
	update := state.InstanceUpdate{
		InstanceID: instID,
		Apply: func(target *graph.BlockInstance) {
			target.LastOutputs = assembled.Clone()
			target.State = nextState.Clone()
			target.Error = ""
		},
	}
	return update, outcomeExecuted
}

// resolveInputs builds the complete input map for one instance: for each
// declared input port, the connected source's value from the tick output
// table (already seeded with last published outputs, so sources that have
// not executed yet this tick contribute their previous values), else the
// port type's default.
func (e *Executor) resolveInputs(
	inst *graph.BlockInstance,
	def *graph.BlockDefinition,
	conns []graph.Connection,
	outputs *graph.TickOutputs,
) graph.ValueMap {
	inputs := make(graph.ValueMap, len(def.Inputs))
	for _, p := range def.Inputs {
		conn, ok := graph.IncomingTo(conns, inst.ID, p.ID)
		if !ok {
			inputs[p.ID] = graph.DefaultFor(p.Type)
			continue
		}
		v, ok := outputs.Lookup(conn.Source.Instance, conn.Source.Port)
		if !ok || v == nil {
			inputs[p.ID] = graph.DefaultFor(p.Type)
			continue
		}
		inputs[p.ID] = v
	}
	return inputs
}

// dispatchResourceFlags translates well-known state flags into backend
// messages and clears them so each fires at most once per transition.
func (e *Executor) dispatchResourceFlags(instanceID string, st graph.ValueMap) graph.ValueMap {
	dispatched := false
	for _, flag := range behavior.ResourceFlags {
		v, ok := st[flag]
		if !ok || !graph.Truthy(v) {
			continue
		}
		if !dispatched {
			st = st.Clone()
			dispatched = true
		}
		e.sender.SendMessage(instanceID, map[string]any{"type": flag})
		delete(st, flag)
	}
	return st
}

// failureUpdate records a contained per-instance failure: error set,
// outputs for this tick collapse to empty so downstream consumers resolve
// defaults, internal state untouched.
func (e *Executor) failureUpdate(instanceID string, outputs *graph.TickOutputs, tickErr *TickError) state.InstanceUpdate {
	outputs.Publish(instanceID, graph.ValueMap{})
	e.store.AddLog(instanceID, tickErr.Error())
	msg := tickErr.Message
	return state.InstanceUpdate{
		InstanceID: instanceID,
		Apply: func(target *graph.BlockInstance) {
			target.Error = msg
			target.LastOutputs = graph.ValueMap{}
		},
	}
}

// runSafely invokes a behavior and converts panics into errors so one
// block's failure can never abort the tick.
func runSafely(fn behavior.Func, call *behavior.Call) (patch graph.ValueMap, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("behavior panicked: %v", r)
		}
	}()
	return fn(call)
}
