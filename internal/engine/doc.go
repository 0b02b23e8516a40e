// Package engine implements the dataflow execution core: execution-order
// resolution, per-block logic execution, and the tick loop controller.
//
// ARCHITECTURE:
//
// Single-writer tick loop:
// One goroutine drives one full graph pass per tick. This ensures:
//   - Predictable block evaluation order (topological, cycle-tolerant)
//   - One coherent batched store update per tick
//   - Simple reasoning about causality
//
// Tick flow:
//  1. Read instances and connections from the state store
//  2. ResolveOrder sorts instances by connection dependency (Kahn)
//  3. Each instance executes against the shared TickOutputs table,
//     reading fresh values from already-executed sources and previous
//     values from sources later in the order
//  4. All per-instance changes publish back through ONE ApplyUpdates call
//
// Error containment is per-instance: a block whose behavior fails is
// marked errored and contributes empty outputs; siblings are unaffected
// and the tick always completes. Cycles degrade to "execute remaining
// instances in insertion order" rather than halting the graph.
//
// The audio graph synchronizer (package audio) runs on its own cadence and
// never inside a tick; the two share only the state store.
package engine
