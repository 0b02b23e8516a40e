// Package harness provides a scenario-driven test framework for the
// dataflow core.
//
// Scenarios are YAML documents that describe a patch, a number of ticks
// to execute, optional steps applied at tick boundaries (parameter
// changes, flipping the global enable flag, taking the backend up or
// down), and assertions over the final state. The harness wires the
// full stack — library, store, behavior cache, executor, resource
// manager, synchronizer — against the in-memory fake backend and drives
// ticks manually, so every run is deterministic: sequential connection
// ids, no wall-clock scheduling.
//
// Each executed tick is captured as a trace event (per-block published
// outputs and error strings in store order). Traces serialize through
// canonical JSON, which makes them byte-stable and suitable for golden
// file comparison via RunWithGolden.
package harness
