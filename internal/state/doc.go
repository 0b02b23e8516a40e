// Package state holds the state-store boundary between the dataflow core
// and whatever owns the user-visible instance collection.
//
// The core never mutates instances directly: the executor batches all of a
// tick's changes into one ApplyUpdates call so observers see a single
// coherent update per tick rather than N incremental ones.
//
// MemoryStore is the reference implementation. It also carries the graph
// mutation surface (add/remove instances and connections) used by the CLI,
// the harness, and tests. Deleting an instance prunes every connection
// referencing it; the core may therefore assume connection endpoints
// resolve unless a store violates that contract.
package state
