package state

import (
	"github.com/google/uuid"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// InstanceUpdate is one element of a batched update. Apply runs against
// the store's own copy of the instance under the store's lock.
type InstanceUpdate struct {
	InstanceID string
	Apply      func(*graph.BlockInstance)
}

// Store is the boundary the core reads the graph through and publishes
// tick results to. Implementations must hand out defensive copies -
// callers may retain and mutate what they receive.
type Store interface {
	// Instances returns every live instance in insertion order.
	Instances() []*graph.BlockInstance

	// Instance returns one instance by id.
	Instance(id string) (*graph.BlockInstance, bool)

	// Connections returns every connection in insertion order.
	Connections() []graph.Connection

	// ApplyUpdates applies a batch of per-instance mutations atomically
	// with respect to readers. Updates naming unknown instances are
	// skipped (the instance was deleted mid-tick).
	ApplyUpdates(updates []InstanceUpdate)

	// AddLog records a user-visible log line for an instance.
	AddLog(instanceID, message string)
}

// IDGenerator produces unique ids for instances and connections.
// Implemented by UUIDv7Generator (production) and the scripted generator
// in testutil (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids, which keeps
// insertion order recoverable from the ids themselves when debugging.
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (never happens in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
