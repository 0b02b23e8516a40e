package graph

// BlockInstance is a live, user-placed unit in the graph. Instances are
// created when a block is added, mutated once per tick by the executor
// (through the state store's batched update), and destroyed on deletion.
type BlockInstance struct {
	ID           string
	DefinitionID string

	// Params holds the current parameter values (parameter id -> value).
	Params ValueMap

	// State is the block-private internal state bag. It persists across
	// ticks and is merged shallowly with whatever the behavior returns.
	State ValueMap

	// LastOutputs snapshots the outputs produced by the most recent tick
	// (port id -> value). Seeds the next tick's output table.
	LastOutputs ValueMap

	// Error holds the most recent per-instance failure, empty when healthy.
	Error string

	// NeedsSetup marks instances whose backend resource could not be
	// created yet (backend not ready). Setup is retried when backend
	// readiness changes, not eagerly.
	NeedsSetup bool
}

// Clone returns a copy safe to hand across the store boundary.
// Value maps are duplicated; values themselves are immutable.
func (b *BlockInstance) Clone() *BlockInstance {
	if b == nil {
		return nil
	}
	out := *b
	out.Params = b.Params.Clone()
	out.State = b.State.Clone()
	out.LastOutputs = b.LastOutputs.Clone()
	return &out
}
