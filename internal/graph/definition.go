package graph

// BlockDefinition is the shared template instances are created from.
// Definitions are effectively immutable after construction; many instances
// reference one definition.
type BlockDefinition struct {
	// ID uniquely names the block kind, e.g. "number.sum" or "audio.gain".
	ID string

	// Inputs and Outputs are the declared ports, in declaration order.
	Inputs  []Port
	Outputs []Port

	// LogicSource is the behavior source compiled once per instance.
	// Empty means the block has no executable logic and is driven solely
	// by the backend (the executor skips it entirely).
	LogicSource string

	// RunsAtAudioRate marks definitions that require a backend processing
	// node for the lifetime of each instance.
	RunsAtAudioRate bool

	// CustomUnit marks definitions backed by a custom processing unit
	// rather than a generic backend node. Custom units may require
	// multi-path internal routing for some inputs.
	CustomUnit bool
}

// HasLogic reports whether instances of this definition participate in
// per-tick logic execution.
func (d *BlockDefinition) HasLogic() bool {
	return d.LogicSource != ""
}

// RequiresNode reports whether instances need a backend processing node.
func (d *BlockDefinition) RequiresNode() bool {
	return d.RunsAtAudioRate
}

// Input returns the declared input port with the given id.
func (d *BlockDefinition) Input(id string) (Port, bool) {
	for _, p := range d.Inputs {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// Output returns the declared output port with the given id.
func (d *BlockDefinition) Output(id string) (Port, bool) {
	for _, p := range d.Outputs {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// DefinitionLookup resolves an instance's definition. Supplied by the
// collaborator owning the definition registry; must be a pure function.
type DefinitionLookup func(instance *BlockInstance) (*BlockDefinition, bool)
