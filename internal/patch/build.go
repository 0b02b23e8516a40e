package patch

import (
	"fmt"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

// Build instantiates a patch into a fresh MemoryStore backed by the
// library. Inline definitions are added to the library first, then
// instances, then connections; the store enforces port existence, type
// compatibility, and the fan-in rejection on each wire.
func Build(p *Patch, lib *Library, ids state.IDGenerator) (*state.MemoryStore, error) {
	for i, d := range p.Definitions {
		def := &graph.BlockDefinition{
			ID:          d.ID,
			LogicSource: d.Code,
			Inputs:      buildPorts(d.Inputs, graph.In),
			Outputs:     buildPorts(d.Outputs, graph.Out),
		}
		if err := lib.Define(def, nil); err != nil {
			return nil, &PatchError{Field: fmt.Sprintf("definitions[%d]", i), Message: err.Error()}
		}
	}

	store := state.NewMemoryStore(lib.Lookup)

	for i, b := range p.Blocks {
		if _, ok := lib.Definition(b.Type); !ok {
			return nil, &PatchError{
				Field:   fmt.Sprintf("blocks[%d].type", i),
				Message: fmt.Sprintf("unknown block type %q", b.Type),
			}
		}
		params, err := graph.MapFromAny(b.Params)
		if err != nil {
			return nil, &PatchError{Field: fmt.Sprintf("blocks[%d].params", i), Message: err.Error()}
		}
		id := b.ID
		if id == "" {
			id = ids.NewID()
		}
		inst := &graph.BlockInstance{
			ID:           id,
			DefinitionID: b.Type,
			Params:       params,
		}
		if err := store.AddInstance(inst); err != nil {
			return nil, &PatchError{Field: fmt.Sprintf("blocks[%d].id", i), Message: err.Error()}
		}
	}

	for i, c := range p.Connections {
		srcInst, srcPort, _ := splitEndpoint(c.From)
		dstInst, dstPort, _ := splitEndpoint(c.To)
		conn := graph.Connection{
			ID:     ids.NewID(),
			Source: graph.Endpoint{Instance: srcInst, Port: srcPort},
			Target: graph.Endpoint{Instance: dstInst, Port: dstPort},
		}
		if err := store.AddConnection(conn); err != nil {
			return nil, &PatchError{Field: fmt.Sprintf("connections[%d]", i), Message: err.Error()}
		}
	}

	return store, nil
}

func buildPorts(specs []PortSpec, dir graph.Direction) []graph.Port {
	ports := make([]graph.Port, 0, len(specs))
	for _, s := range specs {
		t := graph.PortType(s.Type)
		if t == "" {
			t = graph.TypeAny
		}
		ports = append(ports, graph.Port{
			ID:          s.ID,
			Direction:   dir,
			Type:        t,
			ParamTarget: s.ParamTarget,
		})
	}
	return ports
}
