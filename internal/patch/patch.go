package patch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Patch describes a graph of blocks and wires in one document.
type Patch struct {
	// Name identifies the patch in logs and traces.
	Name string `yaml:"name"`

	// Definitions lists inline CUE-defined block kinds, available to
	// Blocks alongside the library built-ins.
	Definitions []DefinitionSpec `yaml:"definitions,omitempty"`

	// Blocks lists the block instances to create.
	Blocks []BlockSpec `yaml:"blocks"`

	// Connections lists the wires between them.
	Connections []ConnectionSpec `yaml:"connections,omitempty"`
}

// DefinitionSpec declares an inline block kind whose behavior is a CUE
// expression compiled per instance.
type DefinitionSpec struct {
	ID      string     `yaml:"id"`
	Code    string     `yaml:"code"`
	Inputs  []PortSpec `yaml:"inputs,omitempty"`
	Outputs []PortSpec `yaml:"outputs,omitempty"`
}

// PortSpec declares one port of an inline definition.
type PortSpec struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	ParamTarget string `yaml:"param_target,omitempty"`
}

// BlockSpec declares one block instance.
type BlockSpec struct {
	// ID is optional; generated when omitted.
	ID string `yaml:"id,omitempty"`

	// Type names the definition, built-in or inline.
	Type string `yaml:"type"`

	// Params holds initial parameter values.
	Params map[string]any `yaml:"params,omitempty"`
}

// ConnectionSpec declares one wire as "instance.port" endpoints.
type ConnectionSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Load reads and parses a patch file.
func Load(path string) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse patch %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a patch document and checks its surface shape. Graph-level
// validation (port existence, type compatibility, fan-in) happens in Build
// where the definitions are known.
func Parse(data []byte) (*Patch, error) {
	var p Patch
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, &PatchError{Message: err.Error()}
	}

	for i, d := range p.Definitions {
		if d.ID == "" {
			return nil, &PatchError{Field: fmt.Sprintf("definitions[%d].id", i), Message: "id is required"}
		}
		if d.Code == "" {
			return nil, &PatchError{Field: fmt.Sprintf("definitions[%d].code", i), Message: "code is required"}
		}
	}
	for i, b := range p.Blocks {
		if b.Type == "" {
			return nil, &PatchError{Field: fmt.Sprintf("blocks[%d].type", i), Message: "type is required"}
		}
	}
	for i, c := range p.Connections {
		if _, _, err := splitEndpoint(c.From); err != nil {
			return nil, &PatchError{Field: fmt.Sprintf("connections[%d].from", i), Message: err.Error()}
		}
		if _, _, err := splitEndpoint(c.To); err != nil {
			return nil, &PatchError{Field: fmt.Sprintf("connections[%d].to", i), Message: err.Error()}
		}
	}
	return &p, nil
}

// splitEndpoint parses "instance.port". The first dot separates instance
// from port, so instance ids in patch files must not contain dots.
func splitEndpoint(s string) (instance, port string, err error) {
	instance, port, ok := strings.Cut(s, ".")
	if !ok || instance == "" || port == "" {
		return "", "", fmt.Errorf("endpoint %q must be \"instance.port\"", s)
	}
	return instance, port, nil
}
