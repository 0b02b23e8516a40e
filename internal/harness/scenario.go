package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/patch"
)

// Scenario defines one harness test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Patch is the graph to build, inline.
	Patch patch.Patch `yaml:"patch"`

	// Ticks is how many ticks to drive. Ticks are 1-based in steps and
	// traces.
	Ticks int `yaml:"ticks"`

	// Steps are applied at tick boundaries, before the tick they name.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final state after the last tick.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action applied before a given tick.
type Step struct {
	// AtTick is the 1-based tick this step precedes.
	AtTick int `yaml:"at_tick"`

	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Block and Param name the target of set_param.
	Block string `yaml:"block,omitempty"`
	Param string `yaml:"param,omitempty"`

	// Value is the new parameter value for set_param.
	Value any `yaml:"value,omitempty"`
}

// Step action constants.
const (
	ActionSetParam    = "set_param"    // set Block's Param to Value
	ActionEnable      = "enable"       // raise the global enable flag
	ActionDisable     = "disable"      // lower the global enable flag
	ActionBackendUp   = "backend_up"   // mark the backend ready
	ActionBackendDown = "backend_down" // mark the backend not ready
	ActionRemoveBlock = "remove_block" // delete Block from the store
)

// Assertion validates final state after the run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Block names the instance (output_equals, error_contains, node_exists).
	Block string `yaml:"block,omitempty"`

	// Port names the output port (output_equals).
	Port string `yaml:"port,omitempty"`

	// Value is the expected output value (output_equals).
	Value any `yaml:"value,omitempty"`

	// Contains is the expected error substring (error_contains).
	Contains string `yaml:"contains,omitempty"`

	// Count is the expected number of backend links (link_count).
	Count int `yaml:"count,omitempty"`

	// Exists is whether the backend node should exist (node_exists).
	Exists bool `yaml:"exists,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputEquals  = "output_equals"
	AssertErrorContains = "error_contains"
	AssertLinkCount     = "link_count"
	AssertNodeExists    = "node_exists"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Patch.Blocks) == 0 {
		return fmt.Errorf("patch.blocks is required and must be non-empty")
	}
	if s.Ticks < 1 {
		return fmt.Errorf("ticks must be at least 1")
	}

	for i, step := range s.Steps {
		if step.AtTick < 1 || step.AtTick > s.Ticks {
			return fmt.Errorf("steps[%d]: at_tick %d outside 1..%d", i, step.AtTick, s.Ticks)
		}
		switch step.Action {
		case ActionSetParam:
			if step.Block == "" || step.Param == "" {
				return fmt.Errorf("steps[%d]: set_param needs block and param", i)
			}
		case ActionRemoveBlock:
			if step.Block == "" {
				return fmt.Errorf("steps[%d]: remove_block needs block", i)
			}
		case ActionEnable, ActionDisable, ActionBackendUp, ActionBackendDown:
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertOutputEquals:
			if a.Block == "" || a.Port == "" {
				return fmt.Errorf("assertions[%d]: output_equals needs block and port", i)
			}
		case AssertErrorContains:
			if a.Block == "" || a.Contains == "" {
				return fmt.Errorf("assertions[%d]: error_contains needs block and contains", i)
			}
		case AssertLinkCount:
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
		case AssertNodeExists:
			if a.Block == "" {
				return fmt.Errorf("assertions[%d]: node_exists needs block", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
