package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioValid(t *testing.T) {
	doc := []byte(`
name: smoke
description: smallest valid scenario
patch:
  name: smoke
  blocks:
    - id: a
      type: number.const
ticks: 1
assertions:
  - type: output_equals
    block: a
    port: value
    value: 0
`)
	s, err := ParseScenario(doc)
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	assert.Len(t, s.Patch.Blocks, 1)
	assert.Equal(t, 1, s.Ticks)
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	doc := []byte(`
name: typo
patch:
  blocks:
    - id: a
      type: number.const
ticks: 1
assertion:
  - type: output_equals
`)
	_, err := ParseScenario(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(s *Scenario) { s.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "no blocks",
			mutate:  func(s *Scenario) { s.Patch.Blocks = nil },
			wantErr: "patch.blocks",
		},
		{
			name:    "zero ticks",
			mutate:  func(s *Scenario) { s.Ticks = 0 },
			wantErr: "ticks must be at least 1",
		},
		{
			name: "step out of range",
			mutate: func(s *Scenario) {
				s.Steps = []Step{{AtTick: 5, Action: ActionDisable}}
			},
			wantErr: "outside 1..1",
		},
		{
			name: "set_param without block",
			mutate: func(s *Scenario) {
				s.Steps = []Step{{AtTick: 1, Action: ActionSetParam, Param: "value"}}
			},
			wantErr: "needs block and param",
		},
		{
			name: "unknown step action",
			mutate: func(s *Scenario) {
				s.Steps = []Step{{AtTick: 1, Action: "explode"}}
			},
			wantErr: `unknown action "explode"`,
		},
		{
			name: "unknown assertion type",
			mutate: func(s *Scenario) {
				s.Assertions = []Assertion{{Type: "whatever"}}
			},
			wantErr: `unknown assertion type "whatever"`,
		},
		{
			name: "output_equals without port",
			mutate: func(s *Scenario) {
				s.Assertions = []Assertion{{Type: AssertOutputEquals, Block: "a"}}
			},
			wantErr: "needs block and port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sumScenario()
			tt.mutate(s)
			err := validateScenario(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioFromFile(t *testing.T) {
	s, err := LoadScenario("testdata/sum_pipeline.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sum-pipeline", s.Name)
	assert.Len(t, s.Patch.Connections, 2)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, ActionSetParam, s.Steps[0].Action)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/does_not_exist.yaml")
	require.Error(t, err)
}
