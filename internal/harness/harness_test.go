package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/patch"
)

func sumScenario() *Scenario {
	return &Scenario{
		Name:        "sum",
		Description: "two constants into a sum",
		Patch: patch.Patch{
			Name: "sum",
			Blocks: []patch.BlockSpec{
				{ID: "a", Type: "number.const", Params: map[string]any{"value": 10}},
				{ID: "b", Type: "number.const", Params: map[string]any{"value": 20}},
				{ID: "add", Type: "number.sum"},
			},
			Connections: []patch.ConnectionSpec{
				{From: "a.value", To: "add.a"},
				{From: "b.value", To: "add.b"},
			},
		},
		Ticks: 1,
		Assertions: []Assertion{
			{Type: AssertOutputEquals, Block: "add", Port: "sum", Value: 30},
		},
	}
}

func TestRunSumPipeline(t *testing.T) {
	result, err := Run(sumScenario())
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)

	tick := result.Trace[0]
	assert.Equal(t, 1, tick.Tick)
	assert.True(t, tick.Enabled)
	require.Len(t, tick.Blocks, 3)
	assert.Equal(t, "a", tick.Blocks[0].ID)
	assert.Equal(t, float64(30), tick.Blocks[2].Outputs["sum"])
}

func TestRunSetParamStep(t *testing.T) {
	s := sumScenario()
	s.Ticks = 2
	s.Steps = []Step{
		{AtTick: 2, Action: ActionSetParam, Block: "a", Param: "value", Value: 5},
	}
	s.Assertions = []Assertion{
		{Type: AssertOutputEquals, Block: "add", Port: "sum", Value: 25},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// First tick still reflects the original parameter.
	assert.Equal(t, float64(30), result.Trace[0].Blocks[2].Outputs["sum"])
	assert.Equal(t, float64(25), result.Trace[1].Blocks[2].Outputs["sum"])
}

func TestRunDisableSkipsTicks(t *testing.T) {
	s := sumScenario()
	s.Ticks = 3
	s.Steps = []Step{
		{AtTick: 2, Action: ActionDisable},
		{AtTick: 3, Action: ActionEnable},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Trace, 3)

	assert.True(t, result.Trace[0].Enabled)
	assert.False(t, result.Trace[1].Enabled)
	assert.Empty(t, result.Trace[1].Blocks)
	assert.True(t, result.Trace[2].Enabled)
}

func TestRunAudioRouting(t *testing.T) {
	s := &Scenario{
		Name:        "audio-route",
		Description: "oscillator into gain",
		Patch: patch.Patch{
			Name: "audio-route",
			Blocks: []patch.BlockSpec{
				{ID: "osc", Type: "audio.osc"},
				{ID: "amp", Type: "audio.gain"},
			},
			Connections: []patch.ConnectionSpec{
				{From: "osc.out", To: "amp.in"},
			},
		},
		Ticks: 1,
		Assertions: []Assertion{
			{Type: AssertLinkCount, Count: 1},
			{Type: AssertNodeExists, Block: "osc", Exists: true},
			{Type: AssertNodeExists, Block: "amp", Exists: true},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunRemoveBlockReleasesNode(t *testing.T) {
	s := &Scenario{
		Name:        "remove-block",
		Description: "deleting an instance destroys its backend node",
		Patch: patch.Patch{
			Name: "remove-block",
			Blocks: []patch.BlockSpec{
				{ID: "osc", Type: "audio.osc"},
			},
		},
		Ticks: 2,
		Steps: []Step{
			{AtTick: 2, Action: ActionRemoveBlock, Block: "osc"},
		},
		Assertions: []Assertion{
			{Type: AssertNodeExists, Block: "osc", Exists: false},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunInlineDefinition(t *testing.T) {
	s := &Scenario{
		Name:        "inline-doubler",
		Description: "CUE-defined block doubles its input",
		Patch: patch.Patch{
			Name: "inline-doubler",
			Definitions: []patch.DefinitionSpec{
				{
					ID:      "custom.double",
					Code:    "outputs: out: inputs.in * 2",
					Inputs:  []patch.PortSpec{{ID: "in", Type: "number"}},
					Outputs: []patch.PortSpec{{ID: "out", Type: "number"}},
				},
			},
			Blocks: []patch.BlockSpec{
				{ID: "src", Type: "number.const", Params: map[string]any{"value": 21}},
				{ID: "dbl", Type: "custom.double"},
			},
			Connections: []patch.ConnectionSpec{
				{From: "src.value", To: "dbl.in"},
			},
		},
		Ticks: 1,
		Assertions: []Assertion{
			{Type: AssertOutputEquals, Block: "dbl", Port: "out", Value: 42},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunFailedAssertionReportsError(t *testing.T) {
	s := sumScenario()
	s.Assertions = []Assertion{
		{Type: AssertOutputEquals, Block: "add", Port: "sum", Value: 99},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "want")
}

func TestRunBadPatchFails(t *testing.T) {
	s := sumScenario()
	s.Patch.Blocks[0].Type = "no.such.type"

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown block type")
}
