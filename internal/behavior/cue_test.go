package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// invoke runs a compiled behavior with the given scope and collects its
// emitted outputs.
func invoke(t *testing.T, fn Func, inputs, params, state graph.ValueMap) (graph.ValueMap, graph.ValueMap) {
	t.Helper()
	outputs := graph.ValueMap{}
	patch, err := fn(&Call{
		Inputs: inputs,
		Params: params,
		State:  state,
		Out:    func(port string, v graph.Value) { outputs[port] = v },
		Log:    func(string) {},
		Send:   func(any) {},
	})
	require.NoError(t, err)
	return outputs, patch
}

func TestCompileCUESimpleOutput(t *testing.T) {
	fn, err := CompileCUE("outputs: out: inputs.in * 2")
	require.NoError(t, err)

	outputs, patch := invoke(t, fn, graph.ValueMap{"in": graph.Num(21)}, nil, nil)
	assert.Equal(t, graph.Num(42), outputs["out"])
	assert.Nil(t, patch, "no next block means no state patch")
}

func TestCompileCUEReadsParamsAndState(t *testing.T) {
	fn, err := CompileCUE(`
outputs: level: params.gain * state.count
next: count: state.count + 1
`)
	require.NoError(t, err)

	outputs, patch := invoke(t, fn,
		nil,
		graph.ValueMap{"gain": graph.Num(2)},
		graph.ValueMap{"count": graph.Num(3)},
	)
	assert.Equal(t, graph.Num(6), outputs["level"])
	require.NotNil(t, patch)
	assert.Equal(t, graph.Num(4), patch["count"])
}

func TestCompileCUEValueKinds(t *testing.T) {
	fn, err := CompileCUE(`
outputs: {
	n: 1.5
	s: "text"
	b: true
	z: null
}
`)
	require.NoError(t, err)

	outputs, _ := invoke(t, fn, nil, nil, nil)
	assert.Equal(t, graph.Num(1.5), outputs["n"])
	assert.Equal(t, graph.Str("text"), outputs["s"])
	assert.Equal(t, graph.Bool(true), outputs["b"])
	assert.Equal(t, graph.Null{}, outputs["z"])
}

func TestCompileCUESyntaxError(t *testing.T) {
	_, err := CompileCUE("outputs: {{{")
	require.Error(t, err)

	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
}

func TestCompileCUERequiresOutputs(t *testing.T) {
	_, err := CompileCUE("helper: 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must define outputs")
}

func TestCompileCUEEvaluationErrorSurfacesPerCall(t *testing.T) {
	// Compiles fine; fails only once the scope makes outputs non-concrete.
	fn, err := CompileCUE(`outputs: out: inputs.in & string`)
	require.NoError(t, err)

	_, err = fn(&Call{
		Inputs: graph.ValueMap{"in": graph.Num(1)},
		Out:    func(string, graph.Value) {},
	})
	require.Error(t, err)
}

func TestCompileCUEEmptyScopes(t *testing.T) {
	fn, err := CompileCUE("outputs: out: 7")
	require.NoError(t, err)

	outputs, _ := invoke(t, fn, nil, nil, nil)
	assert.Equal(t, graph.Num(7), outputs["out"])
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("missing")
	assert.False(t, ok)

	require.Error(t, r.Register("bad", nil))

	fn := func(*Call) (graph.ValueMap, error) { return nil, nil }
	require.NoError(t, r.Register("good", fn))
	got, ok := r.Lookup("good")
	assert.True(t, ok)
	assert.NotNil(t, got)
}
