package behavior

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// cuePrelude declares the scope fields a behavior source may reference.
// The executor fills them per call; the source must define "outputs" and
// may define "next" (the partial state patch).
const cuePrelude = `
inputs: _
params: _
state: _
`

var (
	pathInputs  = cue.ParsePath("inputs")
	pathParams  = cue.ParsePath("params")
	pathState   = cue.ParsePath("state")
	pathOutputs = cue.ParsePath("outputs")
	pathNext    = cue.ParsePath("next")
)

// CompileCUE compiles a behavior source into a Func. The source is a CUE
// struct body evaluated against {inputs, params, state}:
//
//	outputs: out: inputs.in * 2
//	next: count: state.count + 1
//
// Compilation happens once; each call fills the scope and reads back the
// concrete outputs. Syntax and reference errors surface here as
// *CompileError; evaluation errors surface per call.
func CompileCUE(source string) (Func, error) {
	cctx := cuecontext.New()
	base := cctx.CompileString(cuePrelude + source)
	if err := base.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !base.LookupPath(pathOutputs).Exists() {
		return nil, &CompileError{Message: "behavior source must define outputs"}
	}

	fn := func(call *Call) (graph.ValueMap, error) {
		v := base.FillPath(pathInputs, scopeMap(call.Inputs))
		v = v.FillPath(pathParams, scopeMap(call.Params))
		v = v.FillPath(pathState, scopeMap(call.State))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("fill behavior scope: %w", err)
		}

		outs, err := decodeStruct(v.LookupPath(pathOutputs))
		if err != nil {
			return nil, fmt.Errorf("evaluate outputs: %w", err)
		}
		for port, val := range outs {
			call.Out(port, val)
		}

		nextVal := v.LookupPath(pathNext)
		if !nextVal.Exists() {
			return nil, nil
		}
		patch, err := decodeStruct(nextVal)
		if err != nil {
			return nil, fmt.Errorf("evaluate next state: %w", err)
		}
		return patch, nil
	}
	return fn, nil
}

// scopeMap converts a ValueMap for FillPath. CUE rejects nil; an empty
// struct keeps unreferenced scope fields harmless.
func scopeMap(m graph.ValueMap) map[string]any {
	if out := graph.MapToAny(m); out != nil {
		return out
	}
	return map[string]any{}
}

// decodeStruct reads a concrete CUE struct into a ValueMap.
func decodeStruct(v cue.Value) (graph.ValueMap, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	out := graph.ValueMap{}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		val, err := decodeValue(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}

// decodeValue converts one concrete CUE value into a graph.Value.
func decodeValue(v cue.Value) (graph.Value, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	switch v.Kind() {
	case cue.NullKind:
		return graph.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return graph.Bool(b), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return graph.Str(s), nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return graph.Num(f), nil
	default:
		return nil, fmt.Errorf("value is not concrete or has unsupported kind %v", v.Kind())
	}
}

// CompileError reports a behavior source that failed to compile.
type CompileError struct {
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("behavior compile error at %s: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("behavior compile error: %s", e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{Message: first.Error(), Pos: positions[0]}
	}
	return &CompileError{Message: first.Error()}
}
