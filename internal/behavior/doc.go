// Package behavior defines the pluggable compute-unit contract executed
// once per tick for every logic-bearing block instance, and the machinery
// that compiles and caches those units.
//
// A behavior is an opaque callable {inputs, params, state} -> {outputs,
// next state}. Two kinds exist behind the same Func type:
//
//   - native behaviors: Go functions registered in a Registry by
//     definition id (built-in blocks);
//   - compiled behaviors: CUE expressions compiled once per instance
//     through cuelang.org/go and evaluated against the call's scope.
//
// Compilation and caching are an implementation detail of this package;
// the executor treats every behavior as an opaque Func. The Cache keys
// compiled entries by instance id and invalidates them when the underlying
// source hash changes; entries are evictable individually or in bulk.
package behavior
