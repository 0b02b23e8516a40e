// Package graph provides the data model for the block dataflow core.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import graph; graph imports nothing internal. This keeps
// the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Signal values are a sealed Value interface (Num, Str, Bool, Null);
//     every port type has an explicit default so downstream blocks never
//     observe an absent value.
//   - BlockDefinition is shared and immutable after construction; many
//     BlockInstance records reference one definition.
//   - TickOutputs is owned by exactly one tick; it is seeded from the
//     previous tick's published outputs and discarded after publishing.
//   - State merge semantics are explicit: Merge applies a shallow override,
//     returned keys overwrite, omitted keys persist.
package graph
