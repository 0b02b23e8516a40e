// Package patch loads YAML graph descriptions and instantiates them into
// a state store against a block library.
//
// A patch is the composition-root input format for the CLI and the test
// harness - a way to describe a graph of blocks and wires in one file. It
// is not a user-project persistence format; that concern lives outside
// this repo.
//
// The Library carries the built-in block definitions and their native
// behaviors. The built-ins here are a deliberately small demo set
// exercising the generic block contract (pure logic blocks, backend-
// managed audio blocks, a parameter-target input, a custom multi-path
// unit, and inline CUE-defined blocks) - not a DSP library.
package patch
