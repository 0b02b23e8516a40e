// Package testutil provides deterministic test doubles shared across
// package tests: a scripted id generator and a resettable logical clock.
package testutil

import (
	"strconv"
	"sync"
)

// ScriptedIDs returns predetermined ids in order, enabling deterministic
// graph construction and golden trace comparison in tests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type ScriptedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewScriptedIDs creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewScriptedIDs("a", "b", "c")
//	gen.NewID() // "a"
//	gen.NewID() // "b"
//
// Panics when all ids are consumed - a fail-fast signal that the test
// script and the code under test disagree about how many ids are needed.
func NewScriptedIDs(ids ...string) *ScriptedIDs {
	return &ScriptedIDs{ids: ids}
}

// NewID returns the next predetermined id.
func (g *ScriptedIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("ScriptedIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// SequentialIDs generates "prefix-1", "prefix-2", ... without a fixed
// script, for tests that only need stable ids rather than exact ones.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a sequential generator with the given prefix.
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{prefix: prefix}
}

// NewID returns the next sequential id.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.prefix + "-" + strconv.Itoa(g.n)
}
