// Package audio owns the boundary to the real-time audio backend: the
// Backend contract, the graph synchronizer that reconciles logical
// connections against the backend's live connections, and the resource
// lifecycle manager that keeps one backend node per real-time instance.
//
// The synchronizer and the resource manager run on their own cadence,
// never inside a logic tick; they share only the state store with the
// engine. The Active set (connection id -> established backend link) is
// owned exclusively by the Synchronizer - no other component mutates it.
//
// Fail-safe policy: when the backend is not ready or the system is
// globally disabled, every established link is torn down and the set
// cleared - silence is preferred over stale audio. Individual connect or
// disconnect failures are logged and skipped, never abort a pass.
package audio
