package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/engine"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

// link is one established backend connection.
type link struct {
	src NodeHandle
	dst Target
}

// SyncResult summarizes one synchronization pass.
type SyncResult struct {
	// Connected is the number of connect calls issued this pass.
	Connected int
	// Disconnected is the number of disconnect calls issued this pass.
	Disconnected int
	// Failed is the number of connect calls that failed and were skipped.
	Failed int
	// Active is the size of the active set after the pass.
	Active int
}

// Synchronizer diffs the logical connection set against the backend's
// live connections and issues minimal connect/disconnect operations.
//
// Invariants:
//   - After a pass, the active set corresponds 1:1 (1:N for multi-path)
//     with the logical connections whose endpoints resolve to ready,
//     audio-wirable ports.
//   - Two consecutive passes over an unchanged graph issue zero backend
//     calls (idempotence); adding one connection issues exactly one
//     connect and no disconnects (minimal churn).
//   - The active set is owned exclusively by this type.
type Synchronizer struct {
	store   state.Store
	lookup  graph.DefinitionLookup
	backend Backend
	ctx     engine.ContextSource

	mu     sync.Mutex
	inSync bool
	active map[string]link
}

// NewSynchronizer wires a synchronizer with an empty active set.
func NewSynchronizer(st state.Store, lookup graph.DefinitionLookup, backend Backend, ctx engine.ContextSource) *Synchronizer {
	return &Synchronizer{
		store:   st,
		lookup:  lookup,
		backend: backend,
		ctx:     ctx,
		active:  make(map[string]link),
	}
}

// ActiveCount returns the current size of the active set.
func (s *Synchronizer) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Sync runs one reconciliation pass. Safe to call from a periodic
// callback; a recursive invocation from within a backend callback is
// detected and refused (no-op result).
func (s *Synchronizer) Sync() SyncResult {
	s.mu.Lock()
	if s.inSync {
		s.mu.Unlock()
		slog.Warn("synchronization pass re-entered, skipping")
		return SyncResult{}
	}
	s.inSync = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inSync = false
		s.mu.Unlock()
	}()

	if !s.backend.Ready() || !s.ctx.Enabled() {
		return s.teardownAll()
	}

	var res SyncResult
	confirmed := make(map[string]link, len(s.active))

	for _, conn := range s.store.Connections() {
		for _, rt := range s.resolve(conn) {
			want := link{src: rt.src, dst: rt.dst}
			if have, ok := s.active[rt.subID]; ok && have == want {
				// Unchanged link: reconfirm without touching the backend.
				confirmed[rt.subID] = have
				continue
			}
			if err := s.backend.Connect(want.src, want.dst); err != nil {
				// Per-connection failure: log, skip, keep going. Not
				// recorded, so the next pass retries.
				res.Failed++
				slog.Warn("backend connect failed",
					"connection", rt.subID,
					"source", want.src,
					"target", want.dst.String(),
					"error", err,
				)
				continue
			}
			res.Connected++
			confirmed[rt.subID] = want
		}
	}

	// Minimal churn: only entries not reconfirmed this pass are stale.
	for id, have := range s.active {
		if _, ok := confirmed[id]; ok {
			continue
		}
		if err := s.backend.Disconnect(have.src, have.dst); err != nil {
			slog.Warn("backend disconnect failed",
				"connection", id,
				"error", err,
			)
		}
		res.Disconnected++
	}

	s.mu.Lock()
	s.active = confirmed
	s.mu.Unlock()

	res.Active = len(confirmed)
	if res.Connected > 0 || res.Disconnected > 0 || res.Failed > 0 {
		slog.Debug("synchronization pass",
			"connected", res.Connected,
			"disconnected", res.Disconnected,
			"failed", res.Failed,
			"active", res.Active,
		)
	}
	return res
}

// teardownAll disconnects every established link and clears the active
// set: fail safe to silence rather than stale audio.
func (s *Synchronizer) teardownAll() SyncResult {
	var res SyncResult
	for id, have := range s.active {
		if err := s.backend.Disconnect(have.src, have.dst); err != nil {
			slog.Warn("backend disconnect failed during teardown",
				"connection", id,
				"error", err,
			)
		}
		res.Disconnected++
	}

	s.mu.Lock()
	s.active = make(map[string]link)
	s.mu.Unlock()

	if res.Disconnected > 0 {
		slog.Info("backend unavailable or system disabled, all connections torn down",
			"disconnected", res.Disconnected,
		)
	}
	return res
}

// resolvedTarget is one physical path a logical connection expands to.
type resolvedTarget struct {
	subID string
	src   NodeHandle
	dst   Target
}

// resolve expands a logical connection into its physical paths. Returns
// nil when the connection is not backend-wirable this pass: an endpoint or
// definition is missing, the ports are not audio-compatible, or a handle
// is not available yet (setup pending instances are excluded from
// targeting but keep participating in logic execution).
func (s *Synchronizer) resolve(conn graph.Connection) []resolvedTarget {
	srcInst, ok := s.store.Instance(conn.Source.Instance)
	if !ok {
		return nil
	}
	dstInst, ok := s.store.Instance(conn.Target.Instance)
	if !ok {
		return nil
	}
	srcDef, ok := s.lookup(srcInst)
	if !ok {
		return nil
	}
	dstDef, ok := s.lookup(dstInst)
	if !ok {
		return nil
	}
	outPort, ok := srcDef.Output(conn.Source.Port)
	if !ok {
		return nil
	}
	inPort, ok := dstDef.Input(conn.Target.Port)
	if !ok {
		return nil
	}
	if !audioWirable(outPort, inPort) {
		return nil
	}

	srcHandle, ok := s.backend.Handle(srcInst.ID)
	if !ok {
		return nil
	}
	dstHandle, ok := s.backend.Handle(dstInst.ID)
	if !ok {
		return nil
	}

	// Custom units may split one logical input across several physically
	// distinct internal stages; each gets a synthesized sub-id so the
	// diff treats the paths independently.
	if dstDef.CustomUnit {
		if paths, ok := s.backend.PathTargets(dstInst.ID, conn.Target.Port); ok {
			out := make([]resolvedTarget, 0, len(paths))
			for i, t := range paths {
				out = append(out, resolvedTarget{
					subID: fmt.Sprintf("%s-path%d", conn.ID, i+1),
					src:   srcHandle,
					dst:   t,
				})
			}
			return out
		}
	}

	dst := NodeOf(dstHandle)
	if inPort.ParamTarget != "" {
		dst = ParamOf(dstHandle, inPort.ParamTarget)
	}
	return []resolvedTarget{{subID: conn.ID, src: srcHandle, dst: dst}}
}

// audioWirable reports whether a logical connection between these ports
// belongs on the backend graph: types must be compatible and the route
// must carry signal at audio rate - an audio port on either end, or a
// declared automation parameter target.
func audioWirable(out, in graph.Port) bool {
	if !graph.Compatible(out.Type, in.Type) {
		return false
	}
	return out.Type == graph.TypeAudio || in.Type == graph.TypeAudio || in.ParamTarget != ""
}
