package audio

import (
	"context"
	"log/slog"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

// ResourceManager keeps exactly one backend node alive per instance whose
// definition requires one, for as long as the instance exists and the
// backend is ready.
//
// Setup is deferred, not retried eagerly: when the backend is not ready,
// instances are marked NeedsSetup and setup runs again on the next
// Reconcile after readiness changes. Setup and teardown are idempotent.
type ResourceManager struct {
	store   state.Store
	lookup  graph.DefinitionLookup
	backend Backend
}

// NewResourceManager wires a resource manager.
func NewResourceManager(st state.Store, lookup graph.DefinitionLookup, backend Backend) *ResourceManager {
	return &ResourceManager{store: st, lookup: lookup, backend: backend}
}

// Reconcile makes the backend's node set match the instance set: create
// nodes for real-time instances that lack one, destroy nodes whose
// instance is gone. Call it when instances change and whenever backend
// readiness changes.
func (m *ResourceManager) Reconcile(ctx context.Context) {
	instances := m.store.Instances()

	if !m.backend.Ready() {
		// Defer: flag instances so a later pass retries, and nothing else.
		var updates []state.InstanceUpdate
		for _, inst := range instances {
			def, ok := m.lookup(inst)
			if !ok || !def.RequiresNode() || inst.NeedsSetup {
				continue
			}
			updates = append(updates, needsSetupUpdate(inst.ID, true))
		}
		if len(updates) > 0 {
			m.store.ApplyUpdates(updates)
			slog.Debug("backend not ready, node setup deferred", "instances", len(updates))
		}
		return
	}

	live := make(map[string]bool, len(instances))
	var updates []state.InstanceUpdate

	for _, inst := range instances {
		def, ok := m.lookup(inst)
		if !ok || !def.RequiresNode() {
			continue
		}
		live[inst.ID] = true

		if _, exists := m.backend.Handle(inst.ID); exists {
			// Second setup on a configured instance is a no-op.
			if inst.NeedsSetup {
				updates = append(updates, needsSetupUpdate(inst.ID, false))
			}
			continue
		}

		handle, err := m.backend.CreateNode(ctx, def, inst.ID, inst.Params)
		if err != nil {
			slog.Warn("backend node setup failed, deferred",
				"instance", inst.ID,
				"definition", def.ID,
				"error", err,
			)
			if !inst.NeedsSetup {
				updates = append(updates, needsSetupUpdate(inst.ID, true))
			}
			continue
		}

		// Setup may have taken real time: if the instance was deleted
		// meanwhile, release the orphan node instead of mutating state.
		if _, stillExists := m.store.Instance(inst.ID); !stillExists {
			slog.Debug("instance deleted during node setup, releasing", "instance", inst.ID)
			m.backend.DestroyNode(inst.ID)
			continue
		}

		slog.Debug("backend node created", "instance", inst.ID, "handle", handle)
		updates = append(updates, needsSetupUpdate(inst.ID, false))
	}

	// Destroy nodes whose instance is gone. DestroyNode is idempotent.
	for _, id := range m.backend.NodeIDs() {
		if !live[id] {
			m.backend.DestroyNode(id)
			slog.Debug("backend node released", "instance", id)
		}
	}

	if len(updates) > 0 {
		m.store.ApplyUpdates(updates)
	}
}

// Release tears down one instance's node. Idempotent; call on deletion.
func (m *ResourceManager) Release(instanceID string) {
	m.backend.DestroyNode(instanceID)
}

func needsSetupUpdate(instanceID string, needs bool) state.InstanceUpdate {
	return state.InstanceUpdate{
		InstanceID: instanceID,
		Apply: func(inst *graph.BlockInstance) {
			inst.NeedsSetup = needs
		},
	}
}
