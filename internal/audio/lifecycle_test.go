package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

func TestReconcileCreatesNodesForAudioRateOnly(t *testing.T) {
	f := newSyncFixture(t)
	f.add(t, "osc1", "osc")
	f.add(t, "calc", "logic")

	f.reconcile()

	_, ok := f.backend.Handle("osc1")
	assert.True(t, ok)
	_, ok = f.backend.Handle("calc")
	assert.False(t, ok, "logic-only instances get no backend node")

	creates, _, _, _ := f.backend.Counters()
	assert.Equal(t, 1, creates)
}

func TestReconcileIdempotent(t *testing.T) {
	f := newSyncFixture(t)
	f.add(t, "osc1", "osc")

	f.reconcile()
	f.reconcile()
	f.reconcile()

	creates, destroys, _, _ := f.backend.Counters()
	assert.Equal(t, 1, creates, "repeated reconciles never duplicate nodes")
	assert.Zero(t, destroys)
}

func TestReconcileDestroysOrphanNodes(t *testing.T) {
	f := newSyncFixture(t)
	f.add(t, "osc1", "osc")
	f.add(t, "osc2", "osc")
	f.reconcile()

	f.store.RemoveInstance("osc1")
	f.reconcile()

	_, ok := f.backend.Handle("osc1")
	assert.False(t, ok)
	_, ok = f.backend.Handle("osc2")
	assert.True(t, ok)

	_, destroys, _, _ := f.backend.Counters()
	assert.Equal(t, 1, destroys)
}

func TestReconcileDefersSetupUntilReady(t *testing.T) {
	f := newSyncFixture(t)
	f.add(t, "osc1", "osc")
	f.backend.SetReady(false)

	f.reconcile()

	_, ok := f.backend.Handle("osc1")
	assert.False(t, ok)
	inst, _ := f.store.Instance("osc1")
	assert.True(t, inst.NeedsSetup, "setup is deferred, not dropped")

	// Readiness returns: the deferred setup runs and the flag clears.
	f.backend.SetReady(true)
	f.reconcile()

	_, ok = f.backend.Handle("osc1")
	assert.True(t, ok)
	inst, _ = f.store.Instance("osc1")
	assert.False(t, inst.NeedsSetup)
}

func TestReconcileNotReadyFlagsOnce(t *testing.T) {
	f := newSyncFixture(t)
	f.add(t, "osc1", "osc")
	f.backend.SetReady(false)

	f.reconcile()
	rev := f.store.Rev()
	f.reconcile()

	assert.Equal(t, rev, f.store.Rev(), "already-flagged instances are not re-flagged")
}

func TestReconcileInstanceDeletedDuringSetup(t *testing.T) {
	f := newSyncFixture(t)
	st := f.store
	backend := &deletingBackend{FakeBackend: f.backend, store: st, victim: "osc1"}
	manager := NewResourceManager(st, audioLookup, backend)

	f.add(t, "osc1", "osc")
	manager.Reconcile(context.Background())

	// The node created for the concurrently deleted instance is released
	// instead of leaking.
	_, ok := backend.Handle("osc1")
	assert.False(t, ok)
}

// deletingBackend removes its victim instance from the store while that
// instance's node is being created, simulating a deletion that races a
// slow setup.
type deletingBackend struct {
	*FakeBackend
	store  *state.MemoryStore
	victim string
}

func (b *deletingBackend) CreateNode(ctx context.Context, def *graph.BlockDefinition, instanceID string, params graph.ValueMap) (NodeHandle, error) {
	h, err := b.FakeBackend.CreateNode(ctx, def, instanceID, params)
	if err == nil && instanceID == b.victim {
		b.store.RemoveInstance(b.victim)
	}
	return h, err
}

func TestRelease(t *testing.T) {
	f := newSyncFixture(t)
	f.add(t, "osc1", "osc")
	f.reconcile()

	f.manager.Release("osc1")
	_, ok := f.backend.Handle("osc1")
	assert.False(t, ok)

	// Releasing again is a no-op.
	f.manager.Release("osc1")
	_, destroys, _, _ := f.backend.Counters()
	assert.Equal(t, 1, destroys)
}

func TestFakeBackendMessages(t *testing.T) {
	b := NewFakeBackend()
	b.SendMessage("osc1", map[string]any{"type": "trigger_attack"})

	msgs := b.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "osc1", msgs[0].InstanceID)
}

func TestFakeBackendCreateNotReady(t *testing.T) {
	b := NewFakeBackend()
	b.SetReady(false)

	_, err := b.CreateNode(context.Background(), audioDefs["osc"], "osc1", nil)
	require.Error(t, err)
}
