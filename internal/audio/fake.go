package audio

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// Message is one recorded SendMessage call.
type Message struct {
	InstanceID string
	Payload    any
}

// FakeBackend is the in-memory Backend used by tests and the CLI's run
// command. It records every call so assertions can check exact backend
// traffic, supports scripted readiness, and can be told to fail connects
// into specific nodes.
type FakeBackend struct {
	mu          sync.Mutex
	ready       bool
	nodes       map[string]NodeHandle
	links       map[link]bool
	paths       map[string][]Target // key: instanceID + "/" + port
	failConnect map[NodeHandle]bool

	createCalls     int
	destroyCalls    int
	connectCalls    int
	disconnectCalls int
	messages        []Message
}

// NewFakeBackend creates a ready fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		ready:       true,
		nodes:       make(map[string]NodeHandle),
		links:       make(map[link]bool),
		paths:       make(map[string][]Target),
		failConnect: make(map[NodeHandle]bool),
	}
}

// SetReady scripts backend readiness.
func (b *FakeBackend) SetReady(ready bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = ready
}

// FailConnectsTo makes every Connect into the given node fail.
func (b *FakeBackend) FailConnectsTo(node NodeHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failConnect[node] = true
}

// RoutePaths registers multi-path routing for a custom unit's input port.
func (b *FakeBackend) RoutePaths(instanceID, port string, targets ...Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths[instanceID+"/"+port] = targets
}

// Ready implements Backend.
func (b *FakeBackend) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// CreateNode implements Backend. Creating an instance's node twice
// returns the existing handle without counting a second create.
func (b *FakeBackend) CreateNode(_ context.Context, _ *graph.BlockDefinition, instanceID string, _ graph.ValueMap) (NodeHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return "", fmt.Errorf("backend not ready")
	}
	if h, ok := b.nodes[instanceID]; ok {
		return h, nil
	}
	h := NodeHandle("node:" + instanceID)
	b.nodes[instanceID] = h
	b.createCalls++
	return h, nil
}

// DestroyNode implements Backend. Idempotent.
func (b *FakeBackend) DestroyNode(instanceID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.nodes[instanceID]
	if !ok {
		return
	}
	delete(b.nodes, instanceID)
	b.destroyCalls++

	// Drop links touching the destroyed node.
	for l := range b.links {
		if l.src == h || l.dst.Node == h {
			delete(b.links, l)
		}
	}
}

// Connect implements Backend.
func (b *FakeBackend) Connect(src NodeHandle, dst Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.connectCalls++
	if b.failConnect[dst.Node] {
		return fmt.Errorf("connect to %s refused", dst)
	}
	b.links[link{src: src, dst: dst}] = true
	return nil
}

// Disconnect implements Backend. Unknown links are a no-op.
func (b *FakeBackend) Disconnect(src NodeHandle, dst Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.disconnectCalls++
	delete(b.links, link{src: src, dst: dst})
	return nil
}

// SendMessage implements Backend.
func (b *FakeBackend) SendMessage(instanceID string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, Message{InstanceID: instanceID, Payload: payload})
}

// Handle implements Backend.
func (b *FakeBackend) Handle(instanceID string) (NodeHandle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.nodes[instanceID]
	return h, ok
}

// PathTargets implements Backend.
func (b *FakeBackend) PathTargets(instanceID, port string) ([]Target, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.paths[instanceID+"/"+port]
	return t, ok
}

// NodeIDs implements Backend.
func (b *FakeBackend) NodeIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasLink reports whether a physical connection is currently established.
func (b *FakeBackend) HasLink(src NodeHandle, dst Target) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.links[link{src: src, dst: dst}]
}

// LinkCount returns the number of established physical connections.
func (b *FakeBackend) LinkCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.links)
}

// Counters returns (creates, destroys, connects, disconnects).
func (b *FakeBackend) Counters() (creates, destroys, connects, disconnects int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createCalls, b.destroyCalls, b.connectCalls, b.disconnectCalls
}

// Messages returns every recorded SendMessage call in order.
func (b *FakeBackend) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}
