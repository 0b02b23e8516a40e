package state

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// MemoryStore is the in-memory reference Store. It is the single writer
// surface for graph mutations; every read hands out defensive copies.
//
// Thread-safety: all methods are safe for concurrent use via an internal
// mutex, though the core's cooperative scheduling means contention is rare.
type MemoryStore struct {
	mu          sync.Mutex
	order       []string // instance insertion order
	instances   map[string]*graph.BlockInstance
	connections []graph.Connection
	logs        map[string][]string
	lookup      graph.DefinitionLookup
	rev         int64
}

// NewMemoryStore creates an empty store. The definition lookup is used to
// validate connection endpoints at creation time; pass nil to skip
// port-level validation (hand-built test graphs).
func NewMemoryStore(lookup graph.DefinitionLookup) *MemoryStore {
	return &MemoryStore{
		instances: make(map[string]*graph.BlockInstance),
		logs:      make(map[string][]string),
		lookup:    lookup,
	}
}

// AddInstance inserts a new instance. The instance is copied; the caller's
// value is not retained.
func (s *MemoryStore) AddInstance(inst *graph.BlockInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instances[inst.ID]; exists {
		return &GraphError{
			Code:       ErrCodeDuplicateID,
			Message:    "instance id already in use",
			InstanceID: inst.ID,
		}
	}
	s.instances[inst.ID] = inst.Clone()
	s.order = append(s.order, inst.ID)
	s.rev++
	return nil
}

// RemoveInstance deletes an instance and prunes every connection that
// references it. Removing an unknown id is a no-op.
func (s *MemoryStore) RemoveInstance(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instances[id]; !exists {
		return
	}
	delete(s.instances, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	kept := s.connections[:0]
	pruned := 0
	for _, c := range s.connections {
		if c.Source.Instance == id || c.Target.Instance == id {
			pruned++
			continue
		}
		kept = append(kept, c)
	}
	s.connections = kept
	s.rev++

	if pruned > 0 {
		slog.Debug("pruned dangling connections",
			"instance", id,
			"count", pruned,
		)
	}
}

// AddConnection validates and inserts a connection.
//
// Validation, in order: both endpoints must name live instances; when a
// definition lookup is available, the source port must be a declared
// output, the target port a declared input, and their types compatible;
// the target input port must be free (fan-in is rejected with
// ErrCodePortOccupied - the deterministic policy for the open fan-in
// question, documented in DESIGN.md).
func (s *MemoryStore) AddConnection(conn graph.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.connections {
		if existing.ID == conn.ID {
			return &GraphError{Code: ErrCodeDuplicateID, Message: fmt.Sprintf("connection id %q already in use", conn.ID)}
		}
	}

	src, ok := s.instances[conn.Source.Instance]
	if !ok {
		return &GraphError{Code: ErrCodeUnknownInstance, Message: "source instance not found", InstanceID: conn.Source.Instance}
	}
	dst, ok := s.instances[conn.Target.Instance]
	if !ok {
		return &GraphError{Code: ErrCodeUnknownInstance, Message: "target instance not found", InstanceID: conn.Target.Instance}
	}

	if s.lookup != nil {
		srcDef, ok := s.lookup(src)
		if !ok {
			return &GraphError{Code: ErrCodeUnknownInstance, Message: "source definition not found", InstanceID: src.ID}
		}
		dstDef, ok := s.lookup(dst)
		if !ok {
			return &GraphError{Code: ErrCodeUnknownInstance, Message: "target definition not found", InstanceID: dst.ID}
		}
		outPort, ok := srcDef.Output(conn.Source.Port)
		if !ok {
			return &GraphError{Code: ErrCodeUnknownPort, Message: "not an output port", InstanceID: src.ID, Port: conn.Source.Port}
		}
		inPort, ok := dstDef.Input(conn.Target.Port)
		if !ok {
			return &GraphError{Code: ErrCodeUnknownPort, Message: "not an input port", InstanceID: dst.ID, Port: conn.Target.Port}
		}
		if !graph.Compatible(outPort.Type, inPort.Type) {
			return &GraphError{
				Code:       ErrCodeTypeMismatch,
				Message:    fmt.Sprintf("cannot wire %s output into %s input", outPort.Type, inPort.Type),
				InstanceID: dst.ID,
				Port:       conn.Target.Port,
			}
		}
	}

	for _, existing := range s.connections {
		if existing.Target == conn.Target {
			return &GraphError{
				Code:       ErrCodePortOccupied,
				Message:    "input port already has an incoming connection",
				InstanceID: conn.Target.Instance,
				Port:       conn.Target.Port,
			}
		}
	}

	s.connections = append(s.connections, conn)
	s.rev++
	return nil
}

// RemoveConnection deletes a connection by id. Unknown ids are a no-op.
func (s *MemoryStore) RemoveConnection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.connections {
		if c.ID == id {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			s.rev++
			return
		}
	}
}

// Instances returns every instance as defensive copies, insertion order.
func (s *MemoryStore) Instances() []*graph.BlockInstance {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*graph.BlockInstance, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.instances[id].Clone())
	}
	return out
}

// Instance returns one instance by id as a defensive copy.
func (s *MemoryStore) Instance(id string) (*graph.BlockInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[id]
	if !ok {
		return nil, false
	}
	return inst.Clone(), true
}

// Connections returns every connection in insertion order.
func (s *MemoryStore) Connections() []graph.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]graph.Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

// ApplyUpdates implements the batched per-tick mutation. Each update's
// Apply runs against the store's own copy. Updates for instances deleted
// mid-tick are skipped silently - the tick raced a removal, which is fine.
func (s *MemoryStore) ApplyUpdates(updates []InstanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		inst, ok := s.instances[u.InstanceID]
		if !ok {
			continue
		}
		if u.Apply != nil {
			u.Apply(inst)
		}
	}
	if len(updates) > 0 {
		s.rev++
	}
}

// AddLog appends a user-visible log line for an instance.
func (s *MemoryStore) AddLog(instanceID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[instanceID] = append(s.logs[instanceID], message)
}

// Logs returns the recorded log lines for an instance.
func (s *MemoryStore) Logs(instanceID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.logs[instanceID]))
	copy(out, s.logs[instanceID])
	return out
}

// Rev returns a counter that increases on every mutation. Synchronizer
// passes can use it to skip work when the graph is unchanged.
func (s *MemoryStore) Rev() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rev
}
