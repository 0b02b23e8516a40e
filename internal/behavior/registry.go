package behavior

import (
	"fmt"
	"sync"
)

// Registry holds native Go behaviors keyed by definition id. Native
// behaviors are pre-compiled and shared by every instance of a definition;
// they take priority over CUE sources during resolution.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds a native behavior to a definition id.
// Re-registering an id overwrites the previous binding.
func (r *Registry) Register(definitionID string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("register %s: nil behavior", definitionID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[definitionID] = fn
	return nil
}

// Lookup returns the native behavior for a definition id.
func (r *Registry) Lookup(definitionID string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[definitionID]
	return fn, ok
}
