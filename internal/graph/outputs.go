package graph

// TickOutputs is the transient per-tick output table: instance id ->
// (output port id -> value). It is owned by exactly one tick's execution.
// Entries are seeded from each instance's previously published outputs and
// overwritten as instances execute in topological order, so a downstream
// block reads fresh values from sources that already ran this tick and the
// previous tick's values from sources that have not.
type TickOutputs struct {
	byInstance map[string]ValueMap
}

// NewTickOutputs seeds a tick output table from the instances' last
// published outputs.
func NewTickOutputs(instances []*BlockInstance) *TickOutputs {
	t := &TickOutputs{byInstance: make(map[string]ValueMap, len(instances))}
	for _, inst := range instances {
		if len(inst.LastOutputs) > 0 {
			t.byInstance[inst.ID] = inst.LastOutputs.Clone()
		}
	}
	return t
}

// Lookup reads one output value. The second result is false when the
// instance has no entry or the port is unset, in which case the caller
// substitutes the input port's type default.
func (t *TickOutputs) Lookup(instance, port string) (Value, bool) {
	outs, ok := t.byInstance[instance]
	if !ok {
		return nil, false
	}
	v, ok := outs[port]
	return v, ok
}

// Publish overwrites an instance's entry with the complete output map it
// produced this tick. An empty map is valid (errored instances publish
// empty outputs so consumers fall back to defaults).
func (t *TickOutputs) Publish(instance string, outputs ValueMap) {
	t.byInstance[instance] = outputs
}

// Get returns an instance's current entry.
func (t *TickOutputs) Get(instance string) (ValueMap, bool) {
	outs, ok := t.byInstance[instance]
	return outs, ok
}

// Snapshot returns a defensive copy of the whole table, used when
// publishing the tick's results back to the store.
func (t *TickOutputs) Snapshot() map[string]ValueMap {
	out := make(map[string]ValueMap, len(t.byInstance))
	for id, m := range t.byInstance {
		out[id] = m.Clone()
	}
	return out
}
