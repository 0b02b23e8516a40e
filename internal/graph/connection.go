package graph

// Endpoint names one side of a connection: an instance and one of its ports.
type Endpoint struct {
	Instance string
	Port     string
}

// Connection is a directed wire from one instance's output port to another
// instance's input port. A connection whose endpoints no longer resolve is
// invalid and must be pruned by the owning store, never silently tolerated.
type Connection struct {
	ID     string
	Source Endpoint
	Target Endpoint
}

// IsSelfLoop reports whether the connection starts and ends on the same
// instance. Self-loops are legal in the model but never count as a
// dependency edge for execution ordering.
func (c Connection) IsSelfLoop() bool {
	return c.Source.Instance == c.Target.Instance
}

// IncomingTo returns the first connection in conns targeting the given
// input port of instance id, in slice order. With the store's fan-in
// rejection there is at most one; if a hand-built connection set supplies
// fan-in anyway, first match in declaration order wins deterministically.
func IncomingTo(conns []Connection, instance, port string) (Connection, bool) {
	for _, c := range conns {
		if c.Target.Instance == instance && c.Target.Port == port {
			return c, true
		}
	}
	return Connection{}, false
}
