package audio

import (
	"context"
	"fmt"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// NodeHandle identifies a live processing node inside the backend.
// Opaque to the core; only the backend interprets it.
type NodeHandle string

// TargetKind tags the variant of a connection target.
type TargetKind int

const (
	// TargetNode routes into a node's signal input.
	TargetNode TargetKind = iota + 1
	// TargetParam routes into a named automation parameter on a node,
	// bypassing per-tick logic execution.
	TargetParam
)

// Target is the tagged destination of one physical backend connection:
// either a plain node input or a specific automation parameter on a node.
// Multi-path routing is expressed as several (sub-id, Target) pairs
// resolved per logical connection, not as a third variant here.
type Target struct {
	Kind  TargetKind
	Node  NodeHandle
	Param string
}

// NodeOf builds a plain node target.
func NodeOf(h NodeHandle) Target {
	return Target{Kind: TargetNode, Node: h}
}

// ParamOf builds an automation-parameter target.
func ParamOf(h NodeHandle, param string) Target {
	return Target{Kind: TargetParam, Node: h, Param: param}
}

// String renders a target for logs.
func (t Target) String() string {
	if t.Kind == TargetParam {
		return fmt.Sprintf("%s.%s", t.Node, t.Param)
	}
	return string(t.Node)
}

// Backend is the contract the core requires from the real-time audio
// runtime. Connect, Disconnect, and SendMessage are fire-and-forget from
// the core's perspective; CreateNode may take real time and is the only
// asynchronous boundary.
type Backend interface {
	// Ready reports whether the backend can accept node and connection
	// operations.
	Ready() bool

	// CreateNode provisions the processing node for an instance. The
	// returned handle stays valid until DestroyNode.
	CreateNode(ctx context.Context, def *graph.BlockDefinition, instanceID string, params graph.ValueMap) (NodeHandle, error)

	// DestroyNode tears an instance's node down. Destroying a node that
	// does not exist is a no-op (teardown is idempotent).
	DestroyNode(instanceID string)

	// Connect establishes one physical connection.
	Connect(src NodeHandle, dst Target) error

	// Disconnect removes one physical connection. Disconnecting a
	// connection that does not exist is a no-op.
	Disconnect(src NodeHandle, dst Target) error

	// SendMessage posts an out-of-band control message to an instance's
	// processing unit.
	SendMessage(instanceID string, payload any)

	// Handle resolves an instance id to its current processing-node
	// handle. Missing while setup is pending or after teardown.
	Handle(instanceID string) (NodeHandle, bool)

	// PathTargets resolves multi-path internal routing for a custom
	// processing unit: the physically distinct stages one logical input
	// fans into, in path order. False for single-path inputs.
	PathTargets(instanceID, port string) ([]Target, bool)

	// NodeIDs lists the instance ids that currently own a node. Used by
	// the resource manager to destroy nodes for deleted instances.
	NodeIDs() []string
}
