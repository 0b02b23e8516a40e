package graph

// PortType tags the kind of signal a port carries.
type PortType string

const (
	TypeAudio   PortType = "audio"
	TypeNumber  PortType = "number"
	TypeString  PortType = "string"
	TypeBoolean PortType = "boolean"
	TypeGate    PortType = "gate"
	TypeTrigger PortType = "trigger"
	TypeAny     PortType = "any"
)

// Direction distinguishes input ports from output ports.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Port is a typed slot on a block definition. Ports are immutable and
// shared by every instance of the definition.
//
// ParamTarget, when non-empty on an input port, names the backend
// automation parameter this port drives when wired at audio rate. The
// synchronizer routes matching connections directly to that parameter
// instead of the node input.
type Port struct {
	ID          string
	Direction   Direction
	Type        PortType
	ParamTarget string
}

// DefaultFor returns the value an unconnected (or not-yet-produced) input
// of the given type observes. Downstream logic never sees an absent value.
func DefaultFor(t PortType) Value {
	switch t {
	case TypeAudio, TypeNumber:
		return Num(0)
	case TypeString:
		return Str("")
	case TypeBoolean, TypeGate:
		return Bool(false)
	default: // trigger, any
		return Null{}
	}
}

// Compatible reports whether an output of type out may be wired into an
// input of type in. Any matches everything; audio and number interchange
// (a number stream can drive an audio-rate input and vice versa); gate and
// boolean interchange. Trigger only pairs with trigger.
func Compatible(out, in PortType) bool {
	if out == in || out == TypeAny || in == TypeAny {
		return true
	}
	numeric := func(t PortType) bool { return t == TypeAudio || t == TypeNumber }
	logical := func(t PortType) bool { return t == TypeBoolean || t == TypeGate }
	if numeric(out) && numeric(in) {
		return true
	}
	if logical(out) && logical(in) {
		return true
	}
	return false
}
