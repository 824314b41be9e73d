package stream

import "fmt"

// Kind identifies what an event does.
type Kind int

const (
	NodeAdded Kind = iota
	NodeRemoved
	EdgeAdded
	EdgeRemoved
	AttributeAdded
	AttributeChanged
	AttributeRemoved
	GraphCleared
	StepBegins
)

var kindNames = [...]string{
	"node-added", "node-removed", "edge-added", "edge-removed",
	"attribute-added", "attribute-changed", "attribute-removed",
	"graph-cleared", "step-begins",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Target is the element an attribute event applies to.
type Target int

const (
	TargetGraph Target = iota
	TargetNode
	TargetEdge
)

func (t Target) String() string {
	switch t {
	case TargetNode:
		return "node"
	case TargetEdge:
		return "edge"
	default:
		return "graph"
	}
}

// Event is one graph mutation. Every event carries the id of the source that
// produced it and a time id that grows monotonically per source; a sink
// ignores a (SourceID, TimeID) pair it has already seen.
type Event struct {
	SourceID string `json:"source"`
	TimeID   uint64 `json:"time"`
	Kind     Kind   `json:"kind"`

	// Target and ElementID address attribute events. ElementID is also the
	// node or edge id of structural events.
	Target    Target `json:"target,omitempty"`
	ElementID string `json:"id,omitempty"`

	// From, To and Directed describe EdgeAdded.
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Directed bool   `json:"directed,omitempty"`

	// Key and Value describe attribute events. Value is nil for removals.
	Key   string `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`

	// Step is the simulation time of StepBegins.
	Step float64 `json:"step,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EdgeAdded:
		return fmt.Sprintf("%s@%d %s %s %s->%s", e.SourceID, e.TimeID, e.Kind, e.ElementID, e.From, e.To)
	case AttributeAdded, AttributeChanged, AttributeRemoved:
		return fmt.Sprintf("%s@%d %s %s[%s].%s", e.SourceID, e.TimeID, e.Kind, e.Target, e.ElementID, e.Key)
	default:
		return fmt.Sprintf("%s@%d %s %s", e.SourceID, e.TimeID, e.Kind, e.ElementID)
	}
}

// IsAttribute reports whether the event sets or removes an attribute.
func (e Event) IsAttribute() bool {
	return e.Kind == AttributeAdded || e.Kind == AttributeChanged || e.Kind == AttributeRemoved
}
