package stream

import (
	"sync"

	"github.com/google/uuid"
)

// Sink receives graph events.
type Sink interface {
	Handle(e Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(e Event)

// Handle implements Sink.
func (f SinkFunc) Handle(e Event) { f(e) }

// SinkTime remembers the last time id seen from every source.
type SinkTime struct {
	last map[string]uint64
}

// NewSinkTime creates an empty tracker.
func NewSinkTime() *SinkTime {
	return &SinkTime{last: make(map[string]uint64)}
}

// IsNew reports whether (source, time) has not been seen yet and records
// it. Time ids are monotonic per source, so any id at or below the last
// recorded one is a replay.
func (s *SinkTime) IsNew(source string, time uint64) bool {
	if last, ok := s.last[source]; ok && time <= last {
		return false
	}
	s.last[source] = time
	return true
}

// Source stamps events with its id and a monotonically increasing time id
// and forwards them to its sinks. It is safe for concurrent use.
type Source struct {
	id string

	mu    sync.Mutex
	time  uint64
	next  int
	sinks []registered
}

type registered struct {
	id   int
	sink Sink
}

// NewSource creates a source. An empty id is replaced by a random UUID.
func NewSource(id string) *Source {
	if id == "" {
		id = uuid.NewString()
	}
	return &Source{id: id}
}

// ID returns the source id.
func (s *Source) ID() string { return s.id }

// AddSink registers a sink and returns a function that unregisters it.
func (s *Source) AddSink(sink Sink) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.sinks = append(s.sinks, registered{id: id, sink: sink})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, r := range s.sinks {
			if r.id == id {
				s.sinks = append(s.sinks[:i:i], s.sinks[i+1:]...)
				return
			}
		}
	}
}

// Stamp assigns the source id and the next time id to e.
func (s *Source) Stamp(e Event) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.time++
	e.SourceID = s.id
	e.TimeID = s.time
	return e
}

// Emit stamps e and delivers it to every sink, in registration order.
func (s *Source) Emit(e Event) Event {
	e = s.Stamp(e)
	s.Send(e)
	return e
}

// Send delivers an already stamped event to every sink.
func (s *Source) Send(e Event) {
	s.mu.Lock()
	sinks := append([]registered(nil), s.sinks...)
	s.mu.Unlock()
	for _, r := range sinks {
		r.sink.Handle(e)
	}
}

// AddNode emits NodeAdded.
func (s *Source) AddNode(id string) Event {
	return s.Emit(Event{Kind: NodeAdded, Target: TargetNode, ElementID: id})
}

// RemoveNode emits NodeRemoved.
func (s *Source) RemoveNode(id string) Event {
	return s.Emit(Event{Kind: NodeRemoved, Target: TargetNode, ElementID: id})
}

// AddEdge emits EdgeAdded.
func (s *Source) AddEdge(id, from, to string, directed bool) Event {
	return s.Emit(Event{Kind: EdgeAdded, Target: TargetEdge, ElementID: id, From: from, To: to, Directed: directed})
}

// RemoveEdge emits EdgeRemoved.
func (s *Source) RemoveEdge(id string) Event {
	return s.Emit(Event{Kind: EdgeRemoved, Target: TargetEdge, ElementID: id})
}

// SetAttribute emits AttributeChanged on a graph, node or edge. The graph
// is addressed with an empty id.
func (s *Source) SetAttribute(target Target, id, key string, value any) Event {
	return s.Emit(Event{Kind: AttributeChanged, Target: target, ElementID: id, Key: key, Value: value})
}

// RemoveAttribute emits AttributeRemoved.
func (s *Source) RemoveAttribute(target Target, id, key string) Event {
	return s.Emit(Event{Kind: AttributeRemoved, Target: target, ElementID: id, Key: key})
}

// Clear emits GraphCleared.
func (s *Source) Clear() Event { return s.Emit(Event{Kind: GraphCleared}) }

// BeginStep emits StepBegins.
func (s *Source) BeginStep(step float64) Event {
	return s.Emit(Event{Kind: StepBegins, Step: step})
}
