package stream

import (
	"sync"
	"testing"

	"github.com/matzehuels/graphview/pkg/errors"
)

type collector struct {
	events []Event
}

func (c *collector) Handle(e Event) { c.events = append(c.events, e) }

func TestSinkTime(t *testing.T) {
	st := NewSinkTime()
	tests := []struct {
		source string
		time   uint64
		want   bool
	}{
		{"a", 1, true},
		{"a", 2, true},
		{"a", 2, false},
		{"a", 1, false},
		{"b", 1, true},
		{"a", 5, true},
		{"a", 3, false},
	}
	for _, tt := range tests {
		if got := st.IsNew(tt.source, tt.time); got != tt.want {
			t.Errorf("IsNew(%s, %d) = %v, want %v", tt.source, tt.time, got, tt.want)
		}
	}
}

func TestSourceStampsMonotonically(t *testing.T) {
	src := NewSource("")
	if src.ID() == "" {
		t.Fatal("expected generated source id")
	}
	var c collector
	remove := src.AddSink(&c)

	src.AddNode("a")
	src.AddNode("b")
	src.AddEdge("ab", "a", "b", true)

	if len(c.events) != 3 {
		t.Fatalf("got %d events, want 3", len(c.events))
	}
	for i, e := range c.events {
		if e.SourceID != src.ID() {
			t.Errorf("event %d source = %q", i, e.SourceID)
		}
		if e.TimeID != uint64(i+1) {
			t.Errorf("event %d time = %d, want %d", i, e.TimeID, i+1)
		}
	}

	remove()
	src.Clear()
	if len(c.events) != 3 {
		t.Errorf("removed sink still receives events")
	}
}

func TestBufferPreservesOrderAcrossGoroutines(t *testing.T) {
	buf := NewBuffer()
	src := NewSource("producer")
	src.AddSink(buf)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			src.AddNode(string(rune('a' + i%26)))
		}
	}()
	wg.Wait()

	var c collector
	if n := buf.Flush(&c); n != 100 {
		t.Fatalf("Flush = %d, want 100", n)
	}
	for i := 1; i < len(c.events); i++ {
		if c.events[i].TimeID <= c.events[i-1].TimeID {
			t.Fatalf("events out of order at %d", i)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("Len after flush = %d", buf.Len())
	}

	buf.Close()
	buf.Handle(Event{Kind: GraphCleared})
	if buf.Len() != 0 {
		t.Error("closed buffer accepted an event")
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := Decode([]byte(`{
		"attrs": {"ui.title": "demo"},
		"nodes": [
			{"id": "a", "label": "A", "x": 0, "y": 1},
			{"id": "b"}
		],
		"edges": [
			{"from": "a", "to": "b", "directed": true},
			{"from": "a", "to": "b"}
		]
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := doc.Edges[0].ID; got != "a->b" {
		t.Errorf("edge 0 id = %q", got)
	}
	if got := doc.Edges[1].ID; got != "a->b#2" {
		t.Errorf("edge 1 id = %q", got)
	}
	if got := doc.Unpositioned(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Unpositioned = %v", got)
	}

	var c collector
	src := NewSource("doc")
	src.AddSink(&c)
	doc.Replay(src)

	kinds := make([]Kind, len(c.events))
	for i, e := range c.events {
		kinds[i] = e.Kind
	}
	want := []Kind{
		AttributeChanged,
		NodeAdded, AttributeChanged, AttributeChanged,
		NodeAdded,
		EdgeAdded, EdgeAdded,
	}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, kinds[i], want[i])
		}
	}
	if xyz, ok := c.events[3].Value.([]any); !ok || len(xyz) != 3 || xyz[1] != 1.0 {
		t.Errorf("xyz value = %#v", c.events[3].Value)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", `{"nodes": [`},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}]}`},
		{"unknown endpoint", `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "z"}]}`},
		{"empty id", `{"nodes": [{"id": ""}]}`},
		{"duplicate edge", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "from": "a", "to": "a"}, {"id": "e", "from": "a", "to": "a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput && code != errors.ErrCodeInvalidElementID {
				t.Errorf("code = %v", code)
			}
		})
	}
}
