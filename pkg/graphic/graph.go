package graphic

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/skeleton"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/style"
	"github.com/matzehuels/graphview/pkg/stylegroup"
)

// Options configures a Graph. The zero value is usable.
type Options struct {
	// Logger receives warnings about malformed events. Nil uses log.Default.
	Logger *log.Logger
	// StyleSheet is the initial sheet, restored when the graph is cleared.
	StyleSheet *style.StyleSheet
	// Factory creates skeletons. Nil uses skeleton.DefaultFactory.
	Factory skeleton.Factory
	// SourceID identifies events the graph emits. Empty generates a UUID.
	SourceID string
	// BaseDir resolves relative url(...) stylesheet paths.
	BaseDir string
}

// Graph is the graphic graph: it consumes an event stream, keeps renderable
// nodes, edges and sprites in their style groups, and emits its own writes.
//
// A Graph is not safe for concurrent use. Producers on other goroutines feed
// it through a [stream.Buffer].
type Graph struct {
	log     *log.Logger
	factory skeleton.Factory
	styles  *stylegroup.Set
	sheet   *style.StyleSheet
	baseDir string
	keys    *classifier

	source *stream.Source
	seen   *stream.SinkTime

	nodes    map[string]*Node
	edges    map[string]*Edge
	sprites  map[string]*Sprite
	incident map[string]map[string]*Edge
	multi    map[pairKey][]*Edge

	attrs   map[string]any
	classes []string
	step    float64

	graphChanged  bool
	boundsChanged bool
	lo, hi        geom.Point3
}

var _ stream.Sink = (*Graph)(nil)

// pairKey is an unordered pair of node ids.
type pairKey struct{ a, b string }

func pairOf(from, to string) pairKey {
	if to < from {
		from, to = to, from
	}
	return pairKey{a: from, b: to}
}

// New creates an empty graph.
func New(opts Options) *Graph {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	factory := opts.Factory
	if factory == nil {
		factory = skeleton.DefaultFactory{Logger: logger}
	}
	g := &Graph{
		log:     logger,
		factory: factory,
		styles:  stylegroup.NewSet(opts.StyleSheet),
		baseDir: opts.BaseDir,
		keys:    newClassifier(),
		source:  stream.NewSource(opts.SourceID),
		seen:    stream.NewSinkTime(),
	}
	g.sheet = g.styles.StyleSheet()
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.nodes = make(map[string]*Node)
	g.edges = make(map[string]*Edge)
	g.sprites = make(map[string]*Sprite)
	g.incident = make(map[string]map[string]*Edge)
	g.multi = make(map[pairKey][]*Edge)
	g.attrs = make(map[string]any)
	g.classes = nil
	g.step = 0
	g.graphChanged = true
	g.boundsChanged = true
}

// =============================================================================
// Accessors
// =============================================================================

// Source returns the source the graph emits its own writes through. Register
// sinks on it to mirror interaction back upstream.
func (g *Graph) Source() *stream.Source { return g.source }

// Styles returns the style-group set.
func (g *Graph) Styles() *stylegroup.Set { return g.styles }

// StyleSheet returns the sheet in use.
func (g *Graph) StyleSheet() *style.StyleSheet { return g.styles.StyleSheet() }

// GraphStyle returns the cascade for the graph itself.
func (g *Graph) GraphStyle() style.Style { return g.styles.GraphStyle(g.classes) }

// Logger returns the graph's logger.
func (g *Graph) Logger() *log.Logger { return g.log }

// Step returns the last step announced by the stream.
func (g *Graph) Step() float64 { return g.step }

// Attribute returns a retained graph attribute.
func (g *Graph) Attribute(key string) (any, bool) {
	v, ok := g.attrs[key]
	return v, ok
}

// Node returns a node by id, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Edge returns an edge by id, or nil.
func (g *Graph) Edge(id string) *Edge { return g.edges[id] }

// Sprite returns a sprite by id, or nil.
func (g *Graph) Sprite(id string) *Sprite { return g.sprites[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SpriteCount returns the number of sprites.
func (g *Graph) SpriteCount() int { return len(g.sprites) }

// Nodes returns all nodes ordered by id.
func (g *Graph) Nodes() []*Node { return sortedValues(g.nodes) }

// Edges returns all edges ordered by id.
func (g *Graph) Edges() []*Edge { return sortedValues(g.edges) }

// Sprites returns all sprites ordered by id.
func (g *Graph) Sprites() []*Sprite { return sortedValues(g.sprites) }

// EdgesOf returns the edges incident to a node, ordered by id.
func (g *Graph) EdgesOf(nodeID string) []*Edge { return sortedValues(g.incident[nodeID]) }

// EdgesBetween returns the parallel group of edges joining a and b in either
// direction, in insertion order.
func (g *Graph) EdgesBetween(a, b string) []*Edge {
	return append([]*Edge(nil), g.multi[pairOf(a, b)]...)
}

// GraphChanged reports whether anything changed since ResetGraphChanged.
func (g *Graph) GraphChanged() bool { return g.graphChanged }

// ResetGraphChanged clears the change flag. Only the renderer calls it,
// after a frame has been drawn.
func (g *Graph) ResetGraphChanged() { g.graphChanged = false }

func sortedValues[T interface{ ID() string }](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (g *Graph) styleOf(e stylegroup.Element) style.Style {
	if grp := g.styles.GroupOf(e); grp != nil {
		return grp.StyleFor(e)
	}
	return style.Style{Rules: g.styles.StyleSheet().Matching(e.Kind(), e.ID(), e.Classes())}
}

// prime feeds retained dynamic attributes to a freshly created skeleton.
func (g *Graph) prime(s skeleton.Skeleton, e *element) {
	if v, ok := e.attrs["ui.color"]; ok {
		s.ColorChanged(v)
	}
	if v, ok := e.attrs["ui.size"]; ok {
		s.SizeChanged(v)
	}
}

// =============================================================================
// Sink
// =============================================================================

// Handle implements stream.Sink. Events already seen from their source are
// ignored; malformed events are logged and dropped.
func (g *Graph) Handle(e stream.Event) {
	if !g.seen.IsNew(e.SourceID, e.TimeID) {
		return
	}
	start := time.Now()
	if err := g.apply(e); err != nil {
		g.log.Warn("dropping event", "event", e.String(), "code", errors.GetCode(err), "err", err)
		observability.Events().OnEventDropped(context.Background(), e.Kind.String(), string(errors.GetCode(err)))
		return
	}
	observability.Events().OnEvent(context.Background(), e.Kind.String(), time.Since(start))
}

func (g *Graph) apply(e stream.Event) error {
	switch e.Kind {
	case stream.NodeAdded:
		return g.addNode(e.ElementID)
	case stream.NodeRemoved:
		return g.removeNode(e.ElementID)
	case stream.EdgeAdded:
		return g.addEdge(e.ElementID, e.From, e.To, e.Directed)
	case stream.EdgeRemoved:
		return g.removeEdge(e.ElementID)
	case stream.AttributeAdded, stream.AttributeChanged:
		return g.setAttribute(e.Target, e.ElementID, e.Key, e.Value)
	case stream.AttributeRemoved:
		return g.removeAttribute(e.Target, e.ElementID, e.Key)
	case stream.GraphCleared:
		g.clear()
	case stream.StepBegins:
		g.step = e.Step
	default:
		return errors.New(errors.ErrCodeUnsupported, "event kind %v", e.Kind)
	}
	return nil
}

// write applies a change made through the graph and emits it to the
// graph's sinks. The change is recorded as seen so it is not applied again
// if a sink routes it back.
func (g *Graph) write(e stream.Event) error {
	e = g.source.Stamp(e)
	g.seen.IsNew(e.SourceID, e.TimeID)
	if err := g.apply(e); err != nil {
		return err
	}
	g.source.Send(e)
	return nil
}

// =============================================================================
// Writes
// =============================================================================

// AddNode adds a node and emits NodeAdded.
func (g *Graph) AddNode(id string) error {
	return g.write(stream.Event{Kind: stream.NodeAdded, Target: stream.TargetNode, ElementID: id})
}

// RemoveNode removes a node and emits NodeRemoved.
func (g *Graph) RemoveNode(id string) error {
	return g.write(stream.Event{Kind: stream.NodeRemoved, Target: stream.TargetNode, ElementID: id})
}

// AddEdge adds an edge and emits EdgeAdded.
func (g *Graph) AddEdge(id, from, to string, directed bool) error {
	return g.write(stream.Event{Kind: stream.EdgeAdded, Target: stream.TargetEdge, ElementID: id, From: from, To: to, Directed: directed})
}

// MoveNode sets a node position and emits the xyz attribute.
func (g *Graph) MoveNode(id string, x, y, z float64) error {
	return g.SetAttribute(stream.TargetNode, id, "xyz", []any{x, y, z})
}

// SetAttribute changes an attribute and emits AttributeChanged. The graph
// is addressed with an empty id.
func (g *Graph) SetAttribute(target stream.Target, id, key string, value any) error {
	return g.write(stream.Event{Kind: stream.AttributeChanged, Target: target, ElementID: id, Key: key, Value: value})
}

// RemoveAttribute removes an attribute and emits AttributeRemoved.
func (g *Graph) RemoveAttribute(target stream.Target, id, key string) error {
	return g.write(stream.Event{Kind: stream.AttributeRemoved, Target: target, ElementID: id, Key: key})
}

// =============================================================================
// Structure
// =============================================================================

func (g *Graph) addNode(id string) error {
	if err := errors.ValidateElementID(id); err != nil {
		return err
	}
	if _, ok := g.nodes[id]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "node %q already exists", id)
	}
	n := &Node{element: newElement(g, id)}
	g.nodes[id] = n
	g.styles.Add(n)
	g.graphChanged = true
	return nil
}

func (g *Graph) removeNode(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeElementNotFound, "node %q", id)
	}
	for _, e := range g.EdgesOf(id) {
		g.dropEdge(e)
	}
	g.detachAll(&n.element)
	g.styles.Remove(n)
	delete(g.nodes, id)
	delete(g.incident, id)
	g.graphChanged = true
	if n.positioned && !n.hidden {
		g.boundsChanged = true
	}
	return nil
}

func (g *Graph) addEdge(id, from, to string, directed bool) error {
	if err := errors.ValidateElementID(id); err != nil {
		return err
	}
	if _, ok := g.edges[id]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "edge %q already exists", id)
	}
	src, ok := g.nodes[from]
	if !ok {
		return errors.New(errors.ErrCodeElementNotFound, "edge %q: source node %q", id, from)
	}
	dst, ok := g.nodes[to]
	if !ok {
		return errors.New(errors.ErrCodeElementNotFound, "edge %q: target node %q", id, to)
	}

	e := &Edge{element: newElement(g, id), from: src, to: dst, directed: directed}
	g.edges[id] = e
	g.link(from, e)
	g.link(to, e)
	k := pairOf(from, to)
	g.multi[k] = append(g.multi[k], e)
	g.reindexMulti(k)
	g.styles.Add(e)
	g.graphChanged = true
	return nil
}

func (g *Graph) removeEdge(id string) error {
	e, ok := g.edges[id]
	if !ok {
		return errors.New(errors.ErrCodeElementNotFound, "edge %q", id)
	}
	g.dropEdge(e)
	return nil
}

func (g *Graph) dropEdge(e *Edge) {
	g.detachAll(&e.element)
	g.styles.Remove(e)
	delete(g.edges, e.id)
	delete(g.incident[e.from.id], e.id)
	delete(g.incident[e.to.id], e.id)

	k := pairOf(e.from.id, e.to.id)
	group := g.multi[k]
	for i, other := range group {
		if other == e {
			group = append(group[:i:i], group[i+1:]...)
			break
		}
	}
	if len(group) == 0 {
		delete(g.multi, k)
	} else {
		g.multi[k] = group
		g.reindexMulti(k)
	}
	g.graphChanged = true
}

func (g *Graph) link(nodeID string, e *Edge) {
	m := g.incident[nodeID]
	if m == nil {
		m = make(map[string]*Edge)
		g.incident[nodeID] = m
	}
	m[e.id] = e
}

// reindexMulti renumbers a parallel group and invalidates its geometry.
func (g *Graph) reindexMulti(k pairKey) {
	group := g.multi[k]
	for i, e := range group {
		e.multiIndex, e.multiCount = i, len(group)
		g.edgeMoved(e)
	}
}

// detachAll frees the sprites attached to e.
func (g *Graph) detachAll(e *element) {
	for _, s := range e.sprites {
		s.attachNode, s.attachEdge = nil, nil
		delete(s.attrs, "ui.attach")
		g.spriteMoved(s)
	}
	e.sprites = nil
}

func (g *Graph) clear() {
	for _, s := range g.sprites {
		g.styles.Remove(s)
	}
	for _, e := range g.edges {
		g.styles.Remove(e)
	}
	for _, n := range g.nodes {
		g.styles.Remove(n)
	}
	g.reset()
	if g.styles.StyleSheet() != g.sheet {
		g.styles.SetStyleSheet(g.sheet)
	}
}

// =============================================================================
// Movement
// =============================================================================

func (g *Graph) nodeMoved(n *Node) {
	if s := n.existingSkeleton(); s != nil {
		s.PositionChanged()
	}
	for _, e := range g.incident[n.id] {
		g.edgeMoved(e)
	}
	for _, s := range n.sprites {
		g.spriteMoved(s)
	}
	g.graphChanged = true
	if !n.hidden {
		g.boundsChanged = true
	}
}

func (g *Graph) edgeMoved(e *Edge) {
	if e.skel != nil {
		e.skel.PositionChanged()
	}
	for _, s := range e.sprites {
		g.spriteMoved(s)
	}
}

func (g *Graph) spriteMoved(s *Sprite) {
	if s.skel != nil {
		s.skel.PositionChanged()
	}
	g.graphChanged = true
	if s.attachNode == nil && s.attachEdge == nil {
		g.boundsChanged = true
	}
}
