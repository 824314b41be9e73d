package graphic

import (
	"sort"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/skeleton"
	"github.com/matzehuels/graphview/pkg/style"
	"github.com/matzehuels/graphview/pkg/stylegroup"
)

// Element is a node, edge or sprite of the graphic graph.
type Element interface {
	stylegroup.Element
	Label() string
	Hidden() bool
	// Style returns the element's cascade with its own active events.
	Style() style.Style
	// Skeleton returns the element's skeleton, creating it on first use.
	Skeleton() skeleton.Skeleton
	Attribute(key string) (any, bool)
}

// element is the state shared by every element kind.
type element struct {
	g       *Graph
	id      string
	label   string
	hidden  bool
	classes []string
	attrs   map[string]any
	// sprites attached to this element, by id.
	sprites map[string]*Sprite
}

func newElement(g *Graph, id string) element {
	return element{g: g, id: id, attrs: make(map[string]any)}
}

func (e *element) base() *element { return e }

// ID returns the element id.
func (e *element) ID() string { return e.id }

// Label returns the element label, or "".
func (e *element) Label() string { return e.label }

// Hidden reports whether ui.hide is set.
func (e *element) Hidden() bool { return e.hidden }

// Classes returns the ui.class list.
func (e *element) Classes() []string { return e.classes }

// Attribute returns a retained attribute.
func (e *element) Attribute(key string) (any, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// AttributeKeys returns the retained attribute keys in sorted order.
func (e *element) AttributeKeys() []string {
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *element) attach(s *Sprite) {
	if e.sprites == nil {
		e.sprites = make(map[string]*Sprite)
	}
	e.sprites[s.id] = s
}

func (e *element) detach(s *Sprite) { delete(e.sprites, s.id) }

// graphicElement is implemented by the three concrete kinds.
type graphicElement interface {
	Element
	base() *element
	// existingSkeleton returns nil when no skeleton was created yet.
	existingSkeleton() skeleton.Skeleton
}

// =============================================================================
// Node
// =============================================================================

// Node is a positioned graph vertex.
type Node struct {
	element
	center     geom.Point3
	positioned bool
	skel       *skeleton.Node
}

var (
	_ skeleton.NodeElement = (*Node)(nil)
	_ graphicElement       = (*Node)(nil)
)

// Kind implements stylegroup.Element.
func (n *Node) Kind() style.Kind { return style.KindNode }

// Style implements Element.
func (n *Node) Style() style.Style { return n.g.styleOf(n) }

// Center returns the node position in graph units.
func (n *Node) Center() geom.Point3 { return n.center }

// Positioned reports whether a position was ever written.
func (n *Node) Positioned() bool { return n.positioned }

// Degree returns the number of incident edges.
func (n *Node) Degree() int { return len(n.g.incident[n.id]) }

// NodeSkeleton returns the node skeleton, creating it on first use.
func (n *Node) NodeSkeleton() *skeleton.Node {
	if n.skel == nil {
		n.skel = n.g.factory.NewNode(n)
		n.g.prime(n.skel, &n.element)
	}
	return n.skel
}

// Skeleton implements Element.
func (n *Node) Skeleton() skeleton.Skeleton { return n.NodeSkeleton() }

func (n *Node) existingSkeleton() skeleton.Skeleton {
	if n.skel == nil {
		return nil
	}
	return n.skel
}

// =============================================================================
// Edge
// =============================================================================

// Edge connects two nodes. Several edges between the same pair form a
// parallel group and are drawn apart.
type Edge struct {
	element
	from, to   *Node
	directed   bool
	multiIndex int
	multiCount int
	skel       *skeleton.Edge
}

var (
	_ skeleton.EdgeElement = (*Edge)(nil)
	_ graphicElement       = (*Edge)(nil)
)

// Kind implements stylegroup.Element.
func (e *Edge) Kind() style.Kind { return style.KindEdge }

// Style implements Element.
func (e *Edge) Style() style.Style { return e.g.styleOf(e) }

// Source implements skeleton.EdgeElement.
func (e *Edge) Source() skeleton.NodeElement { return e.from }

// Target implements skeleton.EdgeElement.
func (e *Edge) Target() skeleton.NodeElement { return e.to }

// From returns the source node.
func (e *Edge) From() *Node { return e.from }

// To returns the target node.
func (e *Edge) To() *Node { return e.to }

// Opposite returns the endpoint that is not n.
func (e *Edge) Opposite(n *Node) *Node {
	if e.from == n {
		return e.to
	}
	return e.from
}

// Directed reports whether the edge has a direction.
func (e *Edge) Directed() bool { return e.directed }

// IsLoop reports whether both endpoints are the same node.
func (e *Edge) IsLoop() bool { return e.from == e.to }

// Multi implements skeleton.EdgeElement.
func (e *Edge) Multi() (index, count int) { return e.multiIndex, e.multiCount }

// EdgeSkeleton returns the edge skeleton, creating it on first use.
func (e *Edge) EdgeSkeleton() *skeleton.Edge {
	if e.skel == nil {
		e.skel = e.g.factory.NewEdge(e)
		e.g.prime(e.skel, &e.element)
		if v, ok := e.attrs["ui.points"]; ok {
			e.skel.PointsChanged(v)
		}
	}
	return e.skel
}

// Skeleton implements Element.
func (e *Edge) Skeleton() skeleton.Skeleton { return e.EdgeSkeleton() }

func (e *Edge) existingSkeleton() skeleton.Skeleton {
	if e.skel == nil {
		return nil
	}
	return e.skel
}

// =============================================================================
// Sprite
// =============================================================================

// Sprite is a free-floating or attached decoration.
type Sprite struct {
	element
	offset     style.Values
	attachNode *Node
	attachEdge *Edge
	skel       *skeleton.Sprite
}

var (
	_ skeleton.SpriteElement = (*Sprite)(nil)
	_ graphicElement         = (*Sprite)(nil)
)

// Kind implements stylegroup.Element.
func (s *Sprite) Kind() style.Kind { return style.KindSprite }

// Style implements Element.
func (s *Sprite) Style() style.Style { return s.g.styleOf(s) }

// Offset returns the unit-tagged position components.
func (s *Sprite) Offset() style.Values { return s.offset }

// AttachedNode implements skeleton.SpriteElement.
func (s *Sprite) AttachedNode() skeleton.NodeElement {
	if s.attachNode == nil {
		return nil
	}
	return s.attachNode
}

// AttachedEdge implements skeleton.SpriteElement.
func (s *Sprite) AttachedEdge() skeleton.EdgeElement {
	if s.attachEdge == nil {
		return nil
	}
	return s.attachEdge
}

// Attachment returns the node or edge the sprite is attached to, or nil.
func (s *Sprite) Attachment() Element {
	switch {
	case s.attachNode != nil:
		return s.attachNode
	case s.attachEdge != nil:
		return s.attachEdge
	}
	return nil
}

// SpriteSkeleton returns the sprite skeleton, creating it on first use.
func (s *Sprite) SpriteSkeleton() *skeleton.Sprite {
	if s.skel == nil {
		s.skel = s.g.factory.NewSprite(s)
		s.g.prime(s.skel, &s.element)
	}
	return s.skel
}

// Skeleton implements Element.
func (s *Sprite) Skeleton() skeleton.Skeleton { return s.SpriteSkeleton() }

func (s *Sprite) existingSkeleton() skeleton.Skeleton {
	if s.skel == nil {
		return nil
	}
	return s.skel
}
