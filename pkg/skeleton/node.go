package skeleton

import (
	"math"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/metrics"
)

// Node is the skeleton of a node. Its position is the node center, read
// directly from the element.
type Node struct {
	base
	node NodeElement
}

var _ Skeleton = (*Node)(nil)

// PositionChanged is a no-op: node geometry is derived from the center on
// every read.
func (n *Node) PositionChanged() {}

// Position returns the node center.
func (n *Node) Position(*metrics.GraphMetrics) geom.Point3 { return n.node.Center() }

// Bounds returns the node box in graph units.
func (n *Node) Bounds(m *metrics.GraphMetrics) geom.Box {
	s := n.SizeGU(m)
	return geom.BoxAround(n.node.Center(), s.X, s.Y)
}

// Contains reports whether the graph-unit point (x, y) hits the node.
func (n *Node) Contains(m *metrics.GraphMetrics, x, y float64) bool {
	return n.Bounds(m).Contains(x, y)
}

// Radius returns half the larger side, in graph units.
func (n *Node) Radius(m *metrics.GraphMetrics) float64 {
	s := n.SizeGU(m)
	return math.Max(s.X, s.Y) / 2
}
