package camera

import (
	"math"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/style"
)

// checkVisibility fills the per-frame set of nodes outside the viewport.
// Auto-fit frames the whole graph, so nothing is culled there.
func (c *Camera) checkVisibility(g *graphic.Graph) {
	clear(c.invisible)
	if c.autoFit {
		return
	}
	for _, n := range g.Nodes() {
		if !n.Positioned() || !c.boxInView(n.Skeleton().Bounds(c.metrics)) {
			c.invisible[n.ID()] = struct{}{}
		}
	}
}

func (c *Camera) boxInView(b geom.Box) bool {
	px := c.metrics.Transform.ApplyBox(b)
	view := geom.Box{Hi: geom.Pt(c.metrics.ViewportW, c.metrics.ViewportH, 0)}
	return px.Intersects(view)
}

// IsVisible reports whether e should be drawn this frame. Hidden elements,
// unpositioned nodes and elements whose style hides them at the current
// zoom are never visible. In user mode an edge is culled only when both of
// its endpoints are, even though such an edge may still cross the viewport.
func (c *Camera) IsVisible(e graphic.Element) bool {
	if e.Hidden() || !e.Style().VisibleAtZoom(c.zoom) {
		return false
	}
	switch x := e.(type) {
	case *graphic.Node:
		if !x.Positioned() {
			return false
		}
		return c.autoFit || !c.nodeInvisible(x)
	case *graphic.Edge:
		if !x.From().Positioned() || !x.To().Positioned() {
			return false
		}
		return c.autoFit || !(c.nodeInvisible(x.From()) && c.nodeInvisible(x.To()))
	case *graphic.Sprite:
		if a := x.Attachment(); a != nil && !c.IsVisible(a) {
			return false
		}
		return c.autoFit || c.boxInView(x.Skeleton().Bounds(c.metrics))
	}
	return true
}

func (c *Camera) nodeInvisible(n *graphic.Node) bool {
	_, ok := c.invisible[n.ID()]
	return ok
}

// =============================================================================
// Hit testing
// =============================================================================

// FindNodeOrSpriteAt returns the topmost visible node or sprite under the
// pixel (x, y), or nil.
func (c *Camera) FindNodeOrSpriteAt(g *graphic.Graph, x, y float64) graphic.Element {
	p := c.TransformPXToGU(x, y)
	layers := g.Styles().ZIndex()
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		for j := len(layer) - 1; j >= 0; j-- {
			grp := layer[j]
			if grp.Kind() != style.KindNode && grp.Kind() != style.KindSprite {
				continue
			}
			members := grp.Elements()
			for k := len(members) - 1; k >= 0; k-- {
				e, ok := members[k].(graphic.Element)
				if !ok || !c.IsVisible(e) {
					continue
				}
				if e.Skeleton().Contains(c.metrics, p.X, p.Y) {
					return e
				}
			}
		}
	}
	return nil
}

// AllNodesOrSpritesIn returns the visible nodes and sprites whose position
// lies in the pixel rectangle spanned by (x1, y1) and (x2, y2): nodes
// first, each kind ordered by id.
func (c *Camera) AllNodesOrSpritesIn(g *graphic.Graph, x1, y1, x2, y2 float64) []graphic.Element {
	rect := geom.Box{
		Lo: geom.Pt(math.Min(x1, x2), math.Min(y1, y2), 0),
		Hi: geom.Pt(math.Max(x1, x2), math.Max(y1, y2), 0),
	}
	var out []graphic.Element
	pick := func(e graphic.Element) {
		if !c.IsVisible(e) {
			return
		}
		p := c.TransformGUToPX(e.Skeleton().Position(c.metrics))
		if rect.Contains(p.X, p.Y) {
			out = append(out, e)
		}
	}
	for _, n := range g.Nodes() {
		pick(n)
	}
	for _, s := range g.Sprites() {
		pick(s)
	}
	return out
}
