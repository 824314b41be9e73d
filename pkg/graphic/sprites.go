package graphic

import (
	"math"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/style"
)

// spriteFor returns the sprite with the given id, creating it at the origin
// when it does not exist yet.
func (g *Graph) spriteFor(id string) (*Sprite, error) {
	if s, ok := g.sprites[id]; ok {
		return s, nil
	}
	if err := errors.ValidateSpriteID(id); err != nil {
		return nil, err
	}
	s := &Sprite{element: newElement(g, id), offset: style.Vals(style.GU, 0, 0, 0)}
	g.sprites[id] = s
	g.styles.Add(s)
	g.graphChanged = true
	g.boundsChanged = true
	return s, nil
}

// placeSprite handles ui.sprite.<id>. A malformed position leaves the
// sprite where it was.
func (g *Graph) placeSprite(id string, value any) error {
	s, err := g.spriteFor(id)
	if err != nil {
		return err
	}
	pos, err := parseSpritePosition(value)
	if err != nil {
		return err
	}
	s.offset = pos
	g.spriteMoved(s)
	return nil
}

func (g *Graph) attachSprite(s *Sprite, value any) error {
	id := labelString(value)
	var target *element
	if n, ok := g.nodes[id]; ok {
		g.detachSprite(s)
		s.attachNode = n
		target = &n.element
	} else if e, ok := g.edges[id]; ok {
		g.detachSprite(s)
		s.attachEdge = e
		target = &e.element
	} else {
		return errors.New(errors.ErrCodeElementNotFound, "sprite %q: attachment %q", s.id, id)
	}
	target.attach(s)
	s.attrs["ui.attach"] = value
	g.spriteMoved(s)
	g.boundsChanged = true
	return nil
}

func (g *Graph) detachSprite(s *Sprite) {
	switch {
	case s.attachNode != nil:
		s.attachNode.detach(s)
	case s.attachEdge != nil:
		s.attachEdge.detach(s)
	default:
		return
	}
	s.attachNode, s.attachEdge = nil, nil
	delete(s.attrs, "ui.attach")
	g.spriteMoved(s)
}

func (g *Graph) removeSprite(id string) error {
	s, ok := g.sprites[id]
	if !ok {
		return errors.New(errors.ErrCodeElementNotFound, "sprite %q", id)
	}
	g.detachSprite(s)
	g.styles.Remove(s)
	delete(g.sprites, id)
	g.graphChanged = true
	g.boundsChanged = true
	return nil
}

// =============================================================================
// Bounds
// =============================================================================

const boundsEpsilon = 1e-6

// ComputeBounds returns the graph-unit box covering positioned visible nodes
// and free sprites placed in graph units. It is recomputed only after
// something that affects it changed. An extent below epsilon along x or y
// is widened by one unit on each side so the view never degenerates.
func (g *Graph) ComputeBounds() (lo, hi geom.Point3) {
	if !g.boundsChanged {
		return g.lo, g.hi
	}
	box := geom.EmptyBox()
	for _, n := range g.nodes {
		if n.positioned && !n.hidden {
			box.Expand(n.center)
		}
	}
	for _, s := range g.sprites {
		if s.Attachment() == nil && s.offset.Units == style.GU && !s.hidden {
			box.Expand(geom.Pt(s.offset.At(0), s.offset.At(1), s.offset.At(2)))
		}
	}
	if box.IsEmpty() {
		box = geom.Box{}
	}
	if math.Abs(box.Hi.X-box.Lo.X) < boundsEpsilon {
		box.Lo.X--
		box.Hi.X++
	}
	if math.Abs(box.Hi.Y-box.Lo.Y) < boundsEpsilon {
		box.Lo.Y--
		box.Hi.Y++
	}
	g.lo, g.hi = box.Lo, box.Hi
	g.boundsChanged = false
	return g.lo, g.hi
}

// BoundsChanged reports whether the next ComputeBounds will recompute.
func (g *Graph) BoundsChanged() bool { return g.boundsChanged }
