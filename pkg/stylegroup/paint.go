package stylegroup

// Painter draws the members of a group. Group.Paint calls it in an order that
// changes the graphics style state at most once for all bulk members.
type Painter interface {
	// Visible reports whether e should be drawn this frame.
	Visible(e Element) bool

	// PushStyle applies the shared style of g.
	PushStyle(g *Group) error

	// PushDynamicStyle applies the style of one element, reading its
	// per-element attributes and the events activated on g.
	PushDynamicStyle(g *Group, e Element) error

	// RenderElement draws e with the last pushed style.
	RenderElement(g *Group, e Element) error

	// ElementInvisible is called for members skipped by Visible.
	ElementInvisible(g *Group, e Element)
}

// Paint draws the group. Bulk members share one style push. Dynamic members
// without events get their own push each. Members with events are drawn last
// with their events activated. Members with events are skipped by the first
// two passes so each element is drawn once.
//
// Painting continues after a failed element; the first error is returned.
func (g *Group) Paint(p Painter) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	pushed := false
	for _, m := range g.bulk {
		if m.events != nil {
			continue
		}
		if !p.Visible(m.elem) {
			p.ElementInvisible(g, m.elem)
			continue
		}
		if !pushed {
			keep(p.PushStyle(g))
			pushed = true
		}
		keep(p.RenderElement(g, m.elem))
	}

	for _, m := range g.dynamic {
		if m.events != nil {
			continue
		}
		if !p.Visible(m.elem) {
			p.ElementInvisible(g, m.elem)
			continue
		}
		keep(p.PushDynamicStyle(g, m.elem))
		keep(p.RenderElement(g, m.elem))
	}

	for _, rec := range g.event {
		if !p.Visible(rec.elem) {
			p.ElementInvisible(g, rec.elem)
			continue
		}
		g.ActivateEvents(rec.events)
		keep(p.PushDynamicStyle(g, rec.elem))
		keep(p.RenderElement(g, rec.elem))
		g.DeactivateEvents()
	}
	return first
}
