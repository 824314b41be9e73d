// Package interact turns pointer input into graph edits.
//
// A [MouseManager] receives press, drag and release positions in pixels and
// resolves them through the camera's inverse transform. Pressing on a node
// or sprite marks it clicked and dragging moves it. Pressing on empty space
// starts a selection region; on release every node and sprite inside it is
// marked selected.
//
// All edits go through the graphic graph, so they reach its sinks like any
// other write. Calls must happen inside the viewer's critical section.
package interact

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/stream"
)

const (
	attrClicked  = "ui.clicked"
	attrSelected = "ui.selected"
)

// Region is a selection rectangle in pixels.
type Region struct {
	X1, Y1, X2, Y2 float64
}

// Box returns the region normalized so Lo is the top-left corner.
func (r Region) Box() geom.Box {
	return geom.Box{
		Lo: geom.Pt(math.Min(r.X1, r.X2), math.Min(r.Y1, r.Y2), 0),
		Hi: geom.Pt(math.Max(r.X1, r.X2), math.Max(r.Y1, r.Y2), 0),
	}
}

// MouseManager tracks one pointer.
type MouseManager struct {
	log *log.Logger
	g   *graphic.Graph
	cam *camera.Camera

	current   graphic.Element
	selecting bool
	region    Region
	selected  []graphic.Element
}

// New creates a MouseManager for g seen through cam.
func New(g *graphic.Graph, cam *camera.Camera, logger *log.Logger) *MouseManager {
	if logger == nil {
		logger = log.Default()
	}
	return &MouseManager{log: logger, g: g, cam: cam}
}

// Press starts a click on the element under (x, y) or a selection region.
// Without extend the previous selection is cleared first.
func (m *MouseManager) Press(x, y float64, extend bool) {
	if !extend {
		m.clearSelection()
	}
	if e := m.cam.FindNodeOrSpriteAt(m.g, x, y); e != nil {
		m.current = e
		m.set(e, attrClicked, true)
		return
	}
	m.selecting = true
	m.region = Region{X1: x, Y1: y, X2: x, Y2: y}
}

// Drag moves the clicked element or grows the selection region.
func (m *MouseManager) Drag(x, y float64) {
	switch {
	case m.current != nil:
		m.move(m.current, x, y)
	case m.selecting:
		m.region.X2, m.region.Y2 = x, y
	}
}

// Release ends the click or marks every node and sprite inside the region
// selected.
func (m *MouseManager) Release(x, y float64) {
	if m.current != nil {
		m.remove(m.current, attrClicked)
		m.current = nil
		return
	}
	if !m.selecting {
		return
	}
	m.region.X2, m.region.Y2 = x, y
	m.selecting = false
	for _, e := range m.cam.AllNodesOrSpritesIn(m.g, m.region.X1, m.region.Y1, m.region.X2, m.region.Y2) {
		if m.isSelected(e) {
			continue
		}
		m.set(e, attrSelected, true)
		m.selected = append(m.selected, e)
	}
}

// Selecting returns the selection region while one is being dragged.
func (m *MouseManager) Selecting() (Region, bool) { return m.region, m.selecting }

// Clicked returns the element being clicked, or nil.
func (m *MouseManager) Clicked() graphic.Element { return m.current }

// Selected returns the ids of the selected elements in selection order.
// Elements removed from the graph since are skipped.
func (m *MouseManager) Selected() []string {
	var ids []string
	for _, e := range m.selected {
		if m.alive(e) {
			ids = append(ids, e.ID())
		}
	}
	return ids
}

func (m *MouseManager) clearSelection() {
	for _, e := range m.selected {
		if m.alive(e) {
			m.remove(e, attrSelected)
		}
	}
	m.selected = nil
}

func (m *MouseManager) isSelected(e graphic.Element) bool {
	for _, s := range m.selected {
		if s == e {
			return true
		}
	}
	return false
}

func (m *MouseManager) alive(e graphic.Element) bool {
	switch x := e.(type) {
	case *graphic.Node:
		return m.g.Node(x.ID()) == x
	case *graphic.Sprite:
		return m.g.Sprite(x.ID()) == x
	}
	return false
}

// move places a node, or a free sprite, under the pointer. Attached
// sprites stay where their attachment puts them.
func (m *MouseManager) move(e graphic.Element, x, y float64) {
	if !m.alive(e) {
		m.current = nil
		return
	}
	p := m.cam.TransformPXToGU(x, y)
	var err error
	switch el := e.(type) {
	case *graphic.Node:
		err = m.g.MoveNode(el.ID(), p.X, p.Y, el.Center().Z)
	case *graphic.Sprite:
		if el.Attachment() != nil {
			return
		}
		err = m.g.SetAttribute(stream.TargetGraph, "", "ui.sprite."+el.ID(), []any{p.X, p.Y, 0.0})
	}
	if err != nil {
		m.log.Warn("cannot move element", "id", e.ID(), "err", err)
	}
}

func (m *MouseManager) set(e graphic.Element, key string, v any) {
	target, id, k := address(e, key)
	if err := m.g.SetAttribute(target, id, k, v); err != nil {
		m.log.Warn("cannot mark element", "id", e.ID(), "attr", key, "err", err)
	}
}

func (m *MouseManager) remove(e graphic.Element, key string) {
	target, id, k := address(e, key)
	if err := m.g.RemoveAttribute(target, id, k); err != nil {
		m.log.Warn("cannot unmark element", "id", e.ID(), "attr", key, "err", err)
	}
}

// address maps an element attribute to the event addressing it. Sprite
// attributes live on the graph under ui.sprite.<id>.
func address(e graphic.Element, key string) (stream.Target, string, string) {
	if _, ok := e.(*graphic.Sprite); ok {
		return stream.TargetGraph, "", "ui.sprite." + e.ID() + "." + key
	}
	return stream.TargetNode, e.ID(), key
}
