package stylegroup

import (
	"cmp"
	"slices"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/style"
)

// Set assigns elements to groups and keeps the groups ordered for drawing.
type Set struct {
	sheet  *style.StyleSheet
	groups map[string]*Group
	owner  map[elementKey]*Group

	layers      [][]*Group
	shadows     []*Group
	layersDirty bool
}

type elementKey struct {
	kind style.Kind
	id   string
}

func keyOf(e Element) elementKey { return elementKey{kind: e.Kind(), id: e.ID()} }

// NewSet creates an empty set evaluating rules from sheet. A nil sheet holds
// only the built-in defaults.
func NewSet(sheet *style.StyleSheet) *Set {
	if sheet == nil {
		sheet = style.NewStyleSheet()
	}
	return &Set{
		sheet:  sheet,
		groups: make(map[string]*Group),
		owner:  make(map[elementKey]*Group),
	}
}

// StyleSheet returns the sheet currently in use.
func (s *Set) StyleSheet() *style.StyleSheet { return s.sheet }

// Len returns the number of live groups.
func (s *Set) Len() int { return len(s.groups) }

// Add places e in the group matching its rules, creating the group if this
// is the first element with that rule combination.
func (s *Set) Add(e Element) *Group {
	k := keyOf(e)
	if _, ok := s.owner[k]; ok {
		errors.Precondition("%s %q is already grouped", e.Kind(), e.ID())
	}
	rules := s.sheet.Matching(e.Kind(), e.ID(), e.Classes())
	id := style.Key(rules)
	g, ok := s.groups[id]
	if !ok {
		g = NewGroup(e.Kind(), rules)
		s.groups[id] = g
		s.layersDirty = true
	}
	g.Add(e)
	s.owner[k] = g
	return g
}

// Remove takes e out of its group, releasing the group when it empties.
func (s *Set) Remove(e Element) {
	k := keyOf(e)
	g, ok := s.owner[k]
	if !ok {
		errors.Precondition("%s %q is not grouped", e.Kind(), e.ID())
	}
	g.Remove(e)
	delete(s.owner, k)
	if g.Len() == 0 {
		s.release(g)
	}
}

// GroupOf returns the group holding e, or nil.
func (s *Set) GroupOf(e Element) *Group { return s.owner[keyOf(e)] }

// Group returns a group by id, or nil.
func (s *Set) Group(id string) *Group { return s.groups[id] }

// Regroup moves e to the group matching its current classes, keeping its
// dynamic flag and events.
func (s *Set) Regroup(e Element) *Group {
	old := s.GroupOf(e)
	if old == nil {
		errors.Precondition("%s %q is not grouped", e.Kind(), e.ID())
	}
	if style.Key(s.sheet.Matching(e.Kind(), e.ID(), e.Classes())) == old.ID() {
		return old
	}
	dynamic := old.IsDynamic(e)
	events := append([]string(nil), old.Events(e)...)
	s.Remove(e)
	g := s.Add(e)
	restore(g, e, dynamic, events)
	return g
}

// SetStyleSheet replaces the sheet and rebuilds every group.
func (s *Set) SetStyleSheet(sheet *style.StyleSheet) {
	if sheet == nil {
		sheet = style.NewStyleSheet()
	}
	type saved struct {
		elem    Element
		dynamic bool
		events  []string
	}
	var all []saved
	for _, g := range s.Groups() {
		for _, e := range g.Elements() {
			all = append(all, saved{elem: e, dynamic: g.IsDynamic(e), events: append([]string(nil), g.Events(e)...)})
		}
	}

	s.sheet = sheet
	s.groups = make(map[string]*Group)
	s.owner = make(map[elementKey]*Group)
	s.layersDirty = true
	for _, sv := range all {
		restore(s.Add(sv.elem), sv.elem, sv.dynamic, sv.events)
	}
}

// Groups returns all groups ordered by id.
func (s *Set) Groups() []*Group {
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *Group) int { return cmp.Compare(a.id, b.id) })
	return out
}

// ZIndex returns the groups partitioned into layers of equal z-index, lowest
// first. Groups within a layer are ordered by kind then id.
func (s *Set) ZIndex() [][]*Group {
	s.refreshLayers()
	return s.layers
}

// Shadows returns the groups whose style casts a shadow.
func (s *Set) Shadows() []*Group {
	s.refreshLayers()
	return s.shadows
}

// GraphStyle returns the cascade for the graph itself.
func (s *Set) GraphStyle(classes []string) style.Style {
	return style.Style{Rules: s.sheet.Matching(style.KindGraph, "", classes)}
}

func (s *Set) release(g *Group) {
	delete(s.groups, g.id)
	s.layersDirty = true
}

func (s *Set) refreshLayers() {
	if !s.layersDirty {
		return
	}
	groups := s.Groups()
	slices.SortStableFunc(groups, func(a, b *Group) int {
		if c := cmp.Compare(a.Style().ZIndex(), b.Style().ZIndex()); c != 0 {
			return c
		}
		return cmp.Compare(a.kind, b.kind)
	})

	s.layers = nil
	s.shadows = nil
	for i, g := range groups {
		if i == 0 || g.Style().ZIndex() != groups[i-1].Style().ZIndex() {
			s.layers = append(s.layers, nil)
		}
		s.layers[len(s.layers)-1] = append(s.layers[len(s.layers)-1], g)
		if g.Style().ShadowMode() != style.ShadowNone {
			s.shadows = append(s.shadows, g)
		}
	}
	s.layersDirty = false
}

func restore(g *Group, e Element, dynamic bool, events []string) {
	if dynamic {
		g.MarkDynamic(e)
	}
	for _, ev := range events {
		g.PushEvent(e, ev)
	}
}
