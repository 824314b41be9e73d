package stylegroup

import (
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/style"
)

// Element is anything that can be styled: a node, an edge or a sprite.
type Element interface {
	ID() string
	Kind() style.Kind
	Classes() []string
}

type partition int

const (
	bulkPartition partition = iota
	dynamicPartition
)

type member struct {
	elem   Element
	part   partition
	index  int
	events *ElementEvents
}

// ElementEvents is the event record of one element: the interaction events
// (clicked, selected, ...) currently pushed on it, oldest first. A record
// exists only while at least one event is active.
type ElementEvents struct {
	elem   Element
	index  int
	events []string
}

// Element returns the element the record belongs to.
func (r *ElementEvents) Element() Element { return r.elem }

// Events returns the active events, oldest first.
func (r *ElementEvents) Events() []string { return r.events }

// Group is a set of elements sharing one cascade of matching rules.
//
// Every member is in exactly one of the bulk and dynamic partitions. Members
// with active events are additionally indexed in the event list. All three
// lists are dense and removal swaps the last entry into the hole, so every
// operation is O(1).
type Group struct {
	id    string
	kind  style.Kind
	rules []*style.Rule

	members map[string]*member
	bulk    []*member
	dynamic []*member
	event   []*ElementEvents

	// active holds the events of the element being painted by the event pass.
	active []string
}

// NewGroup creates an empty group for the given rule cascade.
func NewGroup(kind style.Kind, rules []*style.Rule) *Group {
	return &Group{
		id:      style.Key(rules),
		kind:    kind,
		rules:   rules,
		members: make(map[string]*member),
	}
}

// ID returns the key built from the ids of the group's rules.
func (g *Group) ID() string { return g.id }

// Kind returns the element kind shared by all members.
func (g *Group) Kind() style.Kind { return g.kind }

// Rules returns the matching rules, most specific first.
func (g *Group) Rules() []*style.Rule { return g.rules }

// Len returns the number of members.
func (g *Group) Len() int { return len(g.members) }

// BulkLen returns the size of the bulk partition.
func (g *Group) BulkLen() int { return len(g.bulk) }

// DynamicLen returns the size of the dynamic partition.
func (g *Group) DynamicLen() int { return len(g.dynamic) }

// EventLen returns the number of members with active events.
func (g *Group) EventLen() int { return len(g.event) }

// Contains reports whether the element with the given id is a member.
func (g *Group) Contains(id string) bool {
	_, ok := g.members[id]
	return ok
}

// Style returns the cascaded lookup, honoring the events activated for the
// element currently being painted.
func (g *Group) Style() style.Style {
	return style.Style{Rules: g.rules, Events: g.active}
}

// StyleFor returns the cascaded lookup with e's own active events.
func (g *Group) StyleFor(e Element) style.Style {
	m := g.lookup(e, "StyleFor")
	if m.events == nil {
		return style.Style{Rules: g.rules}
	}
	return style.Style{Rules: g.rules, Events: m.events.events}
}

// Add inserts e into the bulk partition.
func (g *Group) Add(e Element) {
	if _, ok := g.members[e.ID()]; ok {
		errors.Precondition("element %q already in group %q", e.ID(), g.id)
	}
	if e.Kind() != g.kind {
		errors.Precondition("element %q is a %s, group %q holds %ss", e.ID(), e.Kind(), g.id, g.kind)
	}
	m := &member{elem: e, part: bulkPartition, index: len(g.bulk)}
	g.bulk = append(g.bulk, m)
	g.members[e.ID()] = m
}

// Remove drops e from the group together with its event record.
func (g *Group) Remove(e Element) {
	m := g.lookup(e, "Remove")
	g.unlink(m)
	if m.events != nil {
		g.dropEvents(m)
	}
	delete(g.members, e.ID())
}

// MarkDynamic moves e to the dynamic partition. It is a no-op when e is
// already dynamic.
func (g *Group) MarkDynamic(e Element) {
	m := g.lookup(e, "MarkDynamic")
	if m.part == dynamicPartition {
		return
	}
	g.unlink(m)
	m.part = dynamicPartition
	m.index = len(g.dynamic)
	g.dynamic = append(g.dynamic, m)
}

// UnmarkDynamic moves e back to the bulk partition. It is a no-op when e is
// already in bulk.
func (g *Group) UnmarkDynamic(e Element) {
	m := g.lookup(e, "UnmarkDynamic")
	if m.part == bulkPartition {
		return
	}
	g.unlink(m)
	m.part = bulkPartition
	m.index = len(g.bulk)
	g.bulk = append(g.bulk, m)
}

// IsDynamic reports whether e is in the dynamic partition.
func (g *Group) IsDynamic(e Element) bool {
	return g.lookup(e, "IsDynamic").part == dynamicPartition
}

// Index returns e's dense index inside its current partition.
func (g *Group) Index(e Element) int {
	return g.lookup(e, "Index").index
}

// PushEvent activates a named event on e. Pushing an event that is already
// active moves it to the top.
func (g *Group) PushEvent(e Element, name string) {
	m := g.lookup(e, "PushEvent")
	if m.events == nil {
		m.events = &ElementEvents{elem: e, index: len(g.event)}
		g.event = append(g.event, m.events)
	}
	m.events.events = append(removeString(m.events.events, name), name)
}

// PopEvent deactivates a named event on e. The event record is destroyed
// when no events remain. Popping an inactive event is a no-op.
func (g *Group) PopEvent(e Element, name string) {
	m := g.lookup(e, "PopEvent")
	if m.events == nil {
		return
	}
	m.events.events = removeString(m.events.events, name)
	if len(m.events.events) == 0 {
		g.dropEvents(m)
	}
}

// Events returns the active events of e, oldest first.
func (g *Group) Events(e Element) []string {
	m := g.lookup(e, "Events")
	if m.events == nil {
		return nil
	}
	return m.events.events
}

// HasEvents reports whether e has an event record.
func (g *Group) HasEvents(e Element) bool {
	return g.lookup(e, "HasEvents").events != nil
}

// Bulk returns the bulk partition in index order.
func (g *Group) Bulk() []Element { return elements(g.bulk) }

// Dynamic returns the dynamic partition in index order.
func (g *Group) Dynamic() []Element { return elements(g.dynamic) }

// EventRecords returns the event records in index order.
func (g *Group) EventRecords() []*ElementEvents { return g.event }

// Elements returns every member, bulk first.
func (g *Group) Elements() []Element {
	return append(elements(g.bulk), elements(g.dynamic)...)
}

// ActivateEvents makes Style report the given events until
// DeactivateEvents is called.
func (g *Group) ActivateEvents(events []string) { g.active = events }

// DeactivateEvents clears the events set by ActivateEvents.
func (g *Group) DeactivateEvents() { g.active = nil }

func (g *Group) lookup(e Element, op string) *member {
	m, ok := g.members[e.ID()]
	if !ok || m.elem != e {
		errors.Precondition("%s: element %q is not a member of group %q", op, e.ID(), g.id)
	}
	return m
}

// unlink removes m from its partition by swapping the last entry into its slot.
func (g *Group) unlink(m *member) {
	list := &g.bulk
	if m.part == dynamicPartition {
		list = &g.dynamic
	}
	last := len(*list) - 1
	moved := (*list)[last]
	(*list)[m.index] = moved
	moved.index = m.index
	(*list)[last] = nil
	*list = (*list)[:last]
}

func (g *Group) dropEvents(m *member) {
	rec := m.events
	last := len(g.event) - 1
	moved := g.event[last]
	g.event[rec.index] = moved
	moved.index = rec.index
	g.event[last] = nil
	g.event = g.event[:last]
	m.events = nil
}

func elements(list []*member) []Element {
	out := make([]Element, len(list))
	for i, m := range list {
		out[i] = m.elem
	}
	return out
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
