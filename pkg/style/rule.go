package style

import (
	"strings"

	"github.com/matzehuels/graphview/pkg/errors"
)

// Selector chooses the elements a rule applies to. Specificity grows from a
// bare kind, to kind plus class, to kind plus id.
type Selector struct {
	Kind  Kind
	ID    string
	Class string
}

// String renders the selector as "kind", "kind.class" or "kind#id".
func (s Selector) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	if s.ID != "" {
		b.WriteByte('#')
		b.WriteString(s.ID)
	}
	if s.Class != "" {
		b.WriteByte('.')
		b.WriteString(s.Class)
	}
	return b.String()
}

// ParseSelector parses "kind[#id][.class][:event]". Ids and classes cannot
// contain '.', '#' or ':'. The event part, if any, is returned separately.
func ParseSelector(s string) (Selector, string, error) {
	s = strings.TrimSpace(s)
	var event string
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		event = s[i+1:]
		s = s[:i]
		if event == "" {
			return Selector{}, "", errors.New(errors.ErrCodeInvalidStyleSheet, "empty event in selector %q", s)
		}
	}

	end := strings.IndexAny(s, "#.")
	if end < 0 {
		end = len(s)
	}
	kind, ok := ParseKind(s[:end])
	if !ok {
		return Selector{}, "", errors.New(errors.ErrCodeInvalidStyleSheet, "unknown selector kind %q", s[:end])
	}
	sel := Selector{Kind: kind}

	rest := s[end:]
	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		next := strings.IndexAny(rest, "#.")
		if next < 0 {
			next = len(rest)
		}
		part := rest[:next]
		rest = rest[next:]
		if part == "" {
			return Selector{}, "", errors.New(errors.ErrCodeInvalidStyleSheet, "empty component in selector %q", s)
		}
		switch marker {
		case '#':
			if sel.ID != "" {
				return Selector{}, "", errors.New(errors.ErrCodeInvalidStyleSheet, "selector %q has two ids", s)
			}
			sel.ID = part
		case '.':
			if sel.Class != "" {
				return Selector{}, "", errors.New(errors.ErrCodeInvalidStyleSheet, "selector %q has two classes", s)
			}
			sel.Class = part
		}
	}
	return sel, event, nil
}

// Specificity orders rules in the cascade: higher wins.
func (s Selector) Specificity() int {
	switch {
	case s.ID != "":
		return 3
	case s.Class != "":
		return 2
	default:
		return 1
	}
}

// Matches reports whether the selector applies to an element.
func (s Selector) Matches(kind Kind, id string, classes []string) bool {
	if s.Kind != kind {
		return false
	}
	if s.ID != "" && s.ID != id {
		return false
	}
	if s.Class != "" {
		for _, c := range classes {
			if c == s.Class {
				return true
			}
		}
		return false
	}
	return true
}

// Rule is one evaluated style rule: a selector, its property values, and
// alternative property values that apply while an interaction event is active.
type Rule struct {
	Selector Selector

	id     string
	order  int
	props  map[Property]any
	events map[string]map[Property]any
}

// NewRule creates an empty rule.
func NewRule(sel Selector) *Rule {
	return &Rule{
		Selector: sel,
		id:       sel.String(),
		props:    make(map[Property]any),
	}
}

// ID returns the rule identifier, unique within a sheet.
func (r *Rule) ID() string { return r.id }

// Set stores a typed property value.
func (r *Rule) Set(p Property, v any) { r.props[p] = v }

// SetEvent stores a typed property value for an event alternative.
func (r *Rule) SetEvent(event string, p Property, v any) {
	if r.events == nil {
		r.events = make(map[string]map[Property]any)
	}
	m, ok := r.events[event]
	if !ok {
		m = make(map[Property]any)
		r.events[event] = m
	}
	m[p] = v
}

// Get returns the rule's own value for p.
func (r *Rule) Get(p Property) (any, bool) {
	v, ok := r.props[p]
	return v, ok
}

// GetEvent returns the value for p in the event alternative.
func (r *Rule) GetEvent(event string, p Property) (any, bool) {
	m, ok := r.events[event]
	if !ok {
		return nil, false
	}
	v, ok := m[p]
	return v, ok
}

// HasEvents reports whether the rule declares event alternatives.
func (r *Rule) HasEvents() bool { return len(r.events) > 0 }

// Events returns the names of the declared event alternatives.
func (r *Rule) Events() []string {
	out := make([]string, 0, len(r.events))
	for e := range r.events {
		out = append(out, e)
	}
	return out
}
