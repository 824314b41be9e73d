package style

import (
	"cmp"
	"slices"
	"strings"
)

// StyleSheet is an evaluated set of rules. It is immutable once built; a
// style-sheet change replaces the whole sheet.
type StyleSheet struct {
	rules    []*Rule
	byID     map[string]*Rule
	defaults map[Kind]*Rule

	// Warnings collects non-fatal problems found while loading (bad property
	// values that were skipped).
	Warnings []error
}

// NewStyleSheet creates a sheet holding only the built-in default rules.
func NewStyleSheet() *StyleSheet {
	s := &StyleSheet{
		byID:     make(map[string]*Rule),
		defaults: make(map[Kind]*Rule),
	}
	for _, k := range []Kind{KindGraph, KindNode, KindEdge, KindSprite} {
		s.defaults[k] = defaultRule(k)
	}
	return s
}

// Rule returns the rule for sel, creating an empty one if needed.
func (s *StyleSheet) Rule(sel Selector) *Rule {
	id := sel.String()
	if r, ok := s.byID[id]; ok {
		return r
	}
	r := NewRule(sel)
	r.order = len(s.rules)
	s.rules = append(s.rules, r)
	s.byID[id] = r
	return r
}

// Rules returns the declared rules in declaration order.
func (s *StyleSheet) Rules() []*Rule { return s.rules }

// Default returns the built-in rule for kind.
func (s *StyleSheet) Default(kind Kind) *Rule { return s.defaults[kind] }

// Matching returns the rules that apply to an element, most specific first
// and the kind's default rule last. Among equally specific rules the later
// declaration wins.
func (s *StyleSheet) Matching(kind Kind, id string, classes []string) []*Rule {
	var out []*Rule
	for _, r := range s.rules {
		if r.Selector.Matches(kind, id, classes) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b *Rule) int {
		if c := cmp.Compare(b.Selector.Specificity(), a.Selector.Specificity()); c != 0 {
			return c
		}
		return cmp.Compare(b.order, a.order)
	})
	return append(out, s.defaults[kind])
}

// Key builds the identifier of a rule combination. Elements whose matching
// rules produce the same key share a style group.
func Key(rules []*Rule) string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.id
	}
	return strings.Join(ids, "|")
}

func defaultRule(kind Kind) *Rule {
	r := NewRule(Selector{Kind: kind})
	r.id = "default:" + kind.String()
	r.Set(FillMode, FillPlain)
	r.Set(StrokeMode, StrokeNone)
	r.Set(StrokeColor, Black)
	r.Set(StrokeWidth, Vals(PX, 1))
	r.Set(SizeMode, SizeNormal)
	r.Set(TextMode, TextNormal)
	r.Set(TextSize, 10.0)
	r.Set(TextColor, Black)
	r.Set(ShadowMode, ShadowNone)
	r.Set(ShadowColor, RGBA(0, 0, 0, 96))
	r.Set(ShadowOffset, Vals(PX, 3, 3))
	r.Set(VisibilityMode, VisibilityNormal)
	r.Set(Visibility, Vals(GU, 0))
	r.Set(ArrowShape, ArrowTriangle)
	r.Set(ArrowSize, Vals(PX, 8, 4))
	r.Set(Padding, Vals(PX, 0))

	switch kind {
	case KindGraph:
		r.Set(FillColor, []Color{White})
		r.Set(Padding, Vals(PX, 30))
		r.Set(Size, Vals(PX, 0))
		r.Set(Shape, ShapeBox)
		r.Set(ZIndex, 0)
	case KindEdge:
		r.Set(FillColor, []Color{Black})
		r.Set(Size, Vals(PX, 1))
		r.Set(Shape, ShapeLine)
		r.Set(ZIndex, 1)
	case KindNode:
		r.Set(FillColor, []Color{Black})
		r.Set(Size, Vals(PX, 10))
		r.Set(Shape, ShapeCircle)
		r.Set(ZIndex, 2)
	case KindSprite:
		r.Set(FillColor, []Color{White})
		r.Set(StrokeMode, StrokePlain)
		r.Set(Size, Vals(PX, 8))
		r.Set(Shape, ShapeCircle)
		r.Set(ZIndex, 3)
	}
	return r
}
