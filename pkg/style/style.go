package style

// Style is the merged property lookup for one rule cascade. Rules are ordered
// most specific first with a default rule last, so every property resolves.
//
// Events are interaction states (clicked, selected) currently active for the
// element being drawn; the most recently pushed event is last.
type Style struct {
	Rules  []*Rule
	Events []string
}

// Value resolves p: event alternatives are checked first (latest event first,
// through the whole cascade), then the base cascade.
func (s Style) Value(p Property) any {
	for i := len(s.Events) - 1; i >= 0; i-- {
		for _, r := range s.Rules {
			if v, ok := r.GetEvent(s.Events[i], p); ok {
				return v
			}
		}
	}
	for _, r := range s.Rules {
		if v, ok := r.Get(p); ok {
			return v
		}
	}
	return nil
}

// WithEvents returns a copy of s with the given active events.
func (s Style) WithEvents(events []string) Style {
	return Style{Rules: s.Rules, Events: events}
}

// FillMode returns how shapes are filled.
func (s Style) FillMode() FillModeValue {
	v, _ := s.Value(FillMode).(FillModeValue)
	return v
}

// FillColors returns the fill palette. It is never empty.
func (s Style) FillColors() []Color {
	if v, ok := s.Value(FillColor).([]Color); ok && len(v) > 0 {
		return v
	}
	return []Color{Black}
}

// FillColor returns palette entry i, clamped to the palette length.
func (s Style) FillColor(i int) Color {
	p := s.FillColors()
	if i >= len(p) {
		i = len(p) - 1
	}
	return p[i]
}

// StrokeMode returns how outlines are drawn.
func (s Style) StrokeMode() StrokeModeValue {
	v, _ := s.Value(StrokeMode).(StrokeModeValue)
	return v
}

// StrokeColor returns the outline color.
func (s Style) StrokeColor() Color {
	v, _ := s.Value(StrokeColor).(Color)
	return v
}

// StrokeWidth returns the outline width.
func (s Style) StrokeWidth() Value {
	v, _ := s.Value(StrokeWidth).(Values)
	return v.Value(0)
}

// SizeMode returns whether size comes from the style or the element.
func (s Style) SizeMode() SizeModeValue {
	v, _ := s.Value(SizeMode).(SizeModeValue)
	return v
}

// Size returns the width and height values, which may be fewer than two.
func (s Style) Size() Values {
	v, _ := s.Value(Size).(Values)
	return v
}

// Shape returns the node, sprite or edge shape.
func (s Style) Shape() ShapeValue {
	v, _ := s.Value(Shape).(ShapeValue)
	return v
}

// ArrowShape returns the arrow drawn at directed edge heads.
func (s Style) ArrowShape() ArrowShapeValue {
	v, _ := s.Value(ArrowShape).(ArrowShapeValue)
	return v
}

// ArrowSize returns the arrow length and width.
func (s Style) ArrowSize() Values {
	v, _ := s.Value(ArrowSize).(Values)
	return v
}

// TextMode returns how labels are shown.
func (s Style) TextMode() TextModeValue {
	v, _ := s.Value(TextMode).(TextModeValue)
	return v
}

// TextSize returns the label font size in points.
func (s Style) TextSize() float64 {
	v, _ := s.Value(TextSize).(float64)
	return v
}

// TextColor returns the label color.
func (s Style) TextColor() Color {
	v, _ := s.Value(TextColor).(Color)
	return v
}

// ZIndex returns the drawing order; higher values draw on top.
func (s Style) ZIndex() int {
	v, _ := s.Value(ZIndex).(int)
	return v
}

// ShadowMode returns how shadows are drawn.
func (s Style) ShadowMode() ShadowModeValue {
	v, _ := s.Value(ShadowMode).(ShadowModeValue)
	return v
}

// ShadowColor returns the shadow color.
func (s Style) ShadowColor() Color {
	v, _ := s.Value(ShadowColor).(Color)
	return v
}

// ShadowOffset returns the shadow displacement.
func (s Style) ShadowOffset() Values {
	v, _ := s.Value(ShadowOffset).(Values)
	return v
}

// VisibilityMode returns the zoom condition under which elements show.
func (s Style) VisibilityMode() VisibilityModeValue {
	v, _ := s.Value(VisibilityMode).(VisibilityModeValue)
	return v
}

// Visibility returns the zoom thresholds used by VisibilityMode.
func (s Style) Visibility() Values {
	v, _ := s.Value(Visibility).(Values)
	return v
}

// Padding returns the space kept around the graph.
func (s Style) Padding() Values {
	v, _ := s.Value(Padding).(Values)
	return v
}

// VisibleAtZoom applies the visibility mode to a view percent.
func (s Style) VisibleAtZoom(zoom float64) bool {
	vis := s.Visibility()
	switch s.VisibilityMode() {
	case VisibilityHidden:
		return false
	case VisibilityUnderZoom:
		return zoom <= vis.At(0)
	case VisibilityOverZoom:
		return zoom >= vis.At(0)
	case VisibilityZoomRange:
		return zoom >= vis.At(0) && zoom <= vis.At(1)
	default:
		return true
	}
}
