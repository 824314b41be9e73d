package skeleton

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/metrics"
	"github.com/matzehuels/graphview/pkg/style"
)

// Element is the view of a graphic element a skeleton reads from.
type Element interface {
	ID() string
	// Style returns the element's cascade with its own active events.
	Style() style.Style
	Label() string
}

// NodeElement is a node: an element with a center.
type NodeElement interface {
	Element
	Center() geom.Point3
	NodeSkeleton() *Node
}

// EdgeElement is an edge between two nodes.
type EdgeElement interface {
	Element
	Source() NodeElement
	Target() NodeElement
	Directed() bool
	// Multi returns the edge's index inside its parallel group and the group
	// size. A single edge reports (0, 1).
	Multi() (index, count int)
	EdgeSkeleton() *Edge
}

// SpriteElement is a sprite: three unit-tagged components that are either a
// free position or, when attached, an offset from a node or along an edge.
type SpriteElement interface {
	Element
	Offset() style.Values
	// AttachedNode and AttachedEdge return nil when the sprite is not
	// attached to an element of that kind.
	AttachedNode() NodeElement
	AttachedEdge() EdgeElement
}

// Skeleton is the cached geometry and appearance shared by all element kinds.
type Skeleton interface {
	StyleChanged()
	SizeChanged(v any)
	ColorChanged(v any)
	LabelChanged()
	PositionChanged()

	SizeGU(m *metrics.GraphMetrics) geom.Vector2
	SizePX(m *metrics.GraphMetrics) geom.Vector2
	Color() style.Color
	LabelLength(m *metrics.GraphMetrics) float64
	Position(m *metrics.GraphMetrics) geom.Point3
	Bounds(m *metrics.GraphMetrics) geom.Box
	Contains(m *metrics.GraphMetrics, x, y float64) bool
}

// Factory creates skeletons for new elements.
type Factory interface {
	NewNode(e NodeElement) *Node
	NewEdge(e EdgeElement) *Edge
	NewSprite(e SpriteElement) *Sprite
}

// DefaultFactory builds the standard skeletons. Malformed dynamic values are
// reported through Logger.
type DefaultFactory struct {
	Logger *log.Logger
}

func (f DefaultFactory) logger() *log.Logger {
	if f.Logger == nil {
		return log.Default()
	}
	return f.Logger
}

// NewNode implements Factory.
func (f DefaultFactory) NewNode(e NodeElement) *Node {
	return &Node{base: newBase(e, f.logger()), node: e}
}

// NewEdge implements Factory.
func (f DefaultFactory) NewEdge(e EdgeElement) *Edge {
	return &Edge{base: newBase(e, f.logger()), edge: e, geomDirty: true}
}

// NewSprite implements Factory.
func (f DefaultFactory) NewSprite(e SpriteElement) *Sprite {
	return &Sprite{base: newBase(e, f.logger()), sprite: e, posDirty: true}
}

// base holds the caches common to every skeleton. Each cache is recomputed
// on the first read after its dirty flag is set.
type base struct {
	elem Element
	log  *log.Logger

	sizeDirty  bool
	size       style.Values
	dynSize    style.Values
	hasDynSize bool

	colorDirty bool
	color      style.Color
	driver     any

	labelDirty bool
	labelCells int
}

func newBase(e Element, logger *log.Logger) base {
	return base{elem: e, log: logger, sizeDirty: true, colorDirty: true, labelDirty: true}
}

// StyleChanged invalidates everything derived from the style.
func (b *base) StyleChanged() {
	b.sizeDirty = true
	b.colorDirty = true
	b.labelDirty = true
}

// SizeChanged records a ui.size value: one component for a uniform size or
// two for width and height. A nil value clears it. Malformed values are
// logged and the previous size is kept.
func (b *base) SizeChanged(v any) {
	if v == nil {
		b.hasDynSize = false
		b.sizeDirty = true
		return
	}
	vals, err := style.ParseValues(v, b.elem.Style().Size().Units)
	if err == nil && vals.Len() > 2 {
		err = errors.New(errors.ErrCodeInvalidAttribute, "ui.size takes 1 or 2 components, got %d", vals.Len())
	}
	if err == nil && (vals.At(0) < 0 || vals.At(1) < 0) {
		err = errors.New(errors.ErrCodeInvalidAttribute, "ui.size must not be negative")
	}
	if err != nil {
		b.log.Warn("ignoring malformed size", "element", b.elem.ID(), "value", v, "err", err)
		return
	}
	b.dynSize = vals
	b.hasDynSize = true
	b.sizeDirty = true
}

// ColorChanged records a ui.color value: a number in [0, 1] driving the fill
// palette, or a color. A nil value clears it.
func (b *base) ColorChanged(v any) {
	if v == nil {
		b.driver = nil
		b.colorDirty = true
		return
	}
	if n, ok := style.ToFloat(v); ok {
		b.driver = n
		b.colorDirty = true
		return
	}
	c, err := style.ParseColor(v)
	if err != nil {
		b.log.Warn("ignoring malformed color", "element", b.elem.ID(), "value", v, "err", err)
		return
	}
	b.driver = c
	b.colorDirty = true
}

// LabelChanged invalidates the label length.
func (b *base) LabelChanged() { b.labelDirty = true }

// SizeValues returns the unit-tagged size: ui.size under dyn-size mode,
// otherwise the style size.
func (b *base) SizeValues() style.Values {
	if b.sizeDirty {
		st := b.elem.Style()
		b.size = st.Size()
		if st.SizeMode() == style.SizeDyn && b.hasDynSize {
			b.size = b.dynSize
		}
		b.sizeDirty = false
	}
	return b.size
}

// SizeGU returns width and height in graph units.
func (b *base) SizeGU(m *metrics.GraphMetrics) geom.Vector2 {
	v := b.SizeValues()
	return geom.Vector2{X: m.ComponentGU(v, 0), Y: m.ComponentGU(v, 1)}
}

// SizePX returns width and height in pixels.
func (b *base) SizePX(m *metrics.GraphMetrics) geom.Vector2 {
	v := b.SizeValues()
	return geom.Vector2{X: m.ComponentPX(v, 0), Y: m.ComponentPX(v, 1)}
}

// Color returns the fill color. Under dyn-plain a numeric ui.color picks a
// color along the palette; an explicit ui.color color always wins.
func (b *base) Color() style.Color {
	if b.colorDirty {
		st := b.elem.Style()
		b.color = st.FillColor(0)
		switch d := b.driver.(type) {
		case float64:
			if st.FillMode() == style.FillDynPlain {
				b.color = style.Interpolate(st.FillColors(), d)
			}
		case style.Color:
			b.color = d
		}
		b.colorDirty = false
	}
	return b.color
}

// LabelLength returns the label width in graph units.
func (b *base) LabelLength(m *metrics.GraphMetrics) float64 {
	if b.labelDirty {
		b.labelCells = Cells(b.elem.Label())
		b.labelDirty = false
	}
	return m.PixelsToGU(float64(b.labelCells) * b.elem.Style().TextSize() * charWidth)
}

// IsDynamic reports whether a per-element value currently overrides the
// group style.
func (b *base) IsDynamic() bool {
	return b.driver != nil || b.hasDynSize
}
