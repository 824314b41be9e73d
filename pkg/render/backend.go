package render

import (
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/style"
)

// Paint is a resolved fill and outline in pixels.
type Paint struct {
	Fill        style.Color
	NoFill      bool
	Stroke      style.Color
	StrokeWidth float64 // 0 draws no outline
	Dashed      bool
}

// Shape is a node or sprite to draw, in pixels.
type Shape struct {
	ID     string
	Kind   style.Kind
	Shape  style.ShapeValue
	Center geom.Point3
	Width  float64
	Height float64
	Paint  Paint
}

// Connector is an edge to draw, in pixels. Line connectors use P[0] and
// P[3]; curves use all four control points.
type Connector struct {
	ID    string
	Curve bool
	P     [4]geom.Point3
	Width float64
	Color style.Color
}

// Arrow is an arrowhead whose tip touches the target node.
type Arrow struct {
	Shape     style.ArrowShapeValue
	Tip       geom.Point3
	Direction geom.Vector2 // unit vector, pointing at the tip
	Length    float64
	Width     float64
	Color     style.Color
}

// Text is a label centered on At.
type Text struct {
	At    geom.Point3
	Text  string
	Size  float64
	Color style.Color
}

// Backend receives drawing commands in pixel space, in paint order.
type Backend interface {
	Begin(width, height float64, background style.Color) error
	Shadow(s Shape, offset geom.Vector2) error
	Shape(s Shape) error
	Connector(c Connector) error
	Arrow(a Arrow) error
	Text(t Text) error
	End() error
}
