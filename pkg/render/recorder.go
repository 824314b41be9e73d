package render

import (
	"fmt"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/style"
)

// Recorder is a Backend that keeps every command of the last frame. Calls
// lists them in order as "kind:id" (or "kind" for anonymous commands).
type Recorder struct {
	Width, Height float64
	Background    style.Color

	Calls      []string
	Shadows    []Shape
	Shapes     []Shape
	Connectors []Connector
	Arrows     []Arrow
	Texts      []Text
	Frames     int

	// Fail makes drawing the shape or connector with this id return an error.
	Fail map[string]error
}

var _ Backend = (*Recorder)(nil)

func (r *Recorder) Begin(w, h float64, bg style.Color) error {
	*r = Recorder{Width: w, Height: h, Background: bg, Frames: r.Frames, Fail: r.Fail}
	return nil
}

func (r *Recorder) End() error {
	r.Frames++
	return nil
}

func (r *Recorder) Shadow(s Shape, offset geom.Vector2) error {
	s.Center = s.Center.Add(offset)
	r.Shadows = append(r.Shadows, s)
	r.Calls = append(r.Calls, "shadow:"+s.ID)
	return nil
}

func (r *Recorder) Shape(s Shape) error {
	r.Calls = append(r.Calls, fmt.Sprintf("%s:%s", s.Kind, s.ID))
	if err := r.Fail[s.ID]; err != nil {
		return err
	}
	r.Shapes = append(r.Shapes, s)
	return nil
}

func (r *Recorder) Connector(c Connector) error {
	r.Calls = append(r.Calls, "edge:"+c.ID)
	if err := r.Fail[c.ID]; err != nil {
		return err
	}
	r.Connectors = append(r.Connectors, c)
	return nil
}

func (r *Recorder) Arrow(a Arrow) error {
	r.Calls = append(r.Calls, "arrow")
	r.Arrows = append(r.Arrows, a)
	return nil
}

func (r *Recorder) Text(t Text) error {
	r.Calls = append(r.Calls, "text:"+t.Text)
	r.Texts = append(r.Texts, t)
	return nil
}

// ShapeByID returns the recorded shape with id.
func (r *Recorder) ShapeByID(id string) (Shape, bool) {
	for _, s := range r.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}
