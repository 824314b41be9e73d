package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/width"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/style"
)

// Terminal cells are twice as tall as they are wide. A terminal of c columns
// and r rows is a viewport of c*CellWidth by r*CellHeight pixels.
const (
	CellWidth  = 1.0
	CellHeight = 2.0
)

// TerminalOption configures a Terminal backend.
type TerminalOption func(*Terminal)

// WithoutColor renders plain characters.
func WithoutColor() TerminalOption { return func(t *Terminal) { t.color = false } }

// Terminal renders frames onto a character grid.
type Terminal struct {
	color bool
	cols  int
	rows  int
	cells []cell
	out   string
}

type cell struct {
	r     rune
	fg    style.Color
	cont  bool // right half of a wide rune
	inked bool
}

var _ Backend = (*Terminal)(nil)

// NewTerminal creates a colored terminal backend.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{color: true}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Viewport returns the pixel size for a terminal of cols by rows.
func Viewport(cols, rows int) (w, h float64) {
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// String returns the last completed frame.
func (t *Terminal) String() string { return t.out }

// Begin clears a grid sized to a w by h pixel viewport. The background
// is left to the terminal.
func (t *Terminal) Begin(w, h float64, _ style.Color) error {
	t.cols = max(1, int(w/CellWidth))
	t.rows = max(1, int(h/CellHeight))
	t.cells = make([]cell, t.cols*t.rows)
	return nil
}

// End joins the grid into the frame returned by String.
func (t *Terminal) End() error {
	var b strings.Builder
	for row := 0; row < t.rows; row++ {
		line := t.cells[row*t.cols : (row+1)*t.cols]
		for i := 0; i < len(line); {
			if line[i].cont {
				i++
				continue
			}
			if !line[i].inked {
				b.WriteByte(' ')
				i++
				continue
			}
			// Group a run of equal color into one styled segment.
			j := i
			var run strings.Builder
			for j < len(line) && line[j].inked && line[j].fg == line[i].fg {
				if !line[j].cont {
					run.WriteRune(line[j].r)
				}
				j++
			}
			b.WriteString(t.paint(run.String(), line[i].fg))
			i = j
		}
		if row < t.rows-1 {
			b.WriteByte('\n')
		}
	}
	t.out = b.String()
	return nil
}

func (t *Terminal) paint(s string, c style.Color) string {
	if !t.color {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(s)
}

// Shadows are not drawn on a character grid.
func (t *Terminal) Shadow(Shape, geom.Vector2) error { return nil }

// Shape marks the cell under the shape center.
func (t *Terminal) Shape(s Shape) error {
	fg := s.Paint.Fill
	if s.Paint.NoFill {
		fg = s.Paint.Stroke
	}
	t.set(s.Center, glyph(s), fg)
	return nil
}

func glyph(s Shape) rune {
	if s.Kind == style.KindSprite {
		return '◦'
	}
	switch s.Shape {
	case style.ShapeBox:
		return '■'
	case style.ShapeRoundedBox:
		return '▢'
	case style.ShapeDiamond:
		return '◆'
	case style.ShapeCross:
		return '✚'
	}
	if s.Paint.NoFill {
		return '○'
	}
	return '●'
}

// Connector traces the edge with box-drawing slopes.
func (t *Terminal) Connector(c Connector) error {
	var pts []geom.Point3
	if c.Curve {
		const steps = 32
		for i := 0; i <= steps; i++ {
			pts = append(pts, geom.CubicPoint(c.P[0], c.P[1], c.P[2], c.P[3], float64(i)/steps))
		}
	} else {
		pts = []geom.Point3{c.P[0], c.P[3]}
	}
	for i := 1; i < len(pts); i++ {
		t.line(pts[i-1], pts[i], c.Color)
	}
	return nil
}

// line plots a segment cell by cell, picking a rune from its slope.
func (t *Terminal) line(a, b geom.Point3, fg style.Color) {
	ch := slopeRune(b.Sub(a))
	ax, ay := t.cellOf(a)
	bx, by := t.cellOf(b)
	n := max(abs(bx-ax), abs(by-ay))
	for i := 0; i <= n; i++ {
		f := 0.0
		if n > 0 {
			f = float64(i) / float64(n)
		}
		x := ax + int(math.Round(f*float64(bx-ax)))
		y := ay + int(math.Round(f*float64(by-ay)))
		t.put(x, y, ch, fg, false)
	}
}

func slopeRune(d geom.Vector2) rune {
	// Compare in cell units so a 45 degree cell diagonal reads as one.
	dx, dy := d.X/CellWidth, d.Y/CellHeight
	switch {
	case math.Abs(dy) < math.Abs(dx)/2:
		return '─'
	case math.Abs(dx) < math.Abs(dy)/2:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// Arrow marks the tip cell with a direction glyph.
func (t *Terminal) Arrow(a Arrow) error {
	var r rune
	d := a.Direction
	switch {
	case math.Abs(d.X) >= math.Abs(d.Y) && d.X >= 0:
		r = '▶'
	case math.Abs(d.X) >= math.Abs(d.Y):
		r = '◀'
	case d.Y > 0:
		r = '▼'
	default:
		r = '▲'
	}
	t.set(a.Tip, r, a.Color)
	return nil
}

// Text writes the label to the right of its anchor cell.
func (t *Terminal) Text(txt Text) error {
	x, y := t.cellOf(txt.At)
	x += 2
	for _, r := range txt.Text {
		t.put(x, y, r, txt.Color, true)
		if isWide(r) {
			x++
			if t.inside(x, y) {
				t.cells[t.index(x, y)] = cell{fg: txt.Color, cont: true, inked: true}
			}
		}
		x++
	}
	return nil
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

func (t *Terminal) set(p geom.Point3, r rune, fg style.Color) {
	x, y := t.cellOf(p)
	t.put(x, y, r, fg, true)
}

// put inks a cell. Lines do not overwrite earlier marks.
func (t *Terminal) put(x, y int, r rune, fg style.Color, overwrite bool) {
	if !t.inside(x, y) {
		return
	}
	c := &t.cells[t.index(x, y)]
	if c.inked && !overwrite {
		return
	}
	*c = cell{r: r, fg: fg, inked: true}
}

func (t *Terminal) cellOf(p geom.Point3) (int, int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

func (t *Terminal) inside(x, y int) bool { return x >= 0 && y >= 0 && x < t.cols && y < t.rows }

func (t *Terminal) index(x, y int) int { return y*t.cols + x }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
