package camera

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/metrics"
	"github.com/matzehuels/graphview/pkg/style"
)

// Options configures a Camera.
type Options struct {
	Logger *log.Logger
	// Width and Height are the initial viewport size in pixels.
	Width, Height float64
	// Padding is added to the graph style padding. One or two components in
	// graph units or pixels.
	Padding style.Values
}

// Camera maps graph units to pixels. It is either in auto-fit mode, where
// every frame frames the whole graph, or in user mode, where the view
// center, zoom and rotation are set explicitly.
type Camera struct {
	log     *log.Logger
	metrics *metrics.GraphMetrics
	padding style.Values

	autoFit  bool
	center   geom.Point3
	zoom     float64
	rotation float64

	// pending is set when user mode starts before the first PushView; the
	// center is then taken from the first computed bounds.
	pending bool
	pushed  bool

	viewport    geom.Box
	hasViewport bool

	invisible map[string]struct{}
	visible   geom.Box
	changed   bool
}

// New creates a camera in auto-fit mode.
func New(opts Options) *Camera {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	c := &Camera{
		log:       logger,
		metrics:   metrics.New(),
		padding:   opts.Padding,
		autoFit:   true,
		zoom:      1,
		invisible: make(map[string]struct{}),
		changed:   true,
	}
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	c.metrics.SetViewport(w, h)
	return c
}

// Metrics returns the metrics refreshed by PushView.
func (c *Camera) Metrics() *metrics.GraphMetrics { return c.metrics }

// Changed reports whether a view parameter changed since ResetChanged.
func (c *Camera) Changed() bool { return c.changed }

// ResetChanged clears the change flag after a frame was drawn.
func (c *Camera) ResetChanged() { c.changed = false }

// =============================================================================
// View parameters
// =============================================================================

// SetViewport resizes the output surface.
func (c *Camera) SetViewport(w, h float64) {
	if w <= 0 || h <= 0 {
		c.log.Warn("ignoring empty viewport", "width", w, "height", h)
		return
	}
	if w != c.metrics.ViewportW || h != c.metrics.ViewportH {
		c.metrics.SetViewport(w, h)
		c.changed = true
	}
}

// Viewport returns the surface size in pixels.
func (c *Camera) Viewport() (w, h float64) { return c.metrics.ViewportW, c.metrics.ViewportH }

// AutoFit reports whether the camera frames the whole graph.
func (c *Camera) AutoFit() bool { return c.autoFit }

// SetAutoFitView switches between auto-fit and user mode. Leaving auto-fit
// keeps the current framing.
func (c *Camera) SetAutoFitView(on bool) {
	if on == c.autoFit {
		return
	}
	if on {
		c.autoFit = true
		c.pending = false
		c.zoom = 1
		c.hasViewport = false
		c.changed = true
		return
	}
	c.enterUserMode()
}

// ResetView restores auto-fit framing with no rotation.
func (c *Camera) ResetView() {
	c.autoFit = true
	c.pending = false
	c.zoom = 1
	c.rotation = 0
	c.hasViewport = false
	c.changed = true
}

// enterUserMode freezes the current auto-fit center and zoom.
func (c *Camera) enterUserMode() {
	if !c.autoFit {
		return
	}
	c.autoFit = false
	c.center = c.metrics.Lo.Lerp(c.metrics.Hi, 0.5)
	c.pending = !c.pushed
	c.zoom = 1
	c.changed = true
}

// ViewCenter returns the graph-unit point at the middle of the viewport.
func (c *Camera) ViewCenter() geom.Point3 {
	if c.autoFit || c.pending {
		return c.metrics.Lo.Lerp(c.metrics.Hi, 0.5)
	}
	return c.center
}

// SetViewCenter pans so (x, y, z) is at the middle of the viewport.
func (c *Camera) SetViewCenter(x, y, z float64) {
	c.enterUserMode()
	c.center = geom.Pt(x, y, z)
	c.pending = false
	c.changed = true
}

// ViewPercent returns the zoom: 1 shows the whole graph, 0.5 half of it.
func (c *Camera) ViewPercent() float64 { return c.zoom }

// SetViewPercent zooms. Non-positive or non-finite values are ignored.
func (c *Camera) SetViewPercent(p float64) {
	if p <= 0 || math.IsInf(p, 0) || math.IsNaN(p) {
		c.log.Warn("ignoring view percent", "value", p)
		return
	}
	c.enterUserMode()
	c.zoom = p
	c.changed = true
}

// Rotation returns the view rotation in degrees.
func (c *Camera) Rotation() float64 { return c.rotation }

// SetViewRotation rotates the view around its center.
func (c *Camera) SetViewRotation(degrees float64) {
	c.enterUserMode()
	c.rotation = degrees
	c.changed = true
}

// SetGraphViewport restricts user mode to a graph-space rectangle: it is
// framed in place of the graph bounds and the view is centered on it.
func (c *Camera) SetGraphViewport(x1, y1, x2, y2 float64) {
	c.enterUserMode()
	c.viewport = geom.Box{
		Lo: geom.Pt(math.Min(x1, x2), math.Min(y1, y2), 0),
		Hi: geom.Pt(math.Max(x1, x2), math.Max(y1, y2), 0),
	}
	c.hasViewport = true
	c.center = c.viewport.Center()
	c.pending = false
	c.zoom = 1
	c.changed = true
}

// RemoveGraphViewport frames the graph bounds again.
func (c *Camera) RemoveGraphViewport() {
	if c.hasViewport {
		c.hasViewport = false
		c.changed = true
	}
}

// GraphViewport returns the graph-space rectangle, if any.
func (c *Camera) GraphViewport() (geom.Box, bool) { return c.viewport, c.hasViewport }

// =============================================================================
// Transform
// =============================================================================

// PushView recomputes bounds, the transform and node visibility for the
// next frame. It must run before skeletons are read.
func (c *Camera) PushView(g *graphic.Graph) {
	lo, hi := g.ComputeBounds()
	c.metrics.SetBounds(lo, hi)

	frame := geom.Box{Lo: lo, Hi: hi}
	center := frame.Center()
	if c.pending {
		c.center = center
		c.pending = false
	}
	c.pushed = true
	if !c.autoFit {
		if c.hasViewport {
			frame = c.viewport
		}
		center = c.center
	}
	ratio := c.fitRatio(g.GraphStyle(), frame) / c.zoom
	c.metrics.SetRatio(ratio)

	w, h := c.metrics.ViewportW, c.metrics.ViewportH
	t := geom.Translate(w/2, h/2).
		Then(geom.Rotate(c.rotation)).
		Then(geom.Scale(c.metrics.RatioPx2Gu, -c.metrics.RatioPx2Gu)).
		Then(geom.Translate(-center.X, -center.Y))
	c.metrics.SetTransform(t)
	c.visible = c.metrics.Inverse.ApplyBox(geom.Box{Hi: geom.Pt(w, h, 0)})

	c.checkVisibility(g)
}

// fitRatio is the pixels-per-unit ratio that fits frame plus padding into
// the viewport. The lesser of the two axis ratios keeps the aspect.
func (c *Camera) fitRatio(st style.Style, frame geom.Box) float64 {
	guX, guY, pxX, pxY := c.paddings(st)
	gw := frame.Hi.X - frame.Lo.X + 2*guX
	gh := frame.Hi.Y - frame.Lo.Y + 2*guY
	vw := math.Max(1, c.metrics.ViewportW-2*pxX)
	vh := math.Max(1, c.metrics.ViewportH-2*pxY)
	if gw <= 0 {
		gw = 1
	}
	if gh <= 0 {
		gh = 1
	}
	return math.Min(vw/gw, vh/gh)
}

func (c *Camera) paddings(st style.Style) (guX, guY, pxX, pxY float64) {
	for _, p := range []style.Values{st.Padding(), c.padding} {
		if p.Len() == 0 {
			continue
		}
		switch p.Units {
		case style.PX:
			pxX += p.At(0)
			pxY += p.At(1)
		case style.Percents:
			pxX += c.metrics.ViewportW * p.At(0) / 100
			pxY += c.metrics.ViewportH * p.At(1) / 100
		default:
			guX += p.At(0)
			guY += p.At(1)
		}
	}
	return guX, guY, pxX, pxY
}

// TransformGUToPX maps a graph-unit point to pixels.
func (c *Camera) TransformGUToPX(p geom.Point3) geom.Point3 { return c.metrics.Transform.Apply(p) }

// TransformPXToGU maps a pixel to graph units.
func (c *Camera) TransformPXToGU(x, y float64) geom.Point3 {
	return c.metrics.Inverse.Apply(geom.Pt(x, y, 0))
}

// VisibleBounds returns the graph-unit box covering the viewport.
func (c *Camera) VisibleBounds() geom.Box { return c.visible }
