package render

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/style"
	"github.com/matzehuels/graphview/pkg/stylegroup"
)

// Options configures a Renderer.
type Options struct {
	Logger *log.Logger
	// NoShadows skips the shadow pass.
	NoShadows bool
}

// Renderer draws a graph through a camera onto a Backend.
type Renderer struct {
	log     *log.Logger
	shadows bool
}

// Stats summarizes one render pass.
type Stats struct {
	Groups      int
	Drawn       int
	Culled      int
	StylePushes int
	Duration    time.Duration
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{log: logger, shadows: !opts.NoShadows}
}

// Render draws one frame. The camera view is recomputed first, then shadows
// are drawn, then every style group in z-order. A failing element does not
// stop the pass; the first error is returned once the frame is complete.
// The graph and camera change flags are reset afterwards.
func (r *Renderer) Render(ctx context.Context, g *graphic.Graph, cam *camera.Camera, b Backend) (stats Stats, err error) {
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		observability.Frames().OnFrame(ctx, stats.Groups, stats.Duration, err)
	}()

	cam.PushView(g)
	m := cam.Metrics()
	if err := b.Begin(m.ViewportW, m.ViewportH, g.GraphStyle().FillColor(0)); err != nil {
		return stats, err
	}

	p := &painter{cam: cam, m: m, b: b, stats: &stats}
	if r.shadows {
		for _, grp := range g.Styles().Shadows() {
			p.keep(p.shadows(grp))
		}
	}
	for _, layer := range g.Styles().ZIndex() {
		for _, grp := range layer {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.Groups++
			p.keep(grp.Paint(p))
		}
	}
	if err := b.End(); err != nil {
		return stats, err
	}

	g.ResetGraphChanged()
	cam.ResetChanged()
	if p.first != nil {
		r.log.Warn("frame drawn with errors", "err", p.first)
	}
	r.log.Debug("frame", "groups", stats.Groups, "drawn", stats.Drawn, "culled", stats.Culled, "pushes", stats.StylePushes)
	return stats, p.first
}

// shadows draws the shadow of each visible node and sprite of grp.
func (p *painter) shadows(grp *stylegroup.Group) error {
	if grp.Kind() != style.KindNode && grp.Kind() != style.KindSprite {
		return nil
	}
	st := grp.Style()
	if st.ShadowMode() == style.ShadowNone {
		return nil
	}
	off := st.ShadowOffset()
	offset := geom.Vector2{X: p.m.ComponentPX(off, 0), Y: p.m.ComponentPX(off, 1)}
	var first error
	for _, e := range grp.Elements() {
		if !p.Visible(e) {
			continue
		}
		p.cur = st
		p.dynamic = false
		s, ok := p.shapeOf(e)
		if !ok {
			continue
		}
		s.Paint = Paint{Fill: st.ShadowColor()}
		if err := p.b.Shadow(s, offset); err != nil && first == nil {
			first = err
		}
	}
	return first
}
