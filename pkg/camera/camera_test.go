package camera

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/style"
)

type scene struct {
	g   *graphic.Graph
	src *stream.Source
	cam *Camera
}

// newScene builds a 260x160 viewport. The default graph padding is 30px, so
// the framed area is 200x100 pixels.
func newScene(t *testing.T, sheet *style.StyleSheet) *scene {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	g := graphic.New(graphic.Options{Logger: logger, StyleSheet: sheet})
	src := stream.NewSource("test")
	src.AddSink(g)
	return &scene{g: g, src: src, cam: New(Options{Logger: logger, Width: 260, Height: 160})}
}

func (s *scene) node(id string, x, y float64) {
	s.src.AddNode(id)
	s.src.SetAttribute(stream.TargetNode, id, "xy", []any{x, y})
}

func assertMatrix(t *testing.T, want, got geom.Matrix) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "matrix[%d]", i)
	}
}

func assertPoint(t *testing.T, wantX, wantY float64, got geom.Point3) {
	t.Helper()
	assert.InDelta(t, wantX, got.X, 1e-9)
	assert.InDelta(t, wantY, got.Y, 1e-9)
}

func TestAutoFitFramesBoundsPlusPadding(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 0, 1)
	s.node("b", 1, 0)
	s.node("c", -1, 0)

	s.cam.PushView(s.g)
	m := s.cam.Metrics()
	assertPoint(t, -1, 0, m.Lo)
	assertPoint(t, 1, 1, m.Hi)
	assert.InDelta(t, 100, m.RatioPx2Gu, 1e-9)

	// Corners land exactly on the 30px padding.
	assertPoint(t, 30, 130, s.cam.TransformGUToPX(geom.Pt(-1, 0, 0)))
	assertPoint(t, 230, 30, s.cam.TransformGUToPX(geom.Pt(1, 1, 0)))
	auto := m.Transform

	s.cam.SetViewCenter(5, 5, 0)
	assert.False(t, s.cam.AutoFit())
	s.cam.PushView(s.g)
	assert.NotEqual(t, auto, s.cam.Metrics().Transform)

	s.cam.SetAutoFitView(true)
	s.cam.PushView(s.g)
	assertMatrix(t, auto, s.cam.Metrics().Transform)
}

func TestUserModeCapturesFraming(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 0, 0)
	s.node("b", 4, 2)
	s.cam.PushView(s.g)
	auto := s.cam.Metrics().Transform

	s.cam.SetViewRotation(0)
	assert.False(t, s.cam.AutoFit())
	assertPoint(t, 2, 1, s.cam.ViewCenter())
	assert.Equal(t, 1.0, s.cam.ViewPercent())
	s.cam.PushView(s.g)
	assertMatrix(t, auto, s.cam.Metrics().Transform)

	s.cam.SetViewPercent(0.5)
	s.cam.PushView(s.g)
	assert.InDelta(t, 2*s.cam.fitRatio(s.g.GraphStyle(), geom.Box{Hi: geom.Pt(4, 2, 0)}), s.cam.Metrics().RatioPx2Gu, 1e-9)

	s.cam.SetViewPercent(-1)
	assert.Equal(t, 0.5, s.cam.ViewPercent())

	s.cam.ResetView()
	assert.True(t, s.cam.AutoFit())
	s.cam.PushView(s.g)
	assertMatrix(t, auto, s.cam.Metrics().Transform)
}

func TestPixelRoundTrip(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", -3, 2)
	s.node("b", 7, -1)
	s.cam.SetViewRotation(30)
	s.cam.SetViewPercent(0.7)
	s.cam.PushView(s.g)

	p := geom.Pt(1.25, -0.5, 0)
	px := s.cam.TransformGUToPX(p)
	back := s.cam.TransformPXToGU(px.X, px.Y)
	assertPoint(t, p.X, p.Y, back)
}

func TestCenterNodeVisibleInBothModes(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 0, 0)
	s.node("b", 2, 2)
	s.node("mid", 1, 1)

	s.cam.PushView(s.g)
	mid := s.g.Node("mid")
	assertPoint(t, 130, 80, s.cam.TransformGUToPX(mid.Center()))
	assert.True(t, s.cam.IsVisible(mid))

	s.cam.SetViewPercent(1)
	s.cam.PushView(s.g)
	assert.False(t, s.cam.AutoFit())
	assert.True(t, s.cam.IsVisible(mid))
}

func TestEdgeCulledWhenBothEndpointsCulled(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", -10, 0)
	s.node("b", 10, 0)
	s.node("c", 0, 0)
	s.src.AddEdge("ab", "a", "b", false)
	s.src.AddEdge("ac", "a", "c", false)

	s.cam.SetViewCenter(0, 0, 0)
	s.cam.SetViewPercent(0.1)
	s.cam.PushView(s.g)

	assert.False(t, s.cam.IsVisible(s.g.Node("a")))
	assert.False(t, s.cam.IsVisible(s.g.Node("b")))
	assert.True(t, s.cam.IsVisible(s.g.Node("c")))
	// ab crosses the middle of the viewport but both ends are off screen.
	assert.False(t, s.cam.IsVisible(s.g.Edge("ab")))
	assert.True(t, s.cam.IsVisible(s.g.Edge("ac")))

	s.cam.SetAutoFitView(true)
	s.cam.PushView(s.g)
	assert.True(t, s.cam.IsVisible(s.g.Edge("ab")))
}

func TestSpriteVisibilityFollowsAttachment(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", -10, 0)
	s.node("b", 10, 0)
	s.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.tag", []any{0.0, 0.0, 0.0})
	s.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.tag.ui.attach", "a")
	s.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.free", []any{0.0, 0.0, 0.0})

	s.cam.SetViewCenter(0, 0, 0)
	s.cam.SetViewPercent(0.1)
	s.cam.PushView(s.g)
	assert.False(t, s.cam.IsVisible(s.g.Sprite("tag")))
	assert.True(t, s.cam.IsVisible(s.g.Sprite("free")))
}

func TestHiddenAndStyleVisibility(t *testing.T) {
	sheet, err := style.Parse([]byte(`
[[rules]]
selector = "node#ghost"
visibility-mode = "hidden"
`), style.FormatTOML)
	require.NoError(t, err)
	s := newScene(t, sheet)
	s.node("a", 0, 0)
	s.node("ghost", 1, 1)
	s.src.AddNode("floating")
	s.cam.PushView(s.g)

	assert.True(t, s.cam.IsVisible(s.g.Node("a")))
	assert.False(t, s.cam.IsVisible(s.g.Node("ghost")))
	assert.False(t, s.cam.IsVisible(s.g.Node("floating")))

	s.src.SetAttribute(stream.TargetNode, "a", "ui.hide", true)
	assert.False(t, s.cam.IsVisible(s.g.Node("a")))
}

func TestHitTesting(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 0, 1)
	s.node("b", 1, 0)
	s.node("c", -1, 0)
	s.cam.PushView(s.g)

	hit := s.cam.FindNodeOrSpriteAt(s.g, 230, 130)
	require.NotNil(t, hit)
	assert.Equal(t, "b", hit.ID())
	assert.Nil(t, s.cam.FindNodeOrSpriteAt(s.g, 0, 0))

	in := s.cam.AllNodesOrSpritesIn(s.g, 130, 160, 0, 0)
	ids := make([]string, len(in))
	for i, e := range in {
		ids[i] = e.ID()
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestGraphViewport(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 0, 0)
	s.node("b", 100, 100)

	s.cam.SetGraphViewport(10, 10, 20, 20)
	s.cam.PushView(s.g)
	r, ok := s.cam.GraphViewport()
	require.True(t, ok)
	assertPoint(t, 15, 15, r.Center())
	assertPoint(t, 130, 80, s.cam.TransformGUToPX(geom.Pt(15, 15, 0)))
	assert.InDelta(t, 10, s.cam.Metrics().RatioPx2Gu, 1e-9)

	s.cam.RemoveGraphViewport()
	_, ok = s.cam.GraphViewport()
	assert.False(t, ok)
	assert.False(t, s.cam.AutoFit())
}

func TestChangedFlag(t *testing.T) {
	s := newScene(t, nil)
	assert.True(t, s.cam.Changed())
	s.cam.ResetChanged()

	s.cam.SetViewport(260, 160)
	assert.False(t, s.cam.Changed())
	s.cam.SetViewport(300, 160)
	assert.True(t, s.cam.Changed())
	s.cam.ResetChanged()

	s.cam.SetViewport(0, 10)
	assert.False(t, s.cam.Changed())
	s.cam.SetViewCenter(1, 1, 0)
	assert.True(t, s.cam.Changed())
}

func TestUserModeBeforeFirstFrameKeepsFraming(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 10, 10)
	s.node("b", 12, 12)

	s.cam.SetViewPercent(1)
	assert.False(t, s.cam.AutoFit())
	s.cam.PushView(s.g)

	assertPoint(t, 11, 11, s.cam.ViewCenter())
	assertPoint(t, 130, 80, s.cam.TransformGUToPX(geom.Pt(11, 11, 0)))
	assert.True(t, s.cam.IsVisible(s.g.Node("a")))
	assert.True(t, s.cam.IsVisible(s.g.Node("b")))

	// The captured center stays put when the graph grows.
	s.node("c", 20, 20)
	s.cam.PushView(s.g)
	assertPoint(t, 11, 11, s.cam.ViewCenter())
}

func TestExplicitCenterBeforeFirstFrame(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 10, 10)
	s.node("b", 12, 12)

	s.cam.SetViewPercent(0.5)
	s.cam.SetViewCenter(12, 12, 0)
	s.cam.PushView(s.g)
	assertPoint(t, 12, 12, s.cam.ViewCenter())
	assertPoint(t, 130, 80, s.cam.TransformGUToPX(geom.Pt(12, 12, 0)))
}

func TestAutoFitDropsGraphViewport(t *testing.T) {
	s := newScene(t, nil)
	s.node("a", 0, 0)
	s.node("b", 100, 100)
	s.cam.PushView(s.g)
	auto := s.cam.Metrics().Transform

	s.cam.SetGraphViewport(10, 10, 20, 20)
	s.cam.SetAutoFitView(true)
	_, ok := s.cam.GraphViewport()
	assert.False(t, ok)

	s.cam.SetViewPercent(1)
	s.cam.PushView(s.g)
	assertMatrix(t, auto, s.cam.Metrics().Transform)
}
