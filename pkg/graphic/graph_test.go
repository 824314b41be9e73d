package graphic

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/metrics"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/style"
)

type fixture struct {
	g    *Graph
	src  *stream.Source
	logs *bytes.Buffer
}

func newFixture(t *testing.T, sheet *style.StyleSheet) *fixture {
	t.Helper()
	var buf bytes.Buffer
	g := New(Options{Logger: log.New(&buf), StyleSheet: sheet})
	src := stream.NewSource("upstream")
	src.AddSink(g)
	return &fixture{g: g, src: src, logs: &buf}
}

func (f *fixture) node(id string, x, y, z float64) {
	f.src.AddNode(id)
	f.src.SetAttribute(stream.TargetNode, id, "xyz", []any{x, y, z})
}

func approx(t *testing.T, want, got geom.Point3) {
	t.Helper()
	const eps = 1e-9
	if math.Abs(want.X-got.X) > eps || math.Abs(want.Y-got.Y) > eps || math.Abs(want.Z-got.Z) > eps {
		t.Errorf("point = %+v, want %+v", got, want)
	}
}

func TestComputeBounds(t *testing.T) {
	f := newFixture(t, nil)
	f.node("a", 0, 1, 0)
	f.node("b", 1, 0, 0)
	f.node("c", -1, 0, 0)

	lo, hi := f.g.ComputeBounds()
	approx(t, geom.Pt(-1, 0, 0), lo)
	approx(t, geom.Pt(1, 1, 0), hi)
	assert.False(t, f.g.BoundsChanged())

	f.src.SetAttribute(stream.TargetNode, "a", "ui.hide", true)
	assert.True(t, f.g.BoundsChanged())
	lo, hi = f.g.ComputeBounds()
	approx(t, geom.Pt(-1, -1, 0), lo)
	approx(t, geom.Pt(1, 1, 0), hi)
}

func TestComputeBoundsDegenerate(t *testing.T) {
	f := newFixture(t, nil)
	lo, hi := f.g.ComputeBounds()
	approx(t, geom.Pt(-1, -1, 0), lo)
	approx(t, geom.Pt(1, 1, 0), hi)

	f.node("a", 5, 5, 2)
	f.src.AddNode("unplaced")
	lo, hi = f.g.ComputeBounds()
	approx(t, geom.Pt(4, 4, 2), lo)
	approx(t, geom.Pt(6, 6, 2), hi)

	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", []any{9.0, 5.0, 2.0})
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.p", "100,100,0 px")
	lo, hi = f.g.ComputeBounds()
	approx(t, geom.Pt(5, 4, 2), lo)
	approx(t, geom.Pt(9, 6, 2), hi)
}

func TestDuplicateEventsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	e := f.src.AddNode("a")
	f.g.ResetGraphChanged()

	f.g.Handle(e)
	assert.Equal(t, 1, f.g.NodeCount())
	assert.False(t, f.g.GraphChanged())
	assert.Empty(t, f.logs.String())

	// Same time id from another source is new.
	e.SourceID = "other"
	f.g.Handle(e)
	assert.Contains(t, f.logs.String(), "already exists")
}

func TestAttributeFilter(t *testing.T) {
	f := newFixture(t, nil)
	f.src.AddNode("a")
	f.src.SetAttribute(stream.TargetNode, "a", "weight", 3)
	f.src.SetAttribute(stream.TargetNode, "a", "ui.tooltip", "hi")
	f.src.SetAttribute(stream.TargetNode, "a", "label", "Alpha")
	f.src.SetAttribute(stream.TargetGraph, "", "title", "ignored")
	f.src.SetAttribute(stream.TargetGraph, "", "ui.title", "kept")

	n := f.g.Node("a")
	_, ok := n.Attribute("weight")
	assert.False(t, ok)
	v, ok := n.Attribute("ui.tooltip")
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
	assert.Equal(t, "Alpha", n.Label())
	assert.Equal(t, []string{"label", "ui.tooltip"}, n.AttributeKeys())

	_, ok = f.g.Attribute("title")
	assert.False(t, ok)
	_, ok = f.g.Attribute("ui.title")
	assert.True(t, ok)
}

func TestClassify(t *testing.T) {
	c := newClassifier()
	tests := []struct {
		key  string
		want attrKind
	}{
		{"x", attrX},
		{"xyz", attrXYZ},
		{"ui.label", attrLabel},
		{"stylesheet", attrStyleSheet},
		{"ui.sprite.s", attrSprite},
		{"ui.sprite.s.ui.attach", attrSpriteSub},
		{"ui.sprite.", attrUI},
		{"ui.anything", attrUI},
		{"weight", attrIgnored},
		{"uix", attrIgnored},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.classify(tt.key), tt.key)
		assert.Equal(t, tt.want, c.classify(tt.key), "memoized %s", tt.key)
	}
}

func TestNodeAttachedSprite(t *testing.T) {
	f := newFixture(t, nil)
	f.node("n", 50, 0, 0)
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", []any{2.0, 0.0, 0.0})
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s.ui.attach", "n")

	m := metrics.New()
	s := f.g.Sprite("s")
	require.NotNil(t, s)
	require.NotNil(t, s.AttachedNode())
	approx(t, geom.Pt(52, 0, 0), s.Skeleton().Position(m))

	f.src.SetAttribute(stream.TargetNode, "n", "xy", []any{10.0, 10.0})
	approx(t, geom.Pt(12, 10, 0), s.Skeleton().Position(m))

	f.src.RemoveAttribute(stream.TargetGraph, "", "ui.sprite.s.ui.attach")
	assert.Nil(t, s.Attachment())
	approx(t, geom.Pt(2, 0, 0), s.Skeleton().Position(m))
}

func TestMalformedSpritePositionKeepsLast(t *testing.T) {
	f := newFixture(t, nil)
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", []any{1.0, 2.0, 3.0})

	for _, bad := range []any{"nope", []any{1.0, 2.0}, []any{1.0, 2.0, 3.0, 4.0}, map[string]any{}} {
		f.logs.Reset()
		f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", bad)
		assert.Contains(t, f.logs.String(), "INVALID_SPRITE_POSITION", "%v", bad)
		assert.Equal(t, []float64{1, 2, 3}, f.g.Sprite("s").Offset().Numbers)
	}

	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", []any{"px", 4.0, 5.0, 6.0})
	assert.Equal(t, style.Vals(style.PX, 4, 5, 6), f.g.Sprite("s").Offset())
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", 7)
	assert.Equal(t, []float64{7, 0, 0}, f.g.Sprite("s").Offset().Numbers)

	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.fresh", "bad")
	require.NotNil(t, f.g.Sprite("fresh"))
	assert.Equal(t, []float64{0, 0, 0}, f.g.Sprite("fresh").Offset().Numbers)

	f.src.RemoveAttribute(stream.TargetGraph, "", "ui.sprite.s")
	assert.Nil(t, f.g.Sprite("s"))
}

func TestDynamicAttributesMoveBetweenPartitions(t *testing.T) {
	f := newFixture(t, nil)
	f.src.AddNode("a")
	n := f.g.Node("a")
	grp := f.g.Styles().GroupOf(n)

	f.src.SetAttribute(stream.TargetNode, "a", "ui.color", 0.5)
	assert.True(t, grp.IsDynamic(n))
	f.src.SetAttribute(stream.TargetNode, "a", "ui.size", 3)
	f.src.RemoveAttribute(stream.TargetNode, "a", "ui.color")
	assert.True(t, grp.IsDynamic(n))
	f.src.RemoveAttribute(stream.TargetNode, "a", "ui.size")
	assert.False(t, grp.IsDynamic(n))
	assert.Equal(t, 1, grp.BulkLen())
}

func TestInteractionEvents(t *testing.T) {
	f := newFixture(t, nil)
	f.src.AddNode("a")
	n := f.g.Node("a")
	grp := f.g.Styles().GroupOf(n)

	f.src.SetAttribute(stream.TargetNode, "a", "ui.selected", nil)
	f.src.SetAttribute(stream.TargetNode, "a", "ui.clicked", true)
	assert.Equal(t, []string{"selected", "clicked"}, grp.Events(n))
	assert.Equal(t, []string{"selected", "clicked"}, n.Style().Events)

	f.src.RemoveAttribute(stream.TargetNode, "a", "ui.clicked")
	assert.Equal(t, []string{"selected"}, grp.Events(n))
	f.src.SetAttribute(stream.TargetNode, "a", "ui.selected", false)
	assert.False(t, grp.HasEvents(n))
}

func TestClassRegroups(t *testing.T) {
	sheet, err := style.Parse([]byte(`
[[rules]]
selector = "node.big"
size = "20px"
`), style.FormatTOML)
	require.NoError(t, err)

	f := newFixture(t, sheet)
	f.src.AddNode("a")
	f.src.AddNode("b")
	a := f.g.Node("a")
	m := metrics.New()
	small := a.Skeleton().SizePX(m)

	f.src.SetAttribute(stream.TargetNode, "a", "ui.color", "red")
	f.src.SetAttribute(stream.TargetNode, "a", "ui.class", "big")
	grp := f.g.Styles().GroupOf(a)
	assert.NotEqual(t, grp, f.g.Styles().GroupOf(f.g.Node("b")))
	assert.True(t, grp.IsDynamic(a))
	assert.Equal(t, 20.0, a.Skeleton().SizePX(m).X)
	assert.NotEqual(t, small, a.Skeleton().SizePX(m))

	f.src.RemoveAttribute(stream.TargetNode, "a", "ui.class")
	assert.Equal(t, f.g.Styles().GroupOf(f.g.Node("b")), f.g.Styles().GroupOf(a))
	assert.Equal(t, 1, f.g.Styles().Len())
}

func TestMultiEdges(t *testing.T) {
	f := newFixture(t, nil)
	f.node("a", 0, 0, 0)
	f.node("b", 1, 0, 0)
	f.src.AddEdge("ab", "a", "b", true)
	f.src.AddEdge("ba", "b", "a", true)
	f.src.AddEdge("ab2", "a", "b", false)

	for i, id := range []string{"ab", "ba", "ab2"} {
		idx, n := f.g.Edge(id).Multi()
		assert.Equal(t, i, idx, id)
		assert.Equal(t, 3, n, id)
	}
	assert.Len(t, f.g.EdgesBetween("b", "a"), 3)
	assert.Equal(t, 3, f.g.Node("a").Degree())

	f.src.RemoveEdge("ab")
	idx, n := f.g.Edge("ab2").Multi()
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, n)
}

func TestRemoveNodeCascades(t *testing.T) {
	f := newFixture(t, nil)
	f.node("a", 0, 0, 0)
	f.node("b", 1, 0, 0)
	f.src.AddEdge("ab", "a", "b", false)
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", 0.5)
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s.ui.attach", "ab")
	require.NotNil(t, f.g.Sprite("s").AttachedEdge())

	f.src.RemoveNode("a")
	assert.Nil(t, f.g.Edge("ab"))
	assert.Equal(t, 0, f.g.Node("b").Degree())
	assert.Nil(t, f.g.Sprite("s").Attachment())
	_, ok := f.g.Sprite("s").Attribute("ui.attach")
	assert.False(t, ok)
}

func TestUnknownElementsAreLogged(t *testing.T) {
	f := newFixture(t, nil)
	f.src.AddEdge("e", "x", "y", false)
	f.src.SetAttribute(stream.TargetNode, "ghost", "label", "x")
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s.ui.attach", "nowhere")

	out := f.logs.String()
	assert.Contains(t, out, "NOT_FOUND_ELEMENT")
	assert.Equal(t, 0, f.g.EdgeCount())
}

func TestWritesAreEmitted(t *testing.T) {
	f := newFixture(t, nil)
	f.node("a", 0, 0, 0)

	var got []stream.Event
	f.g.Source().AddSink(stream.SinkFunc(func(e stream.Event) { got = append(got, e) }))
	require.NoError(t, f.g.MoveNode("a", 3, 4, 0))
	require.NoError(t, f.g.SetAttribute(stream.TargetNode, "a", "ui.clicked", true))

	require.Len(t, got, 2)
	assert.Equal(t, f.g.Source().ID(), got[0].SourceID)
	assert.Equal(t, uint64(1), got[0].TimeID)
	assert.Equal(t, uint64(2), got[1].TimeID)
	approx(t, geom.Pt(3, 4, 0), f.g.Node("a").Center())

	// An echo of the graph's own write is not applied twice.
	f.g.ResetGraphChanged()
	f.g.Handle(got[0])
	assert.False(t, f.g.GraphChanged())

	assert.Error(t, f.g.AddEdge("e", "a", "missing", false))
	assert.Len(t, got, 2)
}

func TestStyleSheetAttribute(t *testing.T) {
	f := newFixture(t, nil)
	f.src.AddNode("a")
	m := metrics.New()
	a := f.g.Node("a")
	before := a.Skeleton().SizePX(m).X

	f.src.SetAttribute(stream.TargetGraph, "", "stylesheet", "[[rules]]\nselector = \"node\"\nsize = \"42px\"\n")
	assert.Equal(t, 42.0, a.Skeleton().SizePX(m).X)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s.yaml"), []byte("rules:\n  - selector: node\n    size: 7px\n"), 0o644))
	f.g.baseDir = dir
	f.src.SetAttribute(stream.TargetGraph, "", "ui.stylesheet", "url('s.yaml')")
	assert.Equal(t, 7.0, a.Skeleton().SizePX(m).X)

	f.logs.Reset()
	f.src.SetAttribute(stream.TargetGraph, "", "stylesheet", "url(missing.toml)")
	assert.Contains(t, f.logs.String(), "dropping event")
	assert.Equal(t, 7.0, a.Skeleton().SizePX(m).X)

	f.src.RemoveAttribute(stream.TargetGraph, "", "ui.stylesheet")
	assert.Equal(t, before, a.Skeleton().SizePX(m).X)
}

func TestGraphCleared(t *testing.T) {
	f := newFixture(t, nil)
	f.node("a", 0, 0, 0)
	f.node("b", 0, 0, 0)
	f.src.AddEdge("ab", "a", "b", false)
	f.src.SetAttribute(stream.TargetGraph, "", "ui.sprite.s", 1)
	f.src.SetAttribute(stream.TargetGraph, "", "ui.class", "dark")
	f.src.BeginStep(3)
	assert.Equal(t, 3.0, f.g.Step())

	f.src.Clear()
	assert.Equal(t, 0, f.g.NodeCount())
	assert.Equal(t, 0, f.g.EdgeCount())
	assert.Equal(t, 0, f.g.SpriteCount())
	assert.Equal(t, 0, f.g.Styles().Len())
	assert.Equal(t, 0.0, f.g.Step())
	_, ok := f.g.Attribute("ui.class")
	assert.False(t, ok)
}

func TestPositionAttributes(t *testing.T) {
	f := newFixture(t, nil)
	f.src.AddNode("a")
	a := f.g.Node("a")
	assert.False(t, a.Positioned())

	f.src.SetAttribute(stream.TargetNode, "a", "x", 2)
	f.src.SetAttribute(stream.TargetNode, "a", "y", "3")
	f.src.SetAttribute(stream.TargetNode, "a", "z", 1.5)
	assert.True(t, a.Positioned())
	approx(t, geom.Pt(2, 3, 1.5), a.Center())

	f.src.SetAttribute(stream.TargetNode, "a", "xy", []any{"bad"})
	assert.Contains(t, f.logs.String(), "INVALID_ATTRIBUTE")
	approx(t, geom.Pt(2, 3, 1.5), a.Center())
}
