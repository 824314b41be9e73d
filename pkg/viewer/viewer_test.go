package viewer

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/stream"
)

type countingHooks struct {
	observability.NoopFrameHooks
	mu      sync.Mutex
	skipped int
	frames  int
}

func (h *countingHooks) OnFrame(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames++
}

func (h *countingHooks) OnFrameSkipped(context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skipped++
}

func newViewer(t *testing.T) (*Viewer, *render.Recorder, *stream.Source) {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	rec := &render.Recorder{}
	v := New(Options{
		Logger:    logger,
		Graph:     graphic.New(graphic.Options{Logger: logger}),
		Camera:    camera.New(camera.Options{Logger: logger, Width: 200, Height: 100}),
		Backend:   rec,
		FrameRate: 200,
	})
	src := stream.NewSource("producer")
	src.AddSink(v.Buffer())
	return v, rec, src
}

func TestTickSkipsWhenNothingChanged(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetFrameHooks(hooks)
	t.Cleanup(observability.Reset)

	v, rec, src := newViewer(t)
	ctx := context.Background()

	drawn, err := v.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, drawn, "first frame is always drawn")

	drawn, err = v.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, drawn)
	assert.Equal(t, 1, rec.Frames)

	src.AddNode("a")
	src.SetAttribute(stream.TargetNode, "a", "xy", []any{1.0, 2.0})
	drawn, err = v.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, drawn)
	assert.Equal(t, 2, rec.Frames)
	assert.Equal(t, uint64(2), v.Frames())

	assert.Equal(t, 1, hooks.skipped)
	assert.Equal(t, 2, hooks.frames)
}

func TestEventsAppliedOnlyOnTick(t *testing.T) {
	v, _, src := newViewer(t)
	src.AddNode("a")
	src.SetAttribute(stream.TargetNode, "a", "xy", []any{1.0, 2.0})

	_ = v.Do(func(g *graphic.Graph, _ *camera.Camera) error {
		assert.Nil(t, g.Node("a"))
		return nil
	})
	assert.Equal(t, 2, v.Buffer().Len())

	_, err := v.Tick(context.Background())
	require.NoError(t, err)
	_ = v.Do(func(g *graphic.Graph, _ *camera.Camera) error {
		n := g.Node("a")
		require.NotNil(t, n)
		assert.True(t, n.Positioned())
		return nil
	})
}

func TestConcurrentProducers(t *testing.T) {
	v, _, _ := newViewer(t)
	const producers = 8
	var wg sync.WaitGroup
	for i := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src := stream.NewSource(string(rune('a' + i)))
			src.AddSink(v.Buffer())
			src.AddNode(string(rune('a' + i)))
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	wg.Wait()

	require.Eventually(t, func() bool {
		var n int
		_ = v.Do(func(g *graphic.Graph, _ *camera.Camera) error {
			n = g.NodeCount()
			return nil
		})
		return n == producers
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestDoMarksCameraChange(t *testing.T) {
	v, rec, _ := newViewer(t)
	ctx := context.Background()
	_, _ = v.Tick(ctx)

	require.NoError(t, v.Do(func(_ *graphic.Graph, cam *camera.Camera) error {
		cam.SetViewPercent(0.5)
		return nil
	}))
	drawn, err := v.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, drawn)
	assert.Equal(t, 2, rec.Frames)
}

func TestOnFrameListeners(t *testing.T) {
	v, _, src := newViewer(t)
	var seen []uint64
	remove := v.OnFrame(func(f Frame) { seen = append(seen, f.Seq) })

	ctx := context.Background()
	_, _ = v.Tick(ctx)
	src.AddNode("a")
	_, _ = v.Tick(ctx)
	remove()
	src.AddNode("b")
	_, _ = v.Tick(ctx)

	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestFrameRateDefault(t *testing.T) {
	v := New(Options{})
	assert.Equal(t, time.Second/DefaultFrameRate, v.Interval())
}
