// Package viewer schedules render passes for a live graph.
//
// A Viewer owns the single critical section in which upstream events are
// applied, the camera is changed and frames are drawn. Upstream producers on
// other goroutines send events into [Viewer.Buffer]; each [Viewer.Tick]
// flushes the buffer in arrival order and draws a frame only if the graph or
// the camera changed. Interaction and remote view commands enter the same
// section through [Viewer.Do].
package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/stream"
)

// DefaultFrameRate is used when Options.FrameRate is not positive.
const DefaultFrameRate = 30

// Options configures a Viewer. Graph, Camera and Backend are required.
type Options struct {
	Logger    *log.Logger
	Graph     *graphic.Graph
	Camera    *camera.Camera
	Renderer  *render.Renderer
	Backend   render.Backend
	FrameRate float64
}

// Frame describes a drawn frame. Listeners run inside the critical section,
// so they may read the backend output directly.
type Frame struct {
	Seq   uint64
	Stats render.Stats
	Err   error
}

// Viewer drives frames for one graph, camera and backend.
type Viewer struct {
	mu  sync.Mutex
	log *log.Logger

	g   *graphic.Graph
	cam *camera.Camera
	r   *render.Renderer
	b   render.Backend
	buf *stream.Buffer

	interval  time.Duration
	seq       uint64
	listeners map[int]func(Frame)
	nextID    int
}

// New creates a Viewer. The graph receives upstream events through the
// returned viewer's Buffer.
func New(opts Options) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	r := opts.Renderer
	if r == nil {
		r = render.New(render.Options{Logger: logger})
	}
	rate := opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return &Viewer{
		log:       logger,
		g:         opts.Graph,
		cam:       opts.Camera,
		r:         r,
		b:         opts.Backend,
		buf:       stream.NewBuffer(),
		interval:  time.Duration(float64(time.Second) / rate),
		listeners: make(map[int]func(Frame)),
	}
}

// Buffer is the thread-safe sink for upstream events.
func (v *Viewer) Buffer() *stream.Buffer { return v.buf }

// Interval returns the time between ticks in Run.
func (v *Viewer) Interval() time.Duration { return v.interval }

// Frames returns the number of frames drawn so far.
func (v *Viewer) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.seq
}

// Tick applies pending events and draws a frame if anything changed. It
// reports whether a frame was drawn. A frame with element errors is still
// drawn; the first error is returned.
func (v *Viewer) Tick(ctx context.Context) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if n := v.buf.Flush(v.g); n > 0 {
		v.log.Debug("applied events", "count", n)
	}
	if !v.g.GraphChanged() && !v.cam.Changed() {
		observability.Frames().OnFrameSkipped(ctx)
		return false, nil
	}

	stats, err := v.r.Render(ctx, v.g, v.cam, v.b)
	if ctx.Err() != nil {
		return false, err
	}
	v.seq++
	f := Frame{Seq: v.seq, Stats: stats, Err: err}
	for _, fn := range v.listeners {
		fn(f)
	}
	return true, err
}

// Do runs fn inside the critical section. Use it for every graph or camera
// access from outside the rendering goroutine.
func (v *Viewer) Do(fn func(g *graphic.Graph, cam *camera.Camera) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fn(v.g, v.cam)
}

// OnFrame registers fn to run after every drawn frame and returns a function
// that removes it.
func (v *Viewer) OnFrame(fn func(Frame)) (remove func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}

// Run ticks at the frame rate until ctx is cancelled. Frame errors are
// logged and do not stop the loop.
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	v.log.Debug("viewer started", "interval", v.interval)
	for {
		if _, err := v.Tick(ctx); err != nil && ctx.Err() == nil {
			v.log.Warn("frame error", "err", err)
		}
		select {
		case <-ctx.Done():
			v.log.Debug("viewer stopped", "frames", v.Frames())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
