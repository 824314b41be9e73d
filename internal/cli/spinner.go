package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// layoutSpinner animates a terminal line while Graphviz places nodes. The
// line names the node count and engine and shows the elapsed time.
type layoutSpinner struct {
	w      io.Writer
	nodes  int
	engine string
	start  time.Time
	now    func() time.Time

	mu      sync.Mutex
	width   int // printed width of the last line
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// startLayoutSpinner starts animating on w until finish is called or ctx is
// cancelled.
func startLayoutSpinner(ctx context.Context, w io.Writer, nodes int, engine string) *layoutSpinner {
	s := newLayoutSpinner(w, nodes, engine, time.Now)
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx, 80*time.Millisecond)
	return s
}

func newLayoutSpinner(w io.Writer, nodes int, engine string, now func() time.Time) *layoutSpinner {
	return &layoutSpinner{
		w:       w,
		nodes:   nodes,
		engine:  engine,
		start:   now(),
		now:     now,
		cancel:  func() {},
		stopped: make(chan struct{}),
	}
}

func (s *layoutSpinner) run(ctx context.Context, tick time.Duration) {
	defer close(s.stopped)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *layoutSpinner) message() string {
	return fmt.Sprintf("Placing %d nodes with %s (%s)", s.nodes, s.engine, s.elapsed())
}

func (s *layoutSpinner) elapsed() time.Duration {
	return s.now().Sub(s.start).Round(100 * time.Millisecond)
}

func (s *layoutSpinner) draw(frame string) {
	msg := s.message()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
	s.width = len([]rune(msg)) + 2
}

func (s *layoutSpinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// finish stops the animation and reports the outcome. Only the first call
// has any effect.
func (s *layoutSpinner) finish(placed int, err error) {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		if err != nil {
			printError("Layout with %s failed after %s", s.engine, s.elapsed())
			return
		}
		printDetail("Placed %d of %d nodes with %s in %s", placed, s.nodes, s.engine, s.elapsed())
	})
}
