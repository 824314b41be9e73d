package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func TestLayoutSpinnerMessage(t *testing.T) {
	tests := []struct {
		name   string
		nodes  int
		engine string
		step   time.Duration
		want   string
	}{
		{"first tick", 12, "dot", 0, "Placing 12 nodes with dot (0s)"},
		{"rounded", 3, "neato", 1240 * time.Millisecond, "Placing 3 nodes with neato (1.2s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := &fakeClock{t: time.Unix(0, 0), step: tt.step}
			s := newLayoutSpinner(&syncBuffer{}, tt.nodes, tt.engine, clk.now)
			if got := s.message(); got != tt.want {
				t.Errorf("message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutSpinnerDrawAndClear(t *testing.T) {
	var out syncBuffer
	s := newLayoutSpinner(&out, 5, "dot", time.Now)
	s.draw(spinnerFrames[0])
	if !strings.Contains(out.String(), "Placing 5 nodes with dot") {
		t.Errorf("output %q should name the node count and engine", out.String())
	}
	s.clear()
	if !strings.HasSuffix(out.String(), "\r") {
		t.Errorf("clear should return the cursor, got %q", out.String())
	}
	n := len(out.String())
	s.clear()
	if len(out.String()) != n {
		t.Error("clearing an empty line should write nothing")
	}
}

func TestLayoutSpinnerAnimates(t *testing.T) {
	var out syncBuffer
	s := startLayoutSpinner(context.Background(), &out, 7, "fdp")
	time.Sleep(200 * time.Millisecond)
	s.finish(7, nil)

	if !strings.Contains(out.String(), "Placing 7 nodes with fdp") {
		t.Errorf("spinner output %q should contain the message", out.String())
	}
}

func TestLayoutSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startLayoutSpinner(ctx, &syncBuffer{}, 1, "dot")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after context cancellation")
	}
	s.finish(0, context.Canceled)
}

func TestLayoutSpinnerFinishIsIdempotent(t *testing.T) {
	s := startLayoutSpinner(context.Background(), &syncBuffer{}, 2, "dot")
	s.finish(2, nil)
	s.finish(2, nil)
	s.finish(0, context.Canceled)
}
