package cli

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/interact"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/viewer"
)

func newTestViewModel(t *testing.T) (viewModel, *viewer.Viewer) {
	t.Helper()
	logger := log.New(io.Discard)
	g := graphic.New(graphic.Options{Logger: logger})
	for _, id := range []string{"a", "b"} {
		if err := g.AddNode(id); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.MoveNode("a", 0, 0, 0)
	_ = g.MoveNode("b", 4, 2, 0)

	w, h := render.Viewport(40, 20)
	cam := camera.New(camera.Options{Logger: logger, Width: w, Height: h})
	term := render.NewTerminal(render.WithoutColor())
	v := viewer.New(viewer.Options{Logger: logger, Graph: g, Camera: cam, Backend: term})
	m := newViewModel(context.Background(), v, term, interact.New(g, cam, logger))

	next, _ := m.Update(tickMsg{})
	return next.(viewModel), v
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func cameraState(v *viewer.Viewer) (autoFit bool, percent float64, center [2]float64) {
	_ = v.Do(func(_ *graphic.Graph, cam *camera.Camera) error {
		c := cam.ViewCenter()
		autoFit, percent, center = cam.AutoFit(), cam.ViewPercent(), [2]float64{c.X, c.Y}
		return nil
	})
	return
}

func TestViewModelTickDrawsFrame(t *testing.T) {
	m, v := newTestViewModel(t)
	if m.frame == "" {
		t.Fatal("no frame after first tick")
	}
	if v.Frames() != 1 {
		t.Errorf("frames = %d, want 1", v.Frames())
	}
}

func TestViewModelZoomAndReset(t *testing.T) {
	m, v := newTestViewModel(t)

	next, _ := m.Update(keyMsg("+"))
	if autoFit, percent, _ := cameraState(v); autoFit || percent != zoomFactor {
		t.Errorf("after zoom: autoFit=%v percent=%v", autoFit, percent)
	}

	next.Update(keyMsg("0"))
	if autoFit, percent, _ := cameraState(v); !autoFit || percent != 1 {
		t.Errorf("after reset: autoFit=%v percent=%v", autoFit, percent)
	}
}

func TestViewModelPan(t *testing.T) {
	m, v := newTestViewModel(t)
	_, _, before := cameraState(v)

	m.Update(keyMsg("l"))
	_, _, after := cameraState(v)
	if after[0] <= before[0] {
		t.Errorf("pan right moved center from %v to %v", before, after)
	}
	if math.Abs(after[1]-before[1]) > 1e-9 {
		t.Errorf("pan right changed y: %v -> %v", before[1], after[1])
	}
}

func TestViewModelQuit(t *testing.T) {
	m, _ := newTestViewModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q command = %T, want tea.QuitMsg", cmd())
	}
}

func TestViewModelStatusLine(t *testing.T) {
	m, _ := newTestViewModel(t)
	next, _ := m.Update(statusMsg("reloaded graph.json"))
	if got := next.View(); !containsAll(got, "q quit", "reloaded graph.json") {
		t.Errorf("status line missing:\n%s", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
