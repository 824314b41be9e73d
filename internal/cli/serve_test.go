package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/viewer"
)

// newTestServer serves two positioned nodes a and b.
func newTestServer(t *testing.T) (*frameServer, *viewer.Viewer, http.Handler) {
	t.Helper()
	logger := log.New(io.Discard)
	g := graphic.New(graphic.Options{Logger: logger})
	for _, n := range []struct {
		id   string
		x, y float64
	}{{"a", 0, 0}, {"b", 1, 1}} {
		if err := g.AddNode(n.id); err != nil {
			t.Fatal(err)
		}
		if err := g.MoveNode(n.id, n.x, n.y, 0); err != nil {
			t.Fatal(err)
		}
	}
	cam := camera.New(camera.Options{Logger: logger, Width: 200, Height: 100})
	svg := render.NewSVG(render.WithElementIDs())
	v := viewer.New(viewer.Options{Logger: logger, Graph: g, Camera: cam, Backend: svg})
	s := newFrameServer(&CLI{Logger: logger}, v, svg)
	return s, v, s.routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tick(t *testing.T, v *viewer.Viewer) {
	t.Helper()
	if _, err := v.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
}

func TestFrameEndpoint(t *testing.T) {
	_, v, h := newTestServer(t)

	if rec := do(t, h, http.MethodGet, "/frame.svg", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before first frame: status = %d, want 503", rec.Code)
	}

	tick(t, v)
	rec := do(t, h, http.MethodGet, "/frame.svg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<svg") || !strings.Contains(body, `id="a"`) {
		t.Errorf("unexpected frame:\n%s", body)
	}
	if !strings.HasPrefix(rec.Header().Get("Server"), "graphview/") {
		t.Errorf("Server header = %q", rec.Header().Get("Server"))
	}
}

func TestEventsEndpoint(t *testing.T) {
	_, v, h := newTestServer(t)

	body := `[
		{"op": "add-node", "id": "c"},
		{"op": "set", "target": "node", "id": "c", "key": "xyz", "value": [2, 2, 0]},
		{"op": "add-edge", "id": "ac", "from": "a", "to": "c", "directed": true}
	]`
	rec := do(t, h, http.MethodPost, "/events", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if n := v.Buffer().Len(); n != 3 {
		t.Fatalf("buffered events = %d, want 3", n)
	}

	// Events reach the graph on the next tick only.
	tick(t, v)
	_ = v.Do(func(g *graphic.Graph, _ *camera.Camera) error {
		c := g.Node("c")
		if c == nil {
			t.Fatal("node c missing after tick")
		}
		if got := c.Center(); got.X != 2 || got.Y != 2 {
			t.Errorf("c at %v, want (2,2)", got)
		}
		if g.Edge("ac") == nil {
			t.Error("edge ac missing after tick")
		}
		return nil
	})
}

func TestEventsEndpointRejectsWholeBatch(t *testing.T) {
	_, v, h := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown op", `[{"op": "add-node", "id": "x"}, {"op": "explode"}]`},
		{"edge without endpoints", `[{"op": "add-edge", "id": "e"}]`},
		{"empty key", `[{"op": "set", "id": "a"}]`},
		{"bad target", `[{"op": "set", "target": "sprite", "id": "a", "key": "k"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/events", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if n := v.Buffer().Len(); n != 0 {
				t.Errorf("buffered events = %d, want 0", n)
			}
		})
	}
}

func TestViewEndpoint(t *testing.T) {
	_, v, h := newTestServer(t)
	tick(t, v)

	rec := do(t, h, http.MethodPost, "/view", `{"percent": 0.5, "center": [1, 1], "rotation": 90}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var state struct {
		AutoFit  bool      `json:"auto_fit"`
		Center   []float64 `json:"center"`
		Percent  float64   `json:"percent"`
		Rotation float64   `json:"rotation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.AutoFit || state.Percent != 0.5 || state.Rotation != 90 {
		t.Errorf("state = %+v", state)
	}
	if len(state.Center) != 3 || state.Center[0] != 1 || state.Center[1] != 1 {
		t.Errorf("center = %v", state.Center)
	}

	rec = do(t, h, http.MethodPost, "/view", `{"reset": true}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if !state.AutoFit || state.Percent != 1 || state.Rotation != 0 {
		t.Errorf("after reset: %+v", state)
	}

	if rec := do(t, h, http.MethodPost, "/view", `{"center": [1]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad center: status = %d, want 400", rec.Code)
	}
}

type countingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests  int
	responses []int
}

func (h *countingHTTPHooks) OnRequest(context.Context, string, string) { h.requests++ }

func (h *countingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.responses = append(h.responses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &countingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	_, _, h := newTestServer(t)
	do(t, h, http.MethodGet, "/healthz", "")
	do(t, h, http.MethodGet, "/frame.svg", "")

	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != http.StatusOK || hooks.responses[1] != http.StatusServiceUnavailable {
		t.Errorf("responses = %v", hooks.responses)
	}
}

func TestWebsocketStreamsFrames(t *testing.T) {
	_, v, h := newTestServer(t)
	tick(t, v)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	// The latest frame is sent on connect.
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if typ != websocket.MessageText || !strings.HasPrefix(string(data), "<svg") {
		t.Errorf("first message = %v %.40q", typ, data)
	}

	// A camera change draws and pushes a new frame.
	_ = v.Do(func(_ *graphic.Graph, cam *camera.Camera) error {
		cam.SetViewPercent(0.5)
		return nil
	})
	tick(t, v)
	if _, data, err = conn.Read(ctx); err != nil {
		t.Fatalf("Read after tick: %v", err)
	}
	if !strings.Contains(string(data), "</svg>") {
		t.Errorf("second frame incomplete: %.60q", data)
	}
}
