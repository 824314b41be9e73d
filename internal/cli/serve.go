package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/graphview/pkg/buildinfo"
	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/viewer"
)

const (
	maxEventBody   = 1 << 20
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 4
	shutdownGrace  = 5 * time.Second
)

// serveCommand creates the HTTP server streaming live frames.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts    renderOpts
		listen  string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a live graph over HTTP",
		Long: `Serve a node-link graph document over HTTP.

  GET  /frame.svg   latest frame
  POST /events      apply graph events (JSON array)
  POST /view        change the camera
  GET  /ws          websocket stream of frames as SVG text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(&cfg)
			if listen != "" {
				cfg.Listen = listen
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			doc, err := stream.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := c.newScene(ctx, cfg, args[0], doc, sceneOpts{
				width:   float64(cfg.Width),
				height:  float64(cfg.Height),
				noCache: opts.noCache,
			})
			if err != nil {
				return err
			}

			svg := render.NewSVG(render.WithElementIDs())
			v := viewer.New(viewer.Options{
				Logger:    c.Logger,
				Graph:     s.graph,
				Camera:    s.cam,
				Renderer:  render.New(render.Options{Logger: c.Logger, NoShadows: opts.noShadows}),
				Backend:   svg,
				FrameRate: float64(cfg.FrameRate),
			})
			srv := newFrameServer(c, v, svg)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return ignoreCanceled(v.Run(ctx)) })
			g.Go(func() error { return srv.listen(ctx, cfg.Listen) })
			if !noWatch {
				l := &live{cli: c, cfg: cfg, docPath: args[0], scene: s, v: v}
				g.Go(func() error { return l.watch(ctx, nil) })
			}
			printSuccess("Serving %s", StyleLink.Render("http://"+cfg.Listen+"/frame.svg"))
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().IntVarP(&opts.width, "width", "W", 0, "viewport width in pixels")
	cmd.Flags().IntVarP(&opts.height, "height", "H", 0, "viewport height in pixels")
	cmd.Flags().StringVarP(&opts.styleSheet, "stylesheet", "s", "", "stylesheet document (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "Graphviz engine for nodes without a position")
	cmd.Flags().BoolVar(&opts.noShadows, "no-shadows", false, "skip shadows")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload files on change")

	return cmd
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// =============================================================================
// frameServer - HTTP surface of a viewer
// =============================================================================

// frameServer publishes the frames of a viewer and feeds HTTP edits into it.
type frameServer struct {
	cli    *CLI
	v      *viewer.Viewer
	source *stream.Source

	mu      sync.RWMutex
	latest  []byte
	clients map[chan []byte]struct{}
}

func newFrameServer(c *CLI, v *viewer.Viewer, svg *render.SVG) *frameServer {
	s := &frameServer{
		cli:     c,
		v:       v,
		source:  stream.NewSource(uuid.NewString()),
		clients: make(map[chan []byte]struct{}),
	}
	s.source.AddSink(v.Buffer())
	// Listeners run inside the critical section, so the SVG buffer is
	// stable while it is copied.
	v.OnFrame(func(viewer.Frame) {
		s.publish(append([]byte(nil), svg.Bytes()...))
	})
	return s
}

func (s *frameServer) publish(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = frame
	for ch := range s.clients {
		select {
		case ch <- frame:
		default:
			// Slow client: it will get a later frame.
		}
	}
}

func (s *frameServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/frame.svg", s.handleFrame)
	r.Post("/events", s.handleEvents)
	r.Post("/view", s.handleView)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "frames": s.v.Frames()})
	})
	return r
}

func (s *frameServer) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports requests to the HTTP hooks and the debug log.
func (s *frameServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.cli.Logger.Debug("http", "method", r.Method, "path", r.URL.Path, "status", status,
			"took", time.Since(start), "id", middleware.GetReqID(r.Context()))
	})
}

func (s *frameServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	frame := s.latest
	s.mu.RUnlock()
	if frame == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no frame drawn yet"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(frame)
}

func (s *frameServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	var batch []wireEvent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err := dec.Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode events: %w", err))
		return
	}
	for i, e := range batch {
		if err := e.validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("event %d: %w", i, err))
			return
		}
	}
	for _, e := range batch {
		e.emit(s.source)
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(batch)})
}

// viewRequest changes the camera. Reset wins over the other fields.
type viewRequest struct {
	Reset    bool      `json:"reset"`
	Center   []float64 `json:"center"`
	Percent  float64   `json:"percent"`
	Rotation *float64  `json:"rotation"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
}

func (s *frameServer) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode view: %w", err))
		return
	}
	if n := len(req.Center); n != 0 && n != 2 && n != 3 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("center needs 2 or 3 components, got %d", n))
		return
	}

	var state map[string]any
	_ = s.v.Do(func(_ *graphic.Graph, cam *camera.Camera) error {
		applyViewRequest(cam, req)
		c := cam.ViewCenter()
		state = map[string]any{
			"auto_fit": cam.AutoFit(),
			"center":   []float64{c.X, c.Y, c.Z},
			"percent":  cam.ViewPercent(),
			"rotation": cam.Rotation(),
		}
		return nil
	})
	writeJSON(w, http.StatusOK, state)
}

func applyViewRequest(cam *camera.Camera, req viewRequest) {
	if req.Width > 0 && req.Height > 0 {
		cam.SetViewport(req.Width, req.Height)
	}
	if req.Reset {
		cam.ResetView()
		return
	}
	if len(req.Center) >= 2 {
		z := 0.0
		if len(req.Center) == 3 {
			z = req.Center[2]
		}
		cam.SetViewCenter(req.Center[0], req.Center[1], z)
	}
	if req.Percent > 0 {
		cam.SetViewPercent(req.Percent)
	}
	if req.Rotation != nil {
		cam.SetViewRotation(*req.Rotation)
	}
}

func (s *frameServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.cli.Logger.Debug("websocket accept", "err", err)
		return
	}
	defer conn.CloseNow()

	ch := make(chan []byte, wsSendBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	latest := s.latest
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	// Clients only listen; CloseRead handles their close frames.
	ctx := conn.CloseRead(r.Context())
	if latest != nil {
		if err := s.send(ctx, conn, latest); err != nil {
			return
		}
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case frame := <-ch:
			if err := s.send(ctx, conn, frame); err != nil {
				s.cli.Logger.Debug("websocket write", "err", err)
				return
			}
		}
	}
}

func (s *frameServer) send(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
