package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/interact"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/viewer"
)

// View controls.
const (
	panCells    = 4
	zoomFactor  = 0.8
	rotateStep  = 15.0
	statusLines = 1
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var opts renderOpts
	var noWatch, noColor bool

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "View a graph interactively in the terminal",
		Long: `View a node-link graph document in the terminal.

Keys: arrows/hjkl pan, +/- zoom, r/R rotate, 0 reset, q quit.
Click a node to drag it; drag on empty space to select, shift extends.
The document and stylesheet are reloaded when they change on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(&cfg)
			cfg.Renderer = "terminal"
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			doc, err := stream.ReadFile(args[0])
			if err != nil {
				return err
			}
			// The real size arrives with the first WindowSizeMsg.
			w, h := render.Viewport(80, 24-statusLines)
			s, err := c.newScene(ctx, cfg, args[0], doc, sceneOpts{width: w, height: h, noCache: opts.noCache})
			if err != nil {
				return err
			}

			var termOpts []render.TerminalOption
			if noColor {
				termOpts = append(termOpts, render.WithoutColor())
			}
			term := render.NewTerminal(termOpts...)
			v := viewer.New(viewer.Options{
				Logger:    c.Logger,
				Graph:     s.graph,
				Camera:    s.cam,
				Renderer:  render.New(render.Options{Logger: c.Logger, NoShadows: true}),
				Backend:   term,
				FrameRate: float64(cfg.FrameRate),
			})

			m := newViewModel(ctx, v, term, interact.New(s.graph, s.cam, c.Logger))
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx), tea.WithOutput(os.Stdout))

			if !noWatch {
				l := &live{cli: c, cfg: cfg, docPath: args[0], scene: s, v: v}
				go func() {
					if err := l.watch(ctx, func(msg string) { p.Send(statusMsg(msg)) }); err != nil {
						c.Logger.Warn("file watching disabled", "err", err)
					}
				}()
			}

			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.styleSheet, "stylesheet", "s", "", "stylesheet document (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "Graphviz engine for nodes without a position")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout cache")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload files on change")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "draw without colors")

	return cmd
}

// =============================================================================
// viewModel - bubbletea model around a viewer
// =============================================================================

type (
	tickMsg   time.Time
	statusMsg string
)

type viewModel struct {
	ctx   context.Context
	v     *viewer.Viewer
	term  *render.Terminal
	mouse *interact.MouseManager

	frame    string
	status   string
	selected int
	err      error
}

func newViewModel(ctx context.Context, v *viewer.Viewer, term *render.Terminal, mouse *interact.MouseManager) viewModel {
	return viewModel{ctx: ctx, v: v, term: term, mouse: mouse}
}

func (m viewModel) Init() tea.Cmd {
	return m.tick()
}

func (m viewModel) tick() tea.Cmd {
	return tea.Tick(m.v.Interval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		drawn, err := m.v.Tick(m.ctx)
		if drawn {
			m.frame = m.term.String()
		}
		m.err = err
		return m, m.tick()

	case statusMsg:
		m.status = string(msg)

	case tea.WindowSizeMsg:
		w, h := render.Viewport(msg.Width, max(1, msg.Height-statusLines))
		m.do(func(_ *graphic.Graph, cam *camera.Camera) { cam.SetViewport(w, h) })

	case tea.KeyMsg:
		return m.key(msg)

	case tea.MouseMsg:
		return m.mouseEvent(msg), nil
	}
	return m, nil
}

func (m viewModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.do(panBy(-panCells*render.CellWidth, 0))
	case "right", "l":
		m.do(panBy(panCells*render.CellWidth, 0))
	case "up", "k":
		m.do(panBy(0, -panCells*render.CellHeight))
	case "down", "j":
		m.do(panBy(0, panCells*render.CellHeight))
	case "+", "=":
		m.do(func(_ *graphic.Graph, cam *camera.Camera) { cam.SetViewPercent(cam.ViewPercent() * zoomFactor) })
	case "-", "_":
		m.do(func(_ *graphic.Graph, cam *camera.Camera) { cam.SetViewPercent(cam.ViewPercent() / zoomFactor) })
	case "r":
		m.do(func(_ *graphic.Graph, cam *camera.Camera) { cam.SetViewRotation(cam.Rotation() + rotateStep) })
	case "R":
		m.do(func(_ *graphic.Graph, cam *camera.Camera) { cam.SetViewRotation(cam.Rotation() - rotateStep) })
	case "0":
		m.do(func(_ *graphic.Graph, cam *camera.Camera) { cam.ResetView() })
	}
	return m, nil
}

// panBy moves the view center by a pixel offset, following the rotation.
func panBy(dx, dy float64) func(*graphic.Graph, *camera.Camera) {
	return func(_ *graphic.Graph, cam *camera.Camera) {
		w, h := cam.Viewport()
		p := cam.TransformPXToGU(w/2+dx, h/2+dy)
		cam.SetViewCenter(p.X, p.Y, cam.ViewCenter().Z)
	}
}

func (m viewModel) mouseEvent(msg tea.MouseMsg) viewModel {
	// Terminal cells map to the pixel at their center.
	x := (float64(msg.X) + 0.5) * render.CellWidth
	y := (float64(msg.Y) + 0.5) * render.CellHeight
	m.do(func(*graphic.Graph, *camera.Camera) {
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			m.mouse.Press(x, y, msg.Shift)
		case msg.Action == tea.MouseActionMotion:
			m.mouse.Drag(x, y)
		case msg.Action == tea.MouseActionRelease:
			m.mouse.Release(x, y)
		}
		m.selected = len(m.mouse.Selected())
	})
	return m
}

func (m viewModel) do(fn func(*graphic.Graph, *camera.Camera)) {
	_ = m.v.Do(func(g *graphic.Graph, cam *camera.Camera) error {
		fn(g, cam)
		return nil
	})
}

func (m viewModel) View() string {
	var b strings.Builder
	b.WriteString(m.frame)
	if !strings.HasSuffix(m.frame, "\n") {
		b.WriteString("\n")
	}

	line := StyleDim.Render("arrows pan · +/- zoom · r rotate · 0 reset · q quit")
	if m.selected > 0 {
		line += StyleDim.Render(" · ") + StyleHighlight.Render(fmt.Sprintf("%d selected", m.selected))
	}
	if m.status != "" {
		line += StyleDim.Render(" · ") + StyleSuccess.Render(m.status)
	}
	if m.err != nil {
		line += StyleDim.Render(" · ") + StyleWarning.Render(m.err.Error())
	}
	b.WriteString(line)
	return b.String()
}
