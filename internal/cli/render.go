package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/cache"
	"github.com/matzehuels/graphview/pkg/config"
	"github.com/matzehuels/graphview/pkg/render"
	"github.com/matzehuels/graphview/pkg/stream"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path, "-" for stdout
	width      int    // viewport width in pixels, overrides config
	height     int    // viewport height in pixels, overrides config
	styleSheet string // stylesheet document, overrides config
	layout     string // Graphviz engine for unpositioned nodes, overrides config
	title      string // SVG <title>
	ids        bool   // write element ids into the SVG
	noShadows  bool   // skip the shadow pass
	noCache    bool   // bypass layout and frame caches
}

// renderCommand creates the render command for writing one SVG frame.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a node-link graph document to SVG",
		Long: `Render a node-link JSON graph document to an SVG file.

Nodes without x/y are placed with Graphviz first. Frames and layouts are
cached, so rendering an unchanged document again is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg, - for stdout)")
	cmd.Flags().IntVarP(&opts.width, "width", "W", 0, "viewport width in pixels")
	cmd.Flags().IntVarP(&opts.height, "height", "H", 0, "viewport height in pixels")
	cmd.Flags().StringVarP(&opts.styleSheet, "stylesheet", "s", "", "stylesheet document (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "Graphviz engine for nodes without a position")
	cmd.Flags().StringVar(&opts.title, "title", "", "SVG title")
	cmd.Flags().BoolVar(&opts.ids, "ids", false, "write element ids into the SVG")
	cmd.Flags().BoolVar(&opts.noShadows, "no-shadows", false, "skip shadows")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the layout and frame caches")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (o renderOpts) apply(cfg *config.Config) {
	if o.width > 0 {
		cfg.Width = o.width
	}
	if o.height > 0 {
		cfg.Height = o.height
	}
	if o.styleSheet != "" {
		cfg.StyleSheet = o.styleSheet
	}
	if o.layout != "" {
		cfg.Layout = o.layout
	}
}

func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts renderOpts) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}

	store, keyer, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	key := keyer.FrameKey(cache.Hash(raw), frameKeyOpts(cfg, opts))
	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		c.Logger.Debug("frame cache hit", "key", key)
		return c.writeFrame(output, data, true)
	}

	doc, err := stream.Decode(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	s, err := c.newScene(ctx, cfg, input, doc, sceneOpts{
		width:   float64(cfg.Width),
		height:  float64(cfg.Height),
		noCache: opts.noCache,
	})
	if err != nil {
		return err
	}

	var svgOpts []render.SVGOption
	if opts.title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.title))
	}
	if opts.ids {
		svgOpts = append(svgOpts, render.WithElementIDs())
	}
	svg := render.NewSVG(svgOpts...)
	r := render.New(render.Options{Logger: c.Logger, NoShadows: opts.noShadows})

	prog := newProgress(c.Logger)
	stats, err := r.Render(ctx, s.graph, s.cam, svg)
	if err != nil {
		// Element errors leave a complete frame behind.
		if ctx.Err() != nil {
			return err
		}
		printWarning("Frame drawn with errors: %v", err)
	}
	prog.done(fmt.Sprintf("Rendered %d groups", stats.Groups))
	if output != "-" {
		defer printFrameStats(stats.Drawn, stats.Culled, stats.StylePushes, stats.Duration)
	}

	data := svg.Bytes()
	if err == nil {
		if err := store.Set(ctx, key, data, cfg.Cache.TTL.Duration); err != nil {
			c.Logger.Warn("frame cache write failed", "err", err)
		}
	}
	return c.writeFrame(output, data, false)
}

// frameKeyOpts collects every setting that changes the drawn frame.
func frameKeyOpts(cfg config.Config, opts renderOpts) cache.FrameKeyOpts {
	k := cache.FrameKeyOpts{
		Format:     "svg",
		Width:      cfg.Width,
		Height:     cfg.Height,
		StyleSheet: styleSheetHash(cfg.StyleSheet),
		Engine:     cfg.Layout,
		Padding:    cfg.Padding,
		Title:      opts.title,
		ElementIDs: opts.ids,
		NoShadows:  opts.noShadows,
	}
	if cfg.View.Percent > 0 {
		k.ViewPercent = cfg.View.Percent
		k.ViewCenter = cfg.View.Center
		k.ViewRotation = cfg.View.Rotation
	}
	return k
}

func (c *CLI) writeFrame(output string, data []byte, cached bool) error {
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	if cached {
		printSuccess("Rendered %s", StyleDim.Render("(cached)"))
	} else {
		printSuccess("Rendered")
	}
	printFile(output)
	return nil
}
