package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/matzehuels/graphview/pkg/cache"
	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/config"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/layout"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/style"
)

// scene is a graph loaded from a document, with its camera and the source
// that replays documents into it.
type scene struct {
	graph  *graphic.Graph
	cam    *camera.Camera
	source *stream.Source
	docDir string
}

// sceneOpts are the per-command inputs of newScene.
type sceneOpts struct {
	width, height float64
	noCache       bool
}

// newScene builds the graphic graph and camera for cfg, then loads doc.
// Nodes without a position are placed by the configured layout engine.
func (c *CLI) newScene(ctx context.Context, cfg config.Config, docPath string, doc *stream.Document, opts sceneOpts) (*scene, error) {
	sheet, err := c.loadStyleSheet(cfg.StyleSheet)
	if err != nil {
		return nil, err
	}
	padding, err := cfg.PaddingValues()
	if err != nil {
		return nil, err
	}

	s := &scene{docDir: filepath.Dir(docPath)}
	s.graph = graphic.New(graphic.Options{
		Logger:     c.Logger,
		StyleSheet: sheet,
		BaseDir:    s.docDir,
	})
	s.cam = camera.New(camera.Options{
		Logger:  c.Logger,
		Width:   opts.width,
		Height:  opts.height,
		Padding: padding,
	})
	applyView(s.cam, cfg.View)

	s.source = stream.NewSource(uuid.NewString())
	s.source.AddSink(s.graph)

	if err := c.layoutDocument(ctx, cfg, doc, opts.noCache, true); err != nil {
		return nil, err
	}
	doc.Replay(s.source)
	return s, nil
}

// layoutDocument places unpositioned nodes of doc. With spin, a spinner runs
// on stderr meanwhile.
func (c *CLI) layoutDocument(ctx context.Context, cfg config.Config, doc *stream.Document, noCache, spin bool) error {
	missing := len(doc.Unpositioned())
	if missing == 0 {
		return nil
	}
	store, keyer, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	l := layout.New(layout.Options{
		Engine: cfg.Layout,
		Logger: c.Logger,
		Cache:  store,
		Keyer:  keyer,
		TTL:    cfg.Cache.TTL.Duration,
	})
	prog := newProgress(c.Logger)
	var sp *layoutSpinner
	if spin {
		sp = startLayoutSpinner(ctx, os.Stderr, missing, l.Engine())
	}
	n, err := l.Apply(ctx, doc)
	if sp != nil {
		sp.finish(n, err)
	}
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	prog.done(fmt.Sprintf("Placed %d nodes with %s", n, l.Engine()))
	return nil
}

// applyView switches the camera to the configured user view, if any.
func applyView(cam *camera.Camera, v config.View) {
	if v.Percent <= 0 {
		return
	}
	cam.SetViewPercent(v.Percent)
	if len(v.Center) >= 2 {
		z := 0.0
		if len(v.Center) == 3 {
			z = v.Center[2]
		}
		cam.SetViewCenter(v.Center[0], v.Center[1], z)
	}
	if v.Rotation != 0 {
		cam.SetViewRotation(v.Rotation)
	}
}

// loadStyleSheet loads path, or returns nil for the built-in defaults.
// Rules that failed to parse are logged and skipped.
func (c *CLI) loadStyleSheet(path string) (*style.StyleSheet, error) {
	if path == "" {
		return nil, nil
	}
	sheet, err := style.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range sheet.Warnings {
		c.Logger.Warn("stylesheet", "file", path, "warning", w)
	}
	return sheet, nil
}

// styleSheetHash identifies the stylesheet content for frame cache keys.
func styleSheetHash(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
