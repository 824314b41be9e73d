package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/config"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/stream"
	"github.com/matzehuels/graphview/pkg/style"
	"github.com/matzehuels/graphview/pkg/viewer"
)

// reloadDelay coalesces the burst of writes editors produce on save.
const reloadDelay = 150 * time.Millisecond

// live keeps a scene in sync with its files while a viewer draws it.
type live struct {
	cli     *CLI
	cfg     config.Config
	docPath string
	scene   *scene
	v       *viewer.Viewer

	// sheet is the hot-reloaded stylesheet; nil until the first reload.
	// Only accessed inside the viewer's critical section.
	sheet *style.StyleSheet
}

// reloadStyleSheet re-reads the configured stylesheet and swaps it in.
func (l *live) reloadStyleSheet() error {
	sheet, err := l.cli.loadStyleSheet(l.cfg.StyleSheet)
	if err != nil {
		return err
	}
	return l.v.Do(func(g *graphic.Graph, _ *camera.Camera) error {
		l.sheet = sheet
		g.SetStyleSheet(sheet)
		return nil
	})
}

// reloadDocument re-reads the graph document and replays it from scratch.
func (l *live) reloadDocument(ctx context.Context) error {
	doc, err := stream.ReadFile(l.docPath)
	if err != nil {
		return err
	}
	if err := l.cli.layoutDocument(ctx, l.cfg, doc, false, false); err != nil {
		return err
	}
	return l.v.Do(func(g *graphic.Graph, _ *camera.Camera) error {
		l.scene.source.Clear()
		doc.Replay(l.scene.source)
		// Clearing restores the initial sheet.
		if l.sheet != nil {
			g.SetStyleSheet(l.sheet)
		}
		return nil
	})
}

// watch reloads the document and stylesheet whenever they change on disk,
// until ctx is cancelled. notify, if set, receives a line per reload.
func (l *live) watch(ctx context.Context, notify func(string)) error {
	files := map[string]func() error{
		clean(l.docPath): func() error { return l.reloadDocument(ctx) },
	}
	if l.cfg.StyleSheet != "" {
		files[clean(l.cfg.StyleSheet)] = l.reloadStyleSheet
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Editors often replace files, so the directories are watched.
	dirs := map[string]bool{}
	for path := range files {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var (
		mu      sync.Mutex
		pending = map[string]*time.Timer{}
	)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.cli.Logger.Warn("file watcher", "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			path := clean(ev.Name)
			reload, watched := files[path]
			if !watched || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			mu.Lock()
			if t, ok := pending[path]; ok {
				t.Reset(reloadDelay)
			} else {
				pending[path] = time.AfterFunc(reloadDelay, func() {
					if err := reload(); err != nil {
						l.cli.Logger.Warn("reload failed", "file", path, "err", err)
						return
					}
					l.cli.Logger.Info("reloaded", "file", path)
					if notify != nil {
						notify("reloaded " + filepath.Base(path))
					}
				})
			}
			mu.Unlock()
		}
	}
}

func clean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
