package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/graphview/pkg/cache"
	"github.com/matzehuels/graphview/pkg/config"
)

func TestFrameKeyOpts(t *testing.T) {
	sheet := filepath.Join(t.TempDir(), "style.toml")
	if err := os.WriteFile(sheet, []byte("[[rules]]\nselector = \"node\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.StyleSheet = sheet
	cfg.View = config.View{Center: []float64{1, 2}, Rotation: 30}

	k := frameKeyOpts(cfg, renderOpts{title: "deps", ids: true})
	if k.StyleSheet != cache.Hash([]byte("[[rules]]\nselector = \"node\"\n")) {
		t.Errorf("StyleSheet = %q, want content hash", k.StyleSheet)
	}
	if k.Title != "deps" || !k.ElementIDs || k.NoShadows {
		t.Errorf("presentation = %+v", k)
	}
	if k.Width != cfg.Width || k.Height != cfg.Height || k.Engine != cfg.Layout {
		t.Errorf("size/engine = %+v", k)
	}
	// Without a zoom the camera auto-fits, so center and rotation are unused.
	if k.ViewPercent != 0 || k.ViewCenter != nil || k.ViewRotation != 0 {
		t.Errorf("auto-fit view leaked into key: %+v", k)
	}

	cfg.View.Percent = 0.5
	k = frameKeyOpts(cfg, renderOpts{})
	if k.ViewPercent != 0.5 || len(k.ViewCenter) != 2 || k.ViewRotation != 30 {
		t.Errorf("user view = %+v", k)
	}
}

func TestFrameKeyOptsMissingStyleSheet(t *testing.T) {
	cfg := config.Default()
	cfg.StyleSheet = filepath.Join(t.TempDir(), "missing.toml")
	if k := frameKeyOpts(cfg, renderOpts{}); k.StyleSheet != "" {
		t.Errorf("StyleSheet = %q, want empty", k.StyleSheet)
	}
}
