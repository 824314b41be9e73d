package cli

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matzehuels/graphview/pkg/cache"
	"github.com/matzehuels/graphview/pkg/config"
)

func TestCacheDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CACHE_HOME is only honored on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"default", "", filepath.Join(xdg, appName)},
		{"configured", "/srv/graphview/cache", "/srv/graphview/cache"},
		{"configured unclean", "/srv/graphview/../cache/", "/srv/cache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Dir = tt.dir
			got, err := cacheDir(cfg)
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheDirLayout(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(root, "frames")

	dir, err := cacheDir(cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	if fc.Dir() != cfg.Cache.Dir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), cfg.Cache.Dir)
	}

	key := cache.NewDefaultKeyer().FrameKey(cache.Hash([]byte("{}")), cache.FrameKeyOpts{Format: "svg"})
	if err := fc.Set(context.Background(), key, []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	h := cache.Hash([]byte(key))
	if _, err := os.Stat(filepath.Join(dir, h[:2], h[2:]+".msgpack")); err != nil {
		t.Errorf("frame not stored under %s: %v", dir, err)
	}
}
