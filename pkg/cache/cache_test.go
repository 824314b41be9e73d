package cache

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/graphview/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "dot"})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "neato"})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Engine: "dot"}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:hash123:") {
		t.Errorf("LayoutKey unexpected: %s", lk1)
	}

	fk1 := k.FrameKey("hash123", FrameKeyOpts{Format: "svg", Width: 800, Height: 600})
	fk2 := k.FrameKey("hash123", FrameKeyOpts{Format: "svg", Width: 640, Height: 600})
	if fk1 == fk2 {
		t.Error("Different FrameKeyOpts should produce different keys")
	}
	if fk1 == k.LayoutKey("hash123", LayoutKeyOpts{}) {
		t.Error("Frame and layout keys should not collide")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	key := scoped.LayoutKey("abc", LayoutKeyOpts{Engine: "dot"})
	if key != "user:123:"+inner.LayoutKey("abc", LayoutKeyOpts{Engine: "dot"}) {
		t.Errorf("ScopedKeyer LayoutKey unexpected: %s", key)
	}

	frameKey := scoped.FrameKey("abc", FrameKeyOpts{})
	if !strings.HasPrefix(frameKey, "user:123:frame:abc:") {
		t.Errorf("ScopedKeyer FrameKey should be prefixed: %s", frameKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.FrameKey("h", FrameKeyOpts{Format: "svg"})
	want := "prefix:" + NewDefaultKeyer().FrameKey("h", FrameKeyOpts{Format: "svg"})
	if key != want {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get missing = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("frame"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(data) != "frame" {
		t.Errorf("Get data = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("Expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := os.WriteFile(c.path("k"), []byte{0xc1}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Corrupt entry = hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("Get %s after Clear should miss", k)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear should keep the cache directory: %v", err)
	}
	if got := c.Dir(); got != filepath.Clean(dir) && got != dir {
		t.Errorf("Dir = %s, want %s", got, dir)
	}
}

func TestFileCacheLayout(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	key := NewDefaultKeyer().LayoutKey(Hash([]byte("digraph G {}")), LayoutKeyOpts{Engine: "dot"})
	if err := c.Set(context.Background(), key, []byte("pos"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	h := Hash([]byte(key))
	want := filepath.Join(dir, h[:2], h[2:]+".msgpack")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("entry not stored at %s: %v", want, err)
	}
}

func TestFrameKeyCoversPresentation(t *testing.T) {
	k := NewDefaultKeyer()
	base := FrameKeyOpts{Format: "svg", Width: 800, Height: 600, Engine: "dot"}
	baseKey := k.FrameKey("g", base)

	tests := []struct {
		name   string
		change func(o *FrameKeyOpts)
	}{
		{"title", func(o *FrameKeyOpts) { o.Title = "deps" }},
		{"element ids", func(o *FrameKeyOpts) { o.ElementIDs = true }},
		{"shadows", func(o *FrameKeyOpts) { o.NoShadows = true }},
		{"padding", func(o *FrameKeyOpts) { o.Padding = "10px" }},
		{"stylesheet", func(o *FrameKeyOpts) { o.StyleSheet = Hash([]byte("rules")) }},
		{"zoom", func(o *FrameKeyOpts) { o.ViewPercent = 0.5 }},
		{"center", func(o *FrameKeyOpts) { o.ViewCenter = []float64{1, 2} }},
		{"rotation", func(o *FrameKeyOpts) { o.ViewRotation = 90 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := base
			tt.change(&o)
			if k.FrameKey("g", o) == baseKey {
				t.Errorf("changing %s should change the frame key", tt.name)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(errBoom); errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("plain errors should not be network errors: %v", err)
	}
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errBoom}
	err := classify(netErr)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("classify(%v) = %v, want NETWORK_ERROR", netErr, err)
	}
	if !stderrors.Is(err, errBoom) {
		t.Error("classify should keep the cause")
	}
}

var errBoom = stderrors.New("boom")

func TestAwaitRedis(t *testing.T) {
	defer func(d time.Duration) { connectDelay = d }(connectDelay)
	connectDelay = time.Millisecond
	ctx := context.Background()
	netErr := classify(&net.OpError{Op: "dial", Net: "tcp", Err: errBoom})

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"up at once", 0, nil, 1, false},
		{"up after a retry", 1, netErr, 2, false},
		{"never up", 10, netErr, connectAttempts, true},
		{"auth error is final", 10, errBoom, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := awaitRedis(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("awaitRedis() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("ping calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestAwaitRedisContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	netErr := classify(&net.OpError{Op: "dial", Net: "tcp", Err: errBoom})
	err := awaitRedis(ctx, func() error { return netErr })
	if err != context.Canceled {
		t.Errorf("awaitRedis() = %v, want context.Canceled", err)
	}
}
