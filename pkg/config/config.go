// Package config resolves graphview settings.
//
// Settings come from three layers, later ones winning:
//
//  1. [Default]
//  2. an optional TOML file ([Load])
//  3. GRAPHVIEW_* environment variables
//
// The result is validated once and then passed explicitly to the packages
// that need it; nothing reads the environment afterwards.
//
//	renderer = "svg"
//	width = 1024
//	height = 768
//	padding = "20px"
//	stylesheet = "style.toml"
//	layout = "neato"
//
//	[view]
//	percent = 0.5
//	center = [0.0, 1.0]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/layout"
	"github.com/matzehuels/graphview/pkg/style"
)

// EnvPrefix prefixes every environment override, e.g. GRAPHVIEW_WIDTH.
const EnvPrefix = "GRAPHVIEW"

// Renderers names the render backends.
var Renderers = []string{"svg", "terminal"}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the resolved configuration.
type Config struct {
	Renderer  string `toml:"renderer" envconfig:"RENDERER"`
	FrameRate int    `toml:"frame_rate" envconfig:"FRAME_RATE"`
	Width     int    `toml:"width" envconfig:"WIDTH"`
	Height    int    `toml:"height" envconfig:"HEIGHT"`
	// Padding is extra camera padding such as "10px" or "0.5,1 gu".
	Padding    string `toml:"padding" envconfig:"PADDING"`
	StyleSheet string `toml:"stylesheet" envconfig:"STYLESHEET"`
	Layout     string `toml:"layout" envconfig:"LAYOUT"`
	Listen     string `toml:"listen" envconfig:"LISTEN"`
	View       View   `toml:"view" envconfig:"VIEW"`
	Cache      Cache  `toml:"cache" envconfig:"CACHE"`
}

// View is the initial user view. A zero Percent keeps the camera in
// auto-fit mode.
type View struct {
	Percent  float64   `toml:"percent" envconfig:"PERCENT"`
	Center   []float64 `toml:"center" envconfig:"CENTER"`
	Rotation float64   `toml:"rotation" envconfig:"ROTATION"`
}

// Cache selects where layouts and frames are cached.
type Cache struct {
	Backend     string   `toml:"backend" envconfig:"BACKEND"`
	Dir         string   `toml:"dir" envconfig:"DIR"`
	RedisAddr   string   `toml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPrefix string   `toml:"redis_prefix" envconfig:"REDIS_PREFIX"`
	TTL         Duration `toml:"ttl" envconfig:"TTL"`
}

// Duration decodes "90s"-style strings from TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Renderer:  "svg",
		FrameRate: 30,
		Width:     800,
		Height:    600,
		Layout:    layout.DefaultEngine,
		Listen:    "127.0.0.1:8080",
		Cache:     Cache{Backend: CacheFile, TTL: Duration{24 * time.Hour}},
	}
}

// Load resolves the configuration from path (skipped when empty) and the
// environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// Validate checks value ranges and enums.
func (c Config) Validate() error {
	if !slices.Contains(Renderers, c.Renderer) {
		return errors.New(errors.ErrCodeInvalidConfig, "renderer must be one of %v, got %q", Renderers, c.Renderer)
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return errors.New(errors.ErrCodeInvalidConfig, "frame_rate must be within 1..240, got %d", c.FrameRate)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Padding != "" {
		if _, err := c.PaddingValues(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "padding")
		}
	}
	if c.StyleSheet != "" {
		if err := errors.ValidateStyleSheetPath(c.StyleSheet); err != nil {
			return err
		}
	}
	if !slices.Contains(layout.Engines, c.Layout) {
		return errors.New(errors.ErrCodeInvalidConfig, "layout must be one of %v, got %q", layout.Engines, c.Layout)
	}
	if c.View.Percent < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "view.percent cannot be negative")
	}
	if n := len(c.View.Center); n != 0 && n != 2 && n != 3 {
		return errors.New(errors.ErrCodeInvalidConfig, "view.center needs 2 or 3 components, got %d", n)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// PaddingValues parses Padding. Plain numbers are pixels.
func (c Config) PaddingValues() (style.Values, error) {
	if c.Padding == "" {
		return style.Values{}, nil
	}
	return style.ParseValues(c.Padding, style.PX)
}

// FrameInterval is the time between viewer ticks.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
