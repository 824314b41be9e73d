// Package cli implements the graphview command-line interface.
package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/buildinfo"
	"github.com/matzehuels/graphview/pkg/cache"
	"github.com/matzehuels/graphview/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphview"

	// cacheSchema versions every cache key; bump it when cached encodings change.
	cacheSchema = "v1:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "graphview renders live, styled graphs",
		Long:         `graphview renders graphs from node-link documents and event streams, as SVG files, in the terminal or as a live HTTP feed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate("{{.Name}} " + buildinfo.String() + "\n")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (TOML)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the --config file and GRAPHVIEW_* environment.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "file", c.configPath, "renderer", cfg.Renderer, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, cache.Keyer, error) {
	keyer := cache.NewScopedKeyer(nil, cacheSchema)
	if noCache {
		return cache.NewNullCache(), keyer, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), keyer, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:   cfg.Cache.RedisAddr,
			Prefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, keyer, nil
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), keyer, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cannot create cache directory, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), keyer, nil
	}
	return fc, keyer, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one if set,
// otherwise graphview under the user cache directory ($XDG_CACHE_HOME on Linux).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return filepath.Clean(cfg.Cache.Dir), nil
	}
	return cache.DefaultDir()
}
