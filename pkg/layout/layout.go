package layout

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/graphview/pkg/cache"
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/stream"
)

// Engines lists the supported Graphviz layout engines.
var Engines = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi"}

// DefaultEngine is used when Options.Engine is empty.
const DefaultEngine = "dot"

// Positions maps node ids to (x, y) in graph units.
type Positions map[string][2]float64

// Options configures a Layouter.
type Options struct {
	Engine string
	Logger *log.Logger
	// Cache stores computed positions. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	// TTL of cached positions; zero keeps them until cleared.
	TTL time.Duration
}

// Layouter computes node positions with Graphviz.
type Layouter struct {
	engine string
	log    *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
}

// New creates a Layouter. An unknown engine falls back to DefaultEngine.
func New(opts Options) *Layouter {
	l := &Layouter{
		engine: opts.Engine,
		log:    opts.Logger,
		cache:  opts.Cache,
		keyer:  opts.Keyer,
		ttl:    opts.TTL,
	}
	if l.log == nil {
		l.log = log.Default()
	}
	if l.cache == nil {
		l.cache = cache.NewNullCache()
	}
	if l.keyer == nil {
		l.keyer = cache.NewDefaultKeyer()
	}
	if !slices.Contains(Engines, l.engine) {
		if l.engine != "" {
			l.log.Warn("unknown layout engine, using default", "engine", l.engine, "default", DefaultEngine)
		}
		l.engine = DefaultEngine
	}
	return l
}

// Engine returns the Graphviz engine in use.
func (l *Layouter) Engine() string { return l.engine }

// Compute returns positions for every node of doc, from the cache when
// possible.
func (l *Layouter) Compute(ctx context.Context, doc *stream.Document) (Positions, error) {
	dot := ToDOT(doc, l.engine)
	key := l.keyer.LayoutKey(cache.Hash([]byte(dot)), cache.LayoutKeyOpts{Engine: l.engine})

	if pos, ok := l.lookup(ctx, key); ok {
		return pos, nil
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, l.engine, len(doc.Nodes))
	start := time.Now()
	pos, err := l.run(ctx, dot)
	hooks.OnLayoutComplete(ctx, l.engine, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	l.log.Debug("layout computed", "engine", l.engine, "nodes", len(pos), "took", time.Since(start))

	l.store(ctx, key, pos)
	return pos, nil
}

// Apply fills in the position of every unpositioned node in doc and returns
// how many were set. Documents where every node is placed are left alone
// without running Graphviz.
func (l *Layouter) Apply(ctx context.Context, doc *stream.Document) (int, error) {
	missing := doc.Unpositioned()
	if len(missing) == 0 {
		return 0, nil
	}
	pos, err := l.Compute(ctx, doc)
	if err != nil {
		return 0, err
	}

	dx, dy := anchorOffset(doc, pos)
	n := 0
	for _, id := range missing {
		p, ok := pos[id]
		if !ok {
			l.log.Warn("layout did not place node", "id", id)
			continue
		}
		if doc.SetPosition(id, p[0]+dx, p[1]+dy) {
			n++
		}
	}
	return n, nil
}

// anchorOffset is the mean shift between the positions the document already
// has and where the engine put those nodes. Graphviz translates its output
// to the origin, so without it new nodes would land beside the old ones.
func anchorOffset(doc *stream.Document, pos Positions) (float64, float64) {
	var dx, dy float64
	n := 0
	for _, node := range doc.Nodes {
		p, ok := pos[node.ID]
		if !node.Positioned() || !ok {
			continue
		}
		dx += *node.X - p[0]
		dy += *node.Y - p[1]
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return dx / float64(n), dy / float64(n)
}

func (l *Layouter) lookup(ctx context.Context, key string) (Positions, bool) {
	data, hit, err := l.cache.Get(ctx, key)
	if err != nil {
		l.log.Warn("layout cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	var pos Positions
	if err := msgpack.Unmarshal(data, &pos); err != nil {
		l.log.Warn("discarding undecodable layout cache entry", "err", err)
		_ = l.cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return pos, true
}

func (l *Layouter) store(ctx context.Context, key string, pos Positions) {
	data, err := msgpack.Marshal(pos)
	if err != nil {
		l.log.Warn("cannot encode layout", "err", err)
		return
	}
	if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
		l.log.Warn("layout cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
}

func (l *Layouter) run(ctx context.Context, dot string) (Positions, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(l.engine))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse generated DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("graphviz %s: %w", l.engine, err)
	}
	return ParseSVG(buf.Bytes())
}
