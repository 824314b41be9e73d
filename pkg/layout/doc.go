// Package layout places nodes that arrive without a position.
//
// Graph documents may leave out node coordinates. Before such a document is
// replayed into the graphic graph, a [Layouter] converts it to Graphviz DOT,
// runs one of the Graphviz engines in-process and reads the node centers
// back from the SVG output:
//
//	l := layout.New(layout.Options{Engine: "neato", Cache: c})
//	n, err := l.Apply(ctx, doc) // fills in n missing positions
//
// Results are cached as msgpack-encoded positions under a key derived from
// the DOT text and the engine, so re-rendering an unchanged document never
// starts Graphviz again.
//
// Graphviz works in points with y growing upwards inside a negative
// translation. Positions are divided by 72 so one graph unit is one inch,
// and y is flipped so larger y is higher on screen like the rest of
// graphview.
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly and needs no system installation.
package layout
