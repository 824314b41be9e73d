// Package pkg provides the core libraries for graphview, a styled graph
// viewer.
//
// # Overview
//
// graphview draws a dynamic graph of nodes, edges and sprites according to a
// CSS-like stylesheet. Graph edits arrive as a stream of events, are applied
// to a graphic graph that mirrors the model graph, and are drawn through a
// camera onto an SVG or terminal surface. The pkg directory is organized into
// three areas:
//
//  1. Model - the event stream, stylesheets and style groups
//  2. Geometry - skeletons, graph metrics and the camera
//  3. Output - renderers, the viewer loop and pointer interaction
//
// # Architecture
//
// The typical data flow through graphview:
//
//	node-link JSON / HTTP events
//	         ↓
//	    [stream] package (events, sources, buffers)
//	         ↓
//	    [graphic] package (nodes, edges, sprites + [stylegroup] bookkeeping)
//	         ↓
//	    [camera] package (view transform, visibility, picking)
//	         ↓
//	    [render] package (z-ordered group drawing)
//	         ↓
//	    SVG / terminal output
//
// # Quick Start
//
// Load a document, position it and draw one SVG frame:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/graphview/pkg/camera"
//	    "github.com/matzehuels/graphview/pkg/graphic"
//	    "github.com/matzehuels/graphview/pkg/layout"
//	    "github.com/matzehuels/graphview/pkg/render"
//	    "github.com/matzehuels/graphview/pkg/stream"
//	)
//
//	// 1. Read the document and place nodes without a position
//	doc, _ := stream.ReadFile("graph.json")
//	_, _ = layout.New(layout.Options{Engine: "neato"}).Apply(ctx, doc)
//
//	// 2. Build the graphic graph
//	g := graphic.New(graphic.Options{})
//	src := stream.NewSource("")
//	src.AddSink(g)
//	doc.Replay(src)
//
//	// 3. Render
//	cam := camera.New(camera.Options{Width: 800, Height: 600})
//	svg := render.NewSVG()
//	_, _ = render.New(render.Options{}).Render(ctx, g, cam, svg)
//
// # Main Packages
//
// ## Model
//
// [stream] - Graph events, sources that stamp them, a thread-safe buffer
// between producers and the rendering goroutine, and the node-link JSON
// document format.
//
// [style] - Stylesheets: selectors, rules, cascading, typed values and the
// TOML and YAML stylesheet formats.
//
// [stylegroup] - Elements grouped by identical computed style, ordered by
// z-index, with dynamic and event overrides.
//
// ## Geometry
//
// [geom] - Points, vectors, boxes and affine matrices.
//
// [metrics] - Graph bounds, viewport size and unit conversion for a frame.
//
// [skeleton] - Cached edge geometry: straight lines, polylines, cubic
// curves, loops and multi-edge bundles.
//
// [camera] - View center, zoom and rotation, auto-fit, visibility culling and
// element picking.
//
// ## Output
//
// [graphic] - The graphic graph: elements, attributes, sprites and their
// attachments.
//
// [render] - Group renderers and the SVG and terminal backends.
//
// [viewer] - The frame loop that drains events and redraws on change.
//
// [interact] - Click, drag and selection through the camera's inverse
// transform.
//
// [layout] - Positions for nodes without coordinates, computed by Graphviz.
//
// ## Infrastructure
//
// [cache] - Layout and frame caches with file, Redis and null backends.
//
// [config] - Configuration from TOML files and GRAPHVIEW_ environment
// variables.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for frames, events, layouts, cache and HTTP.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/camera/...      # Specific package
//	go test -run Example          # Examples only
//
// [stream]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/stream
// [style]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/style
// [stylegroup]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/stylegroup
// [geom]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/geom
// [metrics]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/metrics
// [skeleton]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/skeleton
// [camera]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/camera
// [graphic]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/graphic
// [render]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/render
// [viewer]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/viewer
// [interact]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/interact
// [layout]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/layout
// [cache]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/buildinfo
package pkg
