// Package graphic holds the renderable view of a graph.
//
// A [Graph] consumes [stream] events and keeps one [Node], [Edge] or [Sprite]
// per element, each a member of exactly one style group. Only attributes the
// view understands are kept: positions (x, y, z, xy, xyz), label, stylesheet
// and the ui.* family. Keys are classified once and memoized.
//
// Sprites live in graph attributes:
//
//	ui.sprite.flag = [1, 2, 0]          free sprite in graph units
//	ui.sprite.flag = "10,20,0 px"       free sprite in pixels
//	ui.sprite.flag.ui.attach = "A"      attach to node or edge A
//	ui.sprite.flag.ui.class = "warning" any element attribute
//
// The graph is also a [stream.Source]: writes made through its methods, such
// as an interactive node drag, are applied locally and then emitted with the
// graph's own source id so upstream replicas can follow.
package graphic
