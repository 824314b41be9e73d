// Package skeleton caches the derived geometry and appearance of graphic
// elements: size, fill color, label length, edge connector shape and sprite
// position.
//
// Every cache has a dirty flag set by a change callback (StyleChanged,
// SizeChanged, ColorChanged, LabelChanged, PositionChanged) and is recomputed
// on the first read afterwards, never eagerly. Skeletons read the element
// they belong to through the small interfaces defined here, so the graphic
// package can resolve endpoints and attachments by id without the skeletons
// holding on to graph internals.
//
// Lengths are cached with their unit and converted on read through
// [metrics.GraphMetrics], because a pixel size has a different graph-unit
// extent every time the view zooms.
package skeleton
