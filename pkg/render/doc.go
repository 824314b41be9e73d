// Package render draws a graphic graph through a camera.
//
// # Overview
//
// A [Renderer] runs one frame at a time:
//
//  1. The camera recomputes graph bounds and the graph-unit to pixel transform.
//  2. Shadows are drawn for node and sprite groups whose style casts one.
//  3. Style groups are painted layer by layer in z-order. Each group pushes
//     its shared style once for all bulk members, then a per-element style
//     for dynamic members and members with active interaction events.
//
// Drawing commands arrive at a [Backend] in pixel space, already culled.
//
// # Backends
//
//   - [SVG] writes a standalone document sized to the viewport.
//   - [Terminal] draws glyphs and lines onto a character grid with lipgloss
//     colors. Use [Viewport] to size the camera for a terminal.
//   - [Recorder] keeps every command, for tests.
//
// # Errors
//
// Edges whose shape is polyline or vectors cannot be drawn yet; they yield
// an UNSUPPORTED error. Errors never abort a frame: every other element is
// still drawn and the first error is returned from [Renderer.Render].
//
//	r := render.New(render.Options{Logger: logger})
//	svg := render.NewSVG(render.WithTitle("deps"))
//	if _, err := r.Render(ctx, g, cam, svg); err != nil {
//	    logger.Warn("frame", "err", err)
//	}
//	os.WriteFile("graph.svg", svg.Bytes(), 0o644)
package render
