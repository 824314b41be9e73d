package layout

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strconv"

	"github.com/matzehuels/graphview/pkg/stream"
)

// pointsPerUnit converts Graphviz points into graph units.
const pointsPerUnit = 72.0

// ToDOT converts a document to Graphviz DOT. Only structure is written:
// nodes are points so labels and styles never influence placement, and
// positioned nodes are pinned where the engine supports it.
func ToDOT(doc *stream.Document, engine string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%q;\n", engine)
	buf.WriteString("  node [shape=point, width=0.1];\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("\n")

	for _, n := range doc.Nodes {
		if n.Positioned() {
			fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\"];\n", n.ID, fmtPoint(*n.X), fmtPoint(*n.Y))
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", n.ID)
	}

	buf.WriteString("\n")
	for _, e := range doc.Edges {
		if e.Directed {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [dir=none];\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtPoint(gu float64) string {
	return strconv.FormatFloat(gu*pointsPerUnit, 'f', 2, 64)
}

// nodeRe matches a node group as Graphviz writes it for shape=point.
var nodeRe = regexp.MustCompile(`<title>([^<]*)</title>\s*<ellipse[^>]*?\scx="(-?[0-9.]+)"\s+cy="(-?[0-9.]+)"`)

// ParseSVG extracts node centers in graph units from Graphviz SVG output.
// Edge groups carry titles too but no ellipse directly after, so they are
// skipped.
func ParseSVG(svg []byte) (Positions, error) {
	out := Positions{}
	for _, m := range nodeRe.FindAllSubmatch(svg, -1) {
		id := html.UnescapeString(string(m[1]))
		x, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("node %q: cx: %w", id, err)
		}
		y, err := strconv.ParseFloat(string(m[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("node %q: cy: %w", id, err)
		}
		out[id] = [2]float64{x / pointsPerUnit, -y / pointsPerUnit}
	}
	return out, nil
}
