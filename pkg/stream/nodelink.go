package stream

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/matzehuels/graphview/pkg/errors"
)

// =============================================================================
// Node-link documents
// =============================================================================

// Document is the node-link JSON input format:
//
//	{
//	  "attrs": {"stylesheet": "url(style.toml)"},
//	  "nodes": [{"id": "a", "label": "A", "x": 0, "y": 1, "attrs": {"ui.class": "big"}}],
//	  "edges": [{"from": "a", "to": "b", "directed": true}]
//	}
//
// Positions are optional; nodes without one are placed by a layout.
type Document struct {
	Attrs map[string]any `json:"attrs,omitempty"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// Node is a document node.
type Node struct {
	ID    string         `json:"id"`
	Label string         `json:"label,omitempty"`
	X     *float64       `json:"x,omitempty"`
	Y     *float64       `json:"y,omitempty"`
	Z     *float64       `json:"z,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Positioned reports whether the node carries both x and y.
func (n *Node) Positioned() bool { return n.X != nil && n.Y != nil }

// Edge is a document edge. An empty id is derived from the endpoints.
type Edge struct {
	ID       string         `json:"id,omitempty"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Directed bool           `json:"directed,omitempty"`
	Label    string         `json:"label,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}

// Decode parses and validates a document. Missing edge ids are filled in.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph document")
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadFile loads a document from disk.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph %s", path)
		}
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *Document) normalize() error {
	nodes := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if err := errors.ValidateElementID(n.ID); err != nil {
			return err
		}
		if nodes[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", n.ID)
		}
		nodes[n.ID] = true
	}

	edges := make(map[string]bool, len(d.Edges))
	for i := range d.Edges {
		e := &d.Edges[i]
		if !nodes[e.From] || !nodes[e.To] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s->%s references an unknown node", e.From, e.To)
		}
		if e.ID == "" {
			e.ID = e.From + "->" + e.To
			for k := 2; edges[e.ID]; k++ {
				e.ID = fmt.Sprintf("%s->%s#%d", e.From, e.To, k)
			}
		}
		if err := errors.ValidateElementID(e.ID); err != nil {
			return err
		}
		if edges[e.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate edge %q", e.ID)
		}
		edges[e.ID] = true
	}
	return nil
}

// Replay emits the document through src: graph attributes, then every node
// with its attributes, then every edge with its attributes. Attribute keys
// are emitted in sorted order so replays are deterministic.
func (d *Document) Replay(src *Source) {
	for _, k := range sortedKeys(d.Attrs) {
		src.SetAttribute(TargetGraph, "", k, d.Attrs[k])
	}
	for _, n := range d.Nodes {
		src.AddNode(n.ID)
		if n.Label != "" {
			src.SetAttribute(TargetNode, n.ID, "label", n.Label)
		}
		if n.Positioned() {
			z := 0.0
			if n.Z != nil {
				z = *n.Z
			}
			src.SetAttribute(TargetNode, n.ID, "xyz", []any{*n.X, *n.Y, z})
		}
		for _, k := range sortedKeys(n.Attrs) {
			src.SetAttribute(TargetNode, n.ID, k, n.Attrs[k])
		}
	}
	for _, e := range d.Edges {
		src.AddEdge(e.ID, e.From, e.To, e.Directed)
		if e.Label != "" {
			src.SetAttribute(TargetEdge, e.ID, "label", e.Label)
		}
		for _, k := range sortedKeys(e.Attrs) {
			src.SetAttribute(TargetEdge, e.ID, k, e.Attrs[k])
		}
	}
}

// Unpositioned returns the ids of nodes without a position.
func (d *Document) Unpositioned() []string {
	var out []string
	for _, n := range d.Nodes {
		if !n.Positioned() {
			out = append(out, n.ID)
		}
	}
	return out
}

// SetPosition fills in a node position.
func (d *Document) SetPosition(id string, x, y float64) bool {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			d.Nodes[i].X, d.Nodes[i].Y = &x, &y
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
