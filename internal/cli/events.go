package cli

import (
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/stream"
)

// Event operations accepted by POST /events.
const (
	opAddNode    = "add-node"
	opRemoveNode = "remove-node"
	opAddEdge    = "add-edge"
	opRemoveEdge = "remove-edge"
	opSet        = "set"
	opRemove     = "remove"
	opClear      = "clear"
	opStep       = "step"
)

// wireEvent is the JSON form of one graph edit:
//
//	[{"op": "add-node", "id": "a"},
//	 {"op": "set", "target": "node", "id": "a", "key": "ui.class", "value": "hot"},
//	 {"op": "add-edge", "id": "ab", "from": "a", "to": "b", "directed": true}]
//
// The server stamps each edit with its own source id and time id.
type wireEvent struct {
	Op       string  `json:"op"`
	ID       string  `json:"id,omitempty"`
	From     string  `json:"from,omitempty"`
	To       string  `json:"to,omitempty"`
	Directed bool    `json:"directed,omitempty"`
	Target   string  `json:"target,omitempty"`
	Key      string  `json:"key,omitempty"`
	Value    any     `json:"value,omitempty"`
	Step     float64 `json:"step,omitempty"`
}

func (e wireEvent) validate() error {
	switch e.Op {
	case opAddNode, opRemoveNode, opRemoveEdge:
		return errors.ValidateElementID(e.ID)
	case opAddEdge:
		if err := errors.ValidateElementID(e.ID); err != nil {
			return err
		}
		if e.From == "" || e.To == "" {
			return errors.New(errors.ErrCodeInvalidInput, "edge %q needs from and to", e.ID)
		}
		return nil
	case opSet, opRemove:
		target, err := parseTarget(e.Target)
		if err != nil {
			return err
		}
		if e.Key == "" {
			return errors.New(errors.ErrCodeInvalidAttribute, "attribute key cannot be empty")
		}
		if target != stream.TargetGraph {
			return errors.ValidateElementID(e.ID)
		}
		return nil
	case opClear, opStep:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", e.Op)
}

// emit sends a validated event through src.
func (e wireEvent) emit(src *stream.Source) {
	switch e.Op {
	case opAddNode:
		src.AddNode(e.ID)
	case opRemoveNode:
		src.RemoveNode(e.ID)
	case opAddEdge:
		src.AddEdge(e.ID, e.From, e.To, e.Directed)
	case opRemoveEdge:
		src.RemoveEdge(e.ID)
	case opSet:
		target, _ := parseTarget(e.Target)
		src.SetAttribute(target, e.ID, e.Key, e.Value)
	case opRemove:
		target, _ := parseTarget(e.Target)
		src.RemoveAttribute(target, e.ID, e.Key)
	case opClear:
		src.Clear()
	case opStep:
		src.BeginStep(e.Step)
	}
}

func parseTarget(s string) (stream.Target, error) {
	switch s {
	case "", "node":
		return stream.TargetNode, nil
	case "edge":
		return stream.TargetEdge, nil
	case "graph":
		return stream.TargetGraph, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown target %q", s)
}
