// Package render turns a recorded trace into a visual span tree:
// spans become Graphviz DOT nodes linked parent to child, rendered to
// SVG or PNG.
package render

import (
	"sort"

	"github.com/traceloom/traceloom/pkg/event"
)

// Node is one span in the rendered tree.
type Node struct {
	Span     event.Span
	Children []*Node
}

// Tree is the span forest of a single trace. Spans without a parent
// (or whose parent is missing from the trace) are roots.
type Tree struct {
	TraceID string
	Roots   []*Node
}

// BuildTree assembles the span tree for one trace. Children are
// ordered by start time; roots likewise.
func BuildTree(traceID string, spans []event.Span) *Tree {
	nodes := make(map[string]*Node, len(spans))
	for _, s := range spans {
		nodes[s.ID] = &Node{Span: s}
	}

	tree := &Tree{TraceID: traceID}
	for _, n := range nodes {
		if parent, ok := nodes[n.Span.ParentID]; ok && parent != n {
			parent.Children = append(parent.Children, n)
		} else {
			tree.Roots = append(tree.Roots, n)
		}
	}

	sortNodes(tree.Roots)
	for _, n := range nodes {
		sortNodes(n.Children)
	}
	return tree
}

func sortNodes(ns []*Node) {
	sort.Slice(ns, func(i, j int) bool {
		if !ns[i].Span.Start.Equal(ns[j].Span.Start) {
			return ns[i].Span.Start.Before(ns[j].Span.Start)
		}
		return ns[i].Span.ID < ns[j].Span.ID
	})
}

// SpanCount returns the number of spans in the tree.
func (t *Tree) SpanCount() int {
	count := 0
	var walk func(*Node)
	walk = func(n *Node) {
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}
	return count
}
