package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/traceloom/traceloom/pkg/event"
)

// ToDOT converts a span tree to Graphviz DOT format.
// Failed spans are drawn with a red border; each node label carries the
// span name, target, and duration. The resulting DOT string can be
// rendered with [RenderSVG] or [RenderPNG].
func ToDOT(t *Tree) string {
	var buf bytes.Buffer
	buf.WriteString("digraph trace {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var walk func(n *Node)
	walk = func(n *Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Span.ID, strings.Join(nodeAttrs(n), ", "))
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.Span.ID, c.Span.ID)
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *Node) []string {
	label := n.Span.Name
	if n.Span.Target != "" && n.Span.Target != n.Span.Name {
		label += "\n" + n.Span.Target
	}
	label += "\n" + n.Span.Duration.String()

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Span.Status == event.StatusError {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}
