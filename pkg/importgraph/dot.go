package importgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts g to Graphviz DOT, files on the left and packages on the
// right.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph imports {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if len(e.Via) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, strings.Join(e.Via, ", "))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node) []string {
	switch n.Kind {
	case KindPackage:
		return []string{fmt.Sprintf("label=%q", n.ID), "shape=box", "style=\"rounded,filled\"", "fillcolor=\"#d7f0dd\""}
	case KindExcluded:
		label := n.ID
		if n.Reason != "" {
			label += "\n(" + n.Reason + ")"
		}
		return []string{fmt.Sprintf("label=%q", label), "shape=box", "style=\"rounded,dashed,filled\"", "fillcolor=lightgrey", "fontcolor=\"#555555\""}
	default:
		return []string{fmt.Sprintf("label=%q", n.ID), "shape=note"}
	}
}

// RenderSVG lays out a DOT graph and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
