// Package export renders a network graph to Graphviz DOT and SVG for
// visual inspection of the ingested topology.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/voltlab/gridclosure/pkg/network"
)

// Options configures DOT generation.
type Options struct {
	// RootMarker highlights nodes of this type as traversal roots.
	RootMarker string

	// Detailed includes voltage and coordinates in node labels.
	// When false, only the name (or id) is shown.
	Detailed bool
}

// ToDOT converts a network graph to Graphviz DOT format. The graph is
// undirected, so edges use "--" notation. Root-marked nodes are filled,
// placeholder nodes are dashed.
func ToDOT(g *network.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph network {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10];\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		label := fmtLabel(g, id, opts.Detailed)
		attrs := fmtAttrs(g, id, label, opts.RootMarker)
		fmt.Fprintf(&buf, "  %d [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.Nodes() {
		for _, neighbor := range g.Neighbors(id) {
			// Each undirected edge once.
			if neighbor > id {
				fmt.Fprintf(&buf, "  %d -- %d;\n", id, neighbor)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *network.Graph, id int, detailed bool) string {
	attrs := g.Attributes(id)
	name, _ := attrs[network.AttrName].(string)
	if name == "" {
		name = fmt.Sprintf("%d", id)
	}
	if !detailed {
		return name
	}

	parts := []string{name}
	if t, ok := attrs[network.AttrType].(string); ok && t != "" {
		parts = append(parts, t)
	}
	if kv, ok := attrs[network.AttrVoltageKV].(float64); ok {
		parts = append(parts, fmt.Sprintf("%.1f kV", kv))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(g *network.Graph, id int, label, rootMarker string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case rootMarker != "" && g.Type(id) == rootMarker:
		attrs = append(attrs, "shape=doublecircle", "fillcolor=gold")
	case g.IsPlaceholder(id):
		attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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
