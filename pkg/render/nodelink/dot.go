package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node type and description to node labels.
	// When false, only the label is shown.
	Detailed bool

	// View dims the nodes and edges it hides. The zero View shows everything.
	View decision.View

	// HideFiltered omits hidden nodes and edges instead of dimming them.
	HideFiltered bool

	// Positioned pins every node at the position computed by the layout
	// engine and gives clusters their computed bounds. Render the result with
	// [LayoutFixed].
	Positioned bool
}

// Layout selects how Graphviz places the nodes of a DOT graph.
type Layout int

const (
	// LayoutRanked lets Graphviz rank and place the graph itself.
	LayoutRanked Layout = iota
	// LayoutFixed keeps the pos and bb attributes written with
	// Options.Positioned and only routes the edges.
	LayoutFixed
)

func (l Layout) engine() graphviz.Layout {
	if l == LayoutFixed {
		return graphviz.NOP
	}
	return graphviz.DOT
}

// pointsPerInch converts graph units to the inches Graphviz uses for node
// sizes.
const pointsPerInch = 72.0

const (
	dimColor   = "#c8c8c8"
	groupColor = "#5a6b7b"
	anchorSfx  = "__anchor"
)

// ToDOT converts an architecture graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Containers and decision groups become nested clusters; decision groups are
// drawn dashed with their prompt as the cluster label. Edges that end on a
// group are clipped at the cluster border. Ranks run left to right, matching
// the graph's own layout.
func ToDOT(g graph.Graph, opts Options) string {
	w := &dotWriter{g: g, opts: opts, children: make(map[string][]graph.Node)}
	for _, n := range g.Nodes {
		if n.ParentID != "" {
			w.children[n.ParentID] = append(w.children[n.ParentID], n)
		}
	}

	w.buf.WriteString("digraph G {\n")
	if opts.Positioned {
		w.buf.WriteString("  splines=true;\n")
	} else {
		w.buf.WriteString("  rankdir=LR;\n")
	}
	w.buf.WriteString("  compound=true;\n")
	w.buf.WriteString("  bgcolor=\"transparent\";\n")
	w.buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	w.buf.WriteString("  edge [fontsize=11];\n")
	if !opts.Positioned {
		w.buf.WriteString("  ranksep=0.8;\n")
		w.buf.WriteString("  nodesep=0.4;\n")
	}
	w.buf.WriteString("\n")

	visited := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.ParentID == "" || !w.hasNode(n.ParentID) {
			w.writeNode(n, 1, visited)
		}
	}

	w.buf.WriteString("\n")
	for _, e := range g.Edges {
		w.writeEdge(e)
	}

	w.buf.WriteString("}\n")
	return w.buf.String()
}

type dotWriter struct {
	g        graph.Graph
	opts     Options
	children map[string][]graph.Node
	buf      bytes.Buffer
}

func (w *dotWriter) hasNode(id string) bool {
	_, ok := w.g.Node(id)
	return ok
}

func (w *dotWriter) writeNode(n graph.Node, depth int, visited map[string]bool) {
	if visited[n.ID] {
		return
	}
	visited[n.ID] = true

	visible := w.opts.View.NodeVisible(n.ID)
	if !visible && w.opts.HideFiltered {
		return
	}
	indent := strings.Repeat("  ", depth)

	if !n.IsGroup() {
		attrs := []string{fmt.Sprintf("label=%q", w.label(n))}
		if !visible {
			attrs = append(attrs, fmt.Sprintf("color=%q", dimColor), fmt.Sprintf("fontcolor=%q", dimColor))
		}
		if w.opts.Positioned {
			attrs = append(attrs, w.pinned(n)...)
		}
		fmt.Fprintf(&w.buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
		return
	}

	fmt.Fprintf(&w.buf, "%ssubgraph %q {\n", indent, clusterID(n.ID))
	fmt.Fprintf(&w.buf, "%s  label=%q;\n", indent, groupLabel(n))
	style := "rounded"
	if n.Kind == graph.KindDecisionGroup {
		style = "rounded,dashed"
	}
	fmt.Fprintf(&w.buf, "%s  style=%q;\n", indent, style)
	color := groupColor
	if !visible {
		color = dimColor
	}
	fmt.Fprintf(&w.buf, "%s  color=%q;\n", indent, color)
	fmt.Fprintf(&w.buf, "%s  fontcolor=%q;\n", indent, color)
	anchor := "shape=point, style=invis, width=0, height=0"
	if w.opts.Positioned {
		x, y, width, height := w.box(n)
		fmt.Fprintf(&w.buf, "%s  bb=\"%s,%s,%s,%s\";\n", indent, num(x), num(-(y + height)), num(x+width), num(-y))
		anchor += fmt.Sprintf(", pos=\"%s,%s!\"", num(x+width/2), num(-(y + height/2)))
	}
	fmt.Fprintf(&w.buf, "%s  %q [%s];\n", indent, n.ID+anchorSfx, anchor)
	for _, c := range w.children[n.ID] {
		w.writeNode(c, depth+1, visited)
	}
	fmt.Fprintf(&w.buf, "%s}\n", indent)
}

// box returns the absolute top-left corner and size of n in graph units.
// Graphviz's y axis points up, so callers negate y.
func (w *dotWriter) box(n graph.Node) (x, y, width, height float64) {
	pos, _ := w.g.AbsolutePosition(n.ID)
	return pos.X, pos.Y, n.Size.Width, n.Size.Height
}

func (w *dotWriter) pinned(n graph.Node) []string {
	x, y, width, height := w.box(n)
	return []string{
		fmt.Sprintf("pos=\"%s,%s!\"", num(x+width/2), num(-(y + height/2))),
		"width=" + num(width/pointsPerInch),
		"height=" + num(height/pointsPerInch),
		"fixedsize=true",
	}
}

// num formats v without trailing zeros and without a negative zero.
func num(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (w *dotWriter) writeEdge(e graph.Edge) {
	visible := w.opts.View.EdgeVisible(e.ID)
	if !visible && w.opts.HideFiltered {
		return
	}
	if w.opts.HideFiltered && (!w.opts.View.NodeVisible(e.Source) || !w.opts.View.NodeVisible(e.Target)) {
		return
	}

	src, dst := e.Source, e.Target
	var attrs []string
	if n, ok := w.g.Node(src); ok && n.IsGroup() {
		src = n.ID + anchorSfx
		attrs = append(attrs, fmt.Sprintf("ltail=%q", clusterID(n.ID)))
	}
	if n, ok := w.g.Node(dst); ok && n.IsGroup() {
		dst = n.ID + anchorSfx
		attrs = append(attrs, fmt.Sprintf("lhead=%q", clusterID(n.ID)))
	}

	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Dashed {
		attrs = append(attrs, "style=dashed")
	}
	switch {
	case e.MarkerStart != "" && e.MarkerEnd != "":
		attrs = append(attrs, "dir=both")
	case e.MarkerStart != "":
		attrs = append(attrs, "dir=back")
	case e.MarkerEnd == "":
		attrs = append(attrs, "dir=none")
	}
	if !visible {
		attrs = append(attrs, fmt.Sprintf("color=%q", dimColor), fmt.Sprintf("fontcolor=%q", dimColor))
	}

	if len(attrs) == 0 {
		fmt.Fprintf(&w.buf, "  %q -> %q;\n", src, dst)
		return
	}
	fmt.Fprintf(&w.buf, "  %q -> %q [%s];\n", src, dst, strings.Join(attrs, ", "))
}

func (w *dotWriter) label(n graph.Node) string {
	label := n.DisplayLabel()
	if !w.opts.Detailed {
		return label
	}
	var parts []string
	if n.Data.NodeType != "" {
		parts = append(parts, "«"+n.Data.NodeType+"»")
	}
	parts = append(parts, label)
	if n.Data.Description != "" {
		parts = append(parts, n.Data.Description)
	}
	return strings.Join(parts, "\n")
}

func groupLabel(n graph.Node) string {
	if n.Kind == graph.KindDecisionGroup && n.Data.Prompt != "" {
		return n.Data.Prompt
	}
	return n.DisplayLabel()
}

func clusterID(id string) string {
	return "cluster_" + id
}

// RenderSVG renders a DOT graph to SVG using Graphviz with the given
// layout. Returns the SVG bytes ready for display or further conversion
// with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string, layout Layout) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(layout.engine())

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires rsvg-convert from librsvg.
func RenderPDF(ctx context.Context, dot string, layout Layout) ([]byte, error) {
	svg, err := RenderSVG(dot, layout)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// doubles the resolution.
//
// Requires rsvg-convert from librsvg.
func RenderPNG(ctx context.Context, dot string, scale float64, layout Layout) ([]byte, error) {
	svg, err := RenderSVG(dot, layout)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
