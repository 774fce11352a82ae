// Package nodelink renders architecture graphs as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz DOT from a laid-out [graph.Graph] and
// renders it in-process with go-graphviz. Containers and decision groups
// become nested clusters, so the diagram keeps the containment structure of
// the architecture.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot, nodelink.LayoutRanked)
//
// To keep the coordinates computed by the layout package instead of letting
// Graphviz rank the graph, write the DOT with Positioned and render it with
// LayoutFixed:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Positioned: true})
//	svg, err := nodelink.RenderSVG(dot, nodelink.LayoutFixed)
//
// To show a decision filter, pass the view computed by the decision package.
// Hidden elements are dimmed, or dropped with HideFiltered:
//
//	view := decision.Apply(g, sel)
//	dot := nodelink.ToDOT(g, nodelink.Options{View: view})
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot, nodelink.LayoutRanked)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0, nodelink.LayoutRanked)  // 2x scale
//
// # Edges
//
// Dashed edges (interactions and backward flow edges) stay dashed. Backward
// edges keep their source and target and point their arrow at the source
// (dir=back). Edges that end on a group are clipped at the cluster border.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
