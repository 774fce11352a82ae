// Package render turns architecture graphs into viewable artifacts.
//
// # Overview
//
// The graph pipeline produces positioned nodes and routed edges; this
// package and its subpackages export them:
//
//   - Node-link diagrams through Graphviz (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(nodelink.ToDOT(g, nodelink.Options{}), nodelink.LayoutRanked)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// A missing rsvg-convert yields an UNSUPPORTED error.
//
// [nodelink]: github.com/matzehuels/archview/pkg/render/nodelink
package render
