package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/archview/pkg/architecture"
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/layout"
	"github.com/matzehuels/archview/pkg/observability"
	"github.com/matzehuels/archview/pkg/pattern"
)

// Parse builds and lays out the graph of an architecture document. A
// document without nodes yields the empty graph.
func Parse(doc calm.Document, opts Options) graph.Graph {
	return build(context.Background(), doc, opts, observability.SourceArchitecture)
}

// ParsePattern normalizes a pattern document and then parses it like an
// architecture.
func ParsePattern(doc calm.Document, opts Options) graph.Graph {
	return build(context.Background(), pattern.Normalize(doc), opts, observability.SourcePattern)
}

// ParseBytes decodes a JSON or YAML document and parses it. Patterns are
// detected automatically. Undecodable input is logged and yields the empty
// graph.
func ParseBytes(data []byte, opts Options) graph.Graph {
	return parseBytes(context.Background(), data, opts)
}

func parseBytes(ctx context.Context, data []byte, opts Options) graph.Graph {
	opts.SetDefaults()
	doc, err := calm.Parse(data)
	if err != nil {
		opts.Logger.Warn("decode failed, returning empty graph", "err", err)
		return graph.Empty()
	}
	return parseDocument(ctx, doc, opts)
}

func parseDocument(ctx context.Context, doc calm.Document, opts Options) graph.Graph {
	if opts.Pattern || pattern.IsPattern(doc) {
		return build(ctx, pattern.Normalize(doc), opts, observability.SourcePattern)
	}
	return build(ctx, doc, opts, observability.SourceArchitecture)
}

func build(ctx context.Context, doc calm.Document, opts Options, source string) (g graph.Graph) {
	opts.SetDefaults()
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source)
	start := time.Now()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			g = graph.Empty()
			opts.Logger.Error("graph build failed, returning empty graph", "source", source, "err", err)
		}
		hooks.OnParseComplete(ctx, source, len(g.Nodes), len(g.Edges), time.Since(start), err)
	}()

	if doc.IsEmpty() {
		opts.Logger.Debug("document has no nodes", "source", source)
		return graph.Empty()
	}

	arch := architecture.Build(doc, architecture.Options{OnShowDetails: opts.OnShowDetails})
	g, err = assemble(ctx, arch, opts.Layout)
	if err != nil {
		return g
	}

	opts.Logger.Debug("built graph",
		"source", source,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"decision_groups", len(arch.Groups),
		"duration", time.Since(start))
	return g
}

// assemble runs the layout engine and attaches its records to copies of the
// built nodes and edges. Nodes come out in paint order, so every parent
// precedes its children.
func assemble(ctx context.Context, arch architecture.Architecture, cfg layout.Config) (graph.Graph, error) {
	start := time.Now()
	res, err := layout.Apply(arch.Nodes, arch.Edges, cfg)
	if err != nil {
		return graph.Graph{}, err
	}
	observability.Pipeline().OnLayoutComplete(ctx, len(arch.Nodes), time.Since(start))

	index := make(map[string]int, len(arch.Nodes))
	for i, n := range arch.Nodes {
		index[n.ID] = i
	}

	nodes := make([]graph.Node, 0, len(res.Order))
	for _, id := range res.Order {
		i, ok := index[id]
		if !ok {
			continue
		}
		n := arch.Nodes[i]
		n.ParentID = res.Parents[id]
		n.Position = res.Positions[id]
		n.Size = res.Sizes[id]
		nodes = append(nodes, n)
	}

	edges := make([]graph.Edge, 0, len(arch.Edges))
	for _, e := range arch.Edges {
		e.Points = res.Routes[e.ID]
		edges = append(edges, e)
	}
	return graph.Graph{Nodes: nodes, Edges: edges}, nil
}
