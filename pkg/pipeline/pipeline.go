// Package pipeline turns architecture documents into laid-out graphs.
//
// This package implements the complete document → graph → artifact pipeline
// used by the CLI and the HTTP API. Centralizing it keeps both entry points
// consistent.
//
// # Stages
//
//  1. Decode: JSON or YAML into a [calm.Document] (patterns are normalized)
//  2. Build: nodes, containment, decision groups and edges
//  3. Layout: two-phase ranked layout of groups and top-level units
//  4. Render (optional): DOT, SVG, PNG, PDF or JSON, with a decision filter
//
// # Failure Policy
//
// [Parse], [ParsePattern] and [ParseBytes] never return errors. Any failure
// or panic while building or laying out a graph is logged and yields the
// empty graph, so a malformed document never breaks the caller's view.
//
// # Usage
//
//	g := pipeline.Parse(doc, pipeline.Options{Logger: logger})
//
// With caching:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	g, hit, err := runner.GraphWithCacheInfo(ctx, data, opts)
//	svg, err := runner.Render(ctx, g, pipeline.RenderOptions{Format: "svg"})
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/layout"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures graph building. The zero value is usable.
type Options struct {
	// Pattern treats the input as a pattern document. ParseBytes and the
	// Runner also detect patterns on their own.
	Pattern bool `json:"pattern,omitempty"`

	// Layout holds the layout settings. The zero value selects
	// layout.DefaultConfig.
	Layout layout.Config `json:"layout"`

	// Refresh bypasses the cache read (the result is still stored).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// OnShowDetails is copied into every regular node's payload.
	OnShowDetails func(nodeID string) `json:"-"`
}

// SetDefaults fills in the layout config and a discard logger.
func (o *Options) SetDefaults() {
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
