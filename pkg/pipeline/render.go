package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/observability"
	"github.com/matzehuels/archview/pkg/render/nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatDOT, FormatPNG, FormatPDF, FormatJSON}

// DefaultFormat is the default render format.
const DefaultFormat = FormatSVG

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats...)
}

// RenderOptions configures rendering of a built graph.
type RenderOptions struct {
	Format string `json:"format"`
	// Selections applies a decision filter; hidden elements are dimmed, or
	// dropped with HideFiltered.
	Selections   decision.Selections `json:"selections,omitempty"`
	HideFiltered bool                `json:"hide_filtered,omitempty"`
	Detailed     bool                `json:"detailed,omitempty"`
	// Positioned draws nodes at their computed layout positions instead of
	// letting Graphviz rank the graph.
	Positioned bool `json:"positioned,omitempty"`
}

// SetDefaults fills in the default format.
func (o *RenderOptions) SetDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
}

// Filter applies sel to g and reports the filter to the pipeline hooks.
func Filter(ctx context.Context, g graph.Graph, sel decision.Selections) decision.View {
	view := decision.Apply(g, sel)
	visible := -1
	if view.Active {
		visible = len(view.Nodes)
	}
	observability.Pipeline().OnFilter(ctx, view.Active, visible)
	return view
}

// Render produces one artifact for g. JSON ignores the filter options and
// emits the graph itself.
func Render(ctx context.Context, g graph.Graph, opts RenderOptions) (data []byte, err error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	}()

	if opts.Format == FormatJSON {
		return graph.MarshalGraph(g)
	}

	dot := nodelink.ToDOT(g, nodelink.Options{
		Detailed:     opts.Detailed,
		View:         Filter(ctx, g, opts.Selections),
		HideFiltered: opts.HideFiltered,
		Positioned:   opts.Positioned,
	})
	layout := nodelink.LayoutRanked
	if opts.Positioned {
		layout = nodelink.LayoutFixed
	}

	switch opts.Format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(dot, layout)
	case FormatPNG:
		data, err = nodelink.RenderPNG(ctx, dot, 2.0, layout)
	case FormatPDF:
		data, err = nodelink.RenderPDF(ctx, dot, layout)
	}
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", opts.Format)
	}
	return data, nil
}

// selectionsKey is the canonical cache-key form of a filter.
func (o RenderOptions) selectionsKey() string {
	key := o.Selections.String()
	if o.HideFiltered {
		key += " hide"
	}
	if o.Detailed {
		key += " detailed"
	}
	if o.Positioned {
		key += " positioned"
	}
	return key
}
