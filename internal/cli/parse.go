package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// docOpts holds the flags shared by every command that builds a graph.
type docOpts struct {
	pattern bool // force pattern extraction
	noCache bool // disable the graph cache
	refresh bool // rebuild even on a cache hit
}

func (o *docOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.pattern, "pattern", false, "treat the input as a pattern (auto-detected otherwise)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the graph cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "rebuild the graph even when cached")
}

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	docOpts
	output string // output path; "-" for stdout
}

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <document>",
		Short: "Build the positioned graph of a CALM document",
		Long: `Parse a CALM architecture document or pattern (JSON or YAML) and write the
positioned, routed graph as JSON. Use "-" to read from stdin.

By default the output is written next to the input as <name>.graph.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], opts)
		},
	}

	opts.docOpts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <document>.graph.json, - for stdout)")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, input string, opts parseOpts) error {
	g, cached, err := c.buildGraph(ctx, input, opts.docOpts)
	if err != nil {
		return err
	}

	data, err := graph.MarshalGraph(g)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = derivedPath(input, ".graph.json")
	}
	if err := writeOutput(c.out, output, data); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Graph written")
		printStats(len(g.Nodes), len(g.Edges), cached)
		printFile(output)
	}
	return nil
}

// buildGraph loads input and runs the pipeline through the configured cache.
func (c *CLI) buildGraph(ctx context.Context, input string, opts docOpts) (graph.Graph, bool, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return graph.Empty(), false, err
	}
	data, isPattern, err := loadDocument(input, opts.pattern)
	if err != nil {
		return graph.Empty(), false, err
	}

	runner := c.newRunner(ctx, cfg, opts.noCache)
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	g, cached, err := runner.GraphWithCacheInfo(ctx, data, pipeline.Options{
		Pattern: isPattern,
		Layout:  cfg.Layout,
		Refresh: opts.refresh,
	})
	if err != nil {
		return graph.Empty(), false, err
	}
	prog.done(fmt.Sprintf("Built graph: %d nodes, %d edges", len(g.Nodes), len(g.Edges)))
	return g, cached, nil
}
