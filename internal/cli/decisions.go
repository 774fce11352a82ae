package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// decisionsCommand lists the decision points of a document.
func (c *CLI) decisionsCommand() *cobra.Command {
	var (
		opts   docOpts
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "decisions <document>",
		Short: "List the decision points of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := c.buildGraph(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			points := decision.ExtractPoints(g.Nodes)
			if asJSON {
				if points == nil {
					points = []decision.Point{}
				}
				return c.writeJSON(points)
			}
			if len(points) == 0 {
				printInfo("No decision points")
				return nil
			}
			fmt.Fprintln(c.out, decisionTable(points, nil))
			printNextStep("Filter by a choice", fmt.Sprintf("archview filter %s --select %s=0", args[0], points[0].GroupID))
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decision points as JSON")

	return cmd
}

// filterResult is the JSON printed by the filter command.
type filterResult struct {
	Active     bool                `json:"active"`
	Selections decision.Selections `json:"selections"`
	Nodes      []string            `json:"nodes"`
	Edges      []string            `json:"edges"`
}

// filterCommand prints the node and edge ids left visible by a selection.
func (c *CLI) filterCommand() *cobra.Command {
	var (
		opts    docOpts
		selects []string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "filter <document>",
		Short: "Print the ids visible under a decision selection",
		Long: `Apply decision selections and print the visible node and edge ids as JSON.

Selections name a decision group and the chosen choice indices:

  archview filter arch.json --select decision-group-1=0 --select decision-group-4=0,2

A group without a selection keeps all of its choices. With --strict, unknown
groups and out-of-range indices are rejected instead of ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := decision.ParseSelections(selects...)
			if err != nil {
				return err
			}
			return c.runFilter(cmd.Context(), args[0], opts, sel, strict)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "selection group=i[,j...] (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject unknown groups and out-of-range choices")

	return cmd
}

func (c *CLI) runFilter(ctx context.Context, input string, opts docOpts, sel decision.Selections, strict bool) error {
	g, _, err := c.buildGraph(ctx, input, opts)
	if err != nil {
		return err
	}
	if strict {
		if err := sel.Validate(decision.ExtractPoints(g.Nodes)); err != nil {
			return err
		}
	}

	view := pipeline.Filter(ctx, g, sel)
	res := filterResult{Active: view.Active, Selections: sel, Nodes: []string{}, Edges: []string{}}
	if view.Active {
		res.Nodes = view.Nodes.Sorted()
		res.Edges = view.Edges.Sorted()
	} else {
		for _, n := range g.Nodes {
			res.Nodes = append(res.Nodes, n.ID)
		}
		for _, e := range g.Edges {
			res.Edges = append(res.Edges, e.ID)
		}
	}
	loggerFromContext(ctx).Debug("filter applied", "selections", sel.String(), "nodes", len(res.Nodes), "edges", len(res.Edges))
	return c.writeJSON(res)
}

func (c *CLI) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
