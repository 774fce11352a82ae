package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	docOpts
	output     string   // output path; "-" for stdout
	format     string   // svg, dot, png, pdf or json
	selects    []string // raw --select values
	hide       bool     // drop filtered elements instead of dimming them
	detailed   bool     // include node types and descriptions in labels
	positioned bool     // keep the computed layout positions
	watch      bool     // re-render whenever the input changes
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.DefaultFormat}

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render a document as SVG, DOT, PNG, PDF or JSON",
		Long: `Render the laid-out graph of a CALM document. Containers become clusters and
decision groups dashed clusters. With --select, elements outside the selection
are dimmed, or removed with --hide.

PNG and PDF output requires rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			sel, err := decision.ParseSelections(opts.selects...)
			if err != nil {
				return err
			}
			if opts.watch {
				return c.watchRender(cmd.Context(), args[0], opts, sel)
			}
			return c.runRender(cmd.Context(), args[0], opts, sel)
		},
	}

	opts.docOpts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <document>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, png, pdf, json")
	cmd.Flags().StringArrayVarP(&opts.selects, "select", "s", nil, "selection group=i[,j...] (repeatable)")
	cmd.Flags().BoolVar(&opts.hide, "hide", false, "remove filtered elements instead of dimming them")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node types and descriptions")
	cmd.Flags().BoolVar(&opts.positioned, "positioned", false, "draw nodes at their computed layout positions")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the document changes")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts, sel decision.Selections) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	data, isPattern, err := loadDocument(input, opts.pattern)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, cfg, opts.noCache)
	defer runner.Close()

	g, cached, err := runner.GraphWithCacheInfo(ctx, data, pipeline.Options{
		Pattern: isPattern,
		Layout:  cfg.Layout,
		Refresh: opts.refresh,
	})
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	var out []byte
	if opts.format == pipeline.FormatPNG || opts.format == pipeline.FormatPDF {
		spin := newSpinnerWithContext(ctx, "Rendering "+opts.format)
		spin.Start()
		out, err = runner.Render(ctx, g, renderOptions(opts, sel))
		spin.Stop()
	} else {
		out, err = runner.Render(ctx, g, renderOptions(opts, sel))
	}
	if err != nil {
		return err
	}
	prog.done("Rendered " + opts.format)

	output := opts.output
	if output == "" {
		output = derivedPath(input, "."+opts.format)
	}
	if err := writeOutput(c.out, output, out); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Rendered %s", opts.format)
		printStats(len(g.Nodes), len(g.Edges), cached)
		printFile(output)
	}
	return nil
}

func renderOptions(opts renderOpts, sel decision.Selections) pipeline.RenderOptions {
	return pipeline.RenderOptions{
		Format:       opts.format,
		Selections:   sel,
		HideFiltered: opts.hide,
		Detailed:     opts.detailed,
		Positioned:   opts.positioned,
	}
}

// watchRender renders once, then again after every change to input until
// ctx is cancelled. Render failures are reported and watching continues.
func (c *CLI) watchRender(ctx context.Context, input string, opts renderOpts, sel decision.Selections) error {
	logger := loggerFromContext(ctx)
	if input == "-" {
		return c.runRender(ctx, input, opts, sel)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors often replace the file on save.
	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	render := func() {
		if err := c.runRender(ctx, input, opts, sel); err != nil {
			printWarning("render failed: %v", err)
		}
	}
	render()
	printInfo("Watching %s (ctrl+c to stop)", input)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isWriteOf(ev, target) {
				continue
			}
			logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			debounce = time.After(watchDebounce)
		case <-debounce:
			debounce = nil
			render()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// isWriteOf reports whether ev modified or recreated target.
func isWriteOf(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
