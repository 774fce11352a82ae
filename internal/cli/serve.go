package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/internal/server"
	"github.com/matzehuels/archview/pkg/observability"
	"github.com/matzehuels/archview/pkg/observability/prom"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		noCache      bool
		maxDocuments int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API with Prometheus metrics on /metrics. The graph cache,
layout settings and listen address come from the config file; --addr overrides
the address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := prom.New(reg)
			observability.SetPipelineHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			runner := c.newRunner(ctx, cfg, noCache)
			defer runner.Close()

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithMetrics(reg),
				server.WithLayout(cfg.Layout),
				server.WithMaxDocuments(maxDocuments),
			)
			printInfo("Serving on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the graph cache")
	cmd.Flags().IntVar(&maxDocuments, "max-documents", 1000, "maximum number of uploaded documents kept in memory")

	return cmd
}
