package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/robdd/pkg/observability"
	"github.com/matzehuels/robdd/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram pipeline over HTTP",
		Long: `Run an HTTP server that builds, combines and measures diagrams.

Routes:
  GET /healthz
  GET /v1/diagrams?table=&width=&reduce=&format=
  GET /v1/combine?a=&b=&width=&op=&format=
  GET /v1/experiments?vars=&samples=&seed=
  GET /metrics`,
		Example: `  robdd serve --addr :9090
  curl 'localhost:9090/v1/diagrams?table=8&width=4&format=dot'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	addr := opts.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	cfg := server.Config{Addr: addr, Logger: c.Logger}
	if !opts.noMetrics {
		reg := newMetricsRegistry()
		cfg.Gatherer = reg
		defer observability.Reset()
	}

	srv := server.New(runner, cfg)
	printInfo("Listening on %s", StyleValue.Render(srv.Addr()))
	return srv.ListenAndServe(ctx)
}

// newMetricsRegistry creates a registry with the runtime collectors and
// installs Prometheus-backed hooks for the pipeline, cache and HTTP layers.
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return reg
}
